package usecase

import (
	"context"
	"fmt"

	"github.com/tracklet/trackd/internal/domain"
)

// EndSessionInput contains the parameters for closing a session.
type EndSessionInput struct {
	SessionID string
}

// EndSessionOutput contains the closed session.
type EndSessionOutput struct {
	Session      domain.ConversationSession
	AlreadyEnded bool
}

// EndSession is the use case for closing a conversation session. Closing a
// session that already ended is a no-op.
type EndSession struct {
	store  domain.Store
	clock  domain.Clock
	logger domain.Logger
}

// NewEndSession creates a new EndSession use case.
func NewEndSession(store domain.Store, clock domain.Clock, logger domain.Logger) *EndSession {
	return &EndSession{
		store:  store,
		clock:  clock,
		logger: logger,
	}
}

// Execute closes a session.
func (uc *EndSession) Execute(ctx context.Context, in EndSessionInput) (*EndSessionOutput, error) {
	session, err := uc.store.Sessions().Get(in.SessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("session %s not found", in.SessionID)
	}
	if !session.IsActive() {
		return &EndSessionOutput{Session: *session, AlreadyEnded: true}, nil
	}

	now := uc.clock.Now()
	session.Ended = &now
	if err := uc.store.Sessions().Save(session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	uc.logger.Info(session.TicketID, "session", fmt.Sprintf("session %s ended", domain.ShortID(session.ID)))
	return &EndSessionOutput{Session: *session}, nil
}
