package usecase

import (
	"context"
	"fmt"

	"github.com/tracklet/trackd/internal/domain"
	"github.com/tracklet/trackd/internal/usecase/shared"
)

// StartSessionInput contains the parameters for opening a session.
type StartSessionInput struct {
	TicketID    string
	Environment string // Free-form agent environment description
}

// StartSessionOutput contains the opened session.
type StartSessionOutput struct {
	Session domain.ConversationSession
	Ended   int // Stale sessions closed before opening this one
}

// StartSession is the use case for opening a conversation session on a
// ticket. Any sessions still marked active on the ticket are closed first
// so at most one active session exists per ticket.
type StartSession struct {
	store  domain.Store
	ids    domain.IDGenerator
	clock  domain.Clock
	logger domain.Logger
}

// NewStartSession creates a new StartSession use case.
func NewStartSession(store domain.Store, ids domain.IDGenerator, clock domain.Clock, logger domain.Logger) *StartSession {
	return &StartSession{
		store:  store,
		ids:    ids,
		clock:  clock,
		logger: logger,
	}
}

// Execute opens a session.
func (uc *StartSession) Execute(ctx context.Context, in StartSessionInput) (*StartSessionOutput, error) {
	tc, err := shared.LoadTicketContext(uc.store, in.TicketID)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	ended, err := uc.store.Sessions().EndActive(tc.Ticket.ID, now)
	if err != nil {
		return nil, fmt.Errorf("end stale sessions: %w", err)
	}
	if ended > 0 {
		uc.logger.Warn(tc.Ticket.ID, "session", fmt.Sprintf("closed %d stale session(s)", ended))
	}

	session := &domain.ConversationSession{
		Started:     now,
		ID:          uc.ids.NewID(),
		TicketID:    tc.Ticket.ID,
		ProjectID:   tc.Ticket.ProjectID,
		Environment: in.Environment,
	}
	if err := uc.store.Sessions().Save(session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	uc.logger.Info(tc.Ticket.ID, "session", fmt.Sprintf("session %s started", domain.ShortID(session.ID)))
	return &StartSessionOutput{Session: *session, Ended: ended}, nil
}
