package usecase

import (
	"context"
	"fmt"

	"github.com/tracklet/trackd/internal/domain"
	"github.com/tracklet/trackd/internal/usecase/shared"
)

// ListSessionsInput contains the parameters for listing sessions.
type ListSessionsInput struct {
	TicketID   string
	ActiveOnly bool
}

// ListSessionsOutput contains sessions newest first.
type ListSessionsOutput struct {
	Sessions []*domain.ConversationSession
}

// ListSessions is the use case for listing a ticket's sessions.
type ListSessions struct {
	store domain.Store
}

// NewListSessions creates a new ListSessions use case.
func NewListSessions(store domain.Store) *ListSessions {
	return &ListSessions{store: store}
}

// Execute lists sessions for a ticket.
func (uc *ListSessions) Execute(ctx context.Context, in ListSessionsInput) (*ListSessionsOutput, error) {
	tc, err := shared.LoadTicketContext(uc.store, in.TicketID)
	if err != nil {
		return nil, err
	}

	sessions, err := uc.store.Sessions().ListByTicket(tc.Ticket.ID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	if in.ActiveOnly {
		active := sessions[:0]
		for _, s := range sessions {
			if s.IsActive() {
				active = append(active, s)
			}
		}
		sessions = active
	}
	return &ListSessionsOutput{Sessions: sessions}, nil
}
