package usecase

import (
	"context"
	"fmt"

	"github.com/tracklet/trackd/internal/domain"
	"github.com/tracklet/trackd/internal/usecase/shared"
)

// ShowTicketInput contains the parameters for showing a ticket.
type ShowTicketInput struct {
	TicketID string
}

// ShowTicketOutput contains a ticket with its surrounding records.
type ShowTicketOutput struct {
	Ticket   domain.Ticket
	Epic     *domain.Epic                // nil for standalone tickets
	State    *domain.TicketWorkflowState // nil when work has not started
	Findings []*domain.ReviewFinding
	Sessions []*domain.ConversationSession
}

// ShowTicket is the use case for assembling a full view of one ticket.
type ShowTicket struct {
	store domain.Store
}

// NewShowTicket creates a new ShowTicket use case.
func NewShowTicket(store domain.Store) *ShowTicket {
	return &ShowTicket{store: store}
}

// Execute loads a ticket and everything attached to it.
func (uc *ShowTicket) Execute(ctx context.Context, in ShowTicketInput) (*ShowTicketOutput, error) {
	tc, err := shared.LoadTicketContext(uc.store, in.TicketID)
	if err != nil {
		return nil, err
	}

	state, err := uc.store.WorkflowStates().TicketState(tc.Ticket.ID)
	if err != nil {
		return nil, fmt.Errorf("load workflow state: %w", err)
	}
	findings, err := uc.store.Findings().ListByTicket(tc.Ticket.ID)
	if err != nil {
		return nil, fmt.Errorf("list findings: %w", err)
	}
	sessions, err := uc.store.Sessions().ListByTicket(tc.Ticket.ID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	return &ShowTicketOutput{
		Ticket:   tc.Ticket.Snapshot(),
		Epic:     tc.Epic,
		State:    state,
		Findings: findings,
		Sessions: sessions,
	}, nil
}
