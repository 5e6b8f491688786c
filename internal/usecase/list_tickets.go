package usecase

import (
	"context"
	"fmt"

	"github.com/tracklet/trackd/internal/domain"
)

// ListTicketsInput contains the parameters for listing tickets.
type ListTicketsInput struct {
	ProjectID string
	EpicID    string // When set, restricts to one epic
	Status    string // When set, restricts to one status
}

// TicketRow pairs a ticket with its workflow state for display.
type TicketRow struct {
	Ticket *domain.Ticket
	State  *domain.TicketWorkflowState // nil when work has not started
}

// ListTicketsOutput contains tickets ordered by position.
type ListTicketsOutput struct {
	Rows []TicketRow
}

// ListTickets is the use case for listing tickets in a project or epic.
type ListTickets struct {
	store domain.Store
}

// NewListTickets creates a new ListTickets use case.
func NewListTickets(store domain.Store) *ListTickets {
	return &ListTickets{store: store}
}

// Execute lists tickets.
func (uc *ListTickets) Execute(ctx context.Context, in ListTicketsInput) (*ListTicketsOutput, error) {
	var status domain.Status
	if in.Status != "" {
		status = domain.Status(in.Status)
		if !status.IsValid() {
			return nil, fmt.Errorf("unknown status %q", in.Status)
		}
	}

	var (
		tickets []*domain.Ticket
		err     error
	)
	if in.EpicID != "" {
		tickets, err = uc.store.Tickets().ListByEpic(in.EpicID)
	} else {
		project, perr := uc.store.Projects().Get(in.ProjectID)
		if perr != nil {
			return nil, fmt.Errorf("load project: %w", perr)
		}
		if project == nil {
			return nil, fmt.Errorf("project %s: %w", in.ProjectID, domain.ErrProjectNotFound)
		}
		tickets, err = uc.store.Tickets().ListByProject(in.ProjectID)
	}
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}

	out := &ListTicketsOutput{}
	for _, t := range tickets {
		if in.Status != "" && t.Status != status {
			continue
		}
		state, err := uc.store.WorkflowStates().TicketState(t.ID)
		if err != nil {
			return nil, fmt.Errorf("load workflow state: %w", err)
		}
		out.Rows = append(out.Rows, TicketRow{Ticket: t, State: state})
	}
	return out, nil
}
