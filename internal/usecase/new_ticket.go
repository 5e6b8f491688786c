package usecase

import (
	"context"
	"fmt"

	"github.com/tracklet/trackd/internal/domain"
)

// NewTicketInput contains the parameters for creating a ticket.
type NewTicketInput struct {
	ProjectID   string
	EpicID      string // Optional owning epic
	Title       string
	Description string
	Tags        []string
	Priority    int
}

// NewTicketOutput contains the created ticket.
type NewTicketOutput struct {
	Ticket domain.Ticket
}

// NewTicketUseCase is the use case for creating a ticket in backlog.
type NewTicketUseCase struct {
	store  domain.Store
	ids    domain.IDGenerator
	clock  domain.Clock
	logger domain.Logger
}

// NewNewTicket creates a new NewTicketUseCase.
func NewNewTicket(store domain.Store, ids domain.IDGenerator, clock domain.Clock, logger domain.Logger) *NewTicketUseCase {
	return &NewTicketUseCase{
		store:  store,
		ids:    ids,
		clock:  clock,
		logger: logger,
	}
}

// Execute creates a ticket.
func (uc *NewTicketUseCase) Execute(ctx context.Context, in NewTicketInput) (*NewTicketOutput, error) {
	if in.Title == "" {
		return nil, domain.ErrEmptyTitle
	}

	project, err := uc.store.Projects().Get(in.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	if project == nil {
		return nil, fmt.Errorf("project %s: %w", in.ProjectID, domain.ErrProjectNotFound)
	}

	var epicID *string
	if in.EpicID != "" {
		epic, err := uc.store.Epics().Get(in.EpicID)
		if err != nil {
			return nil, fmt.Errorf("load epic: %w", err)
		}
		if epic == nil {
			return nil, fmt.Errorf("epic %s: %w", in.EpicID, domain.ErrEpicNotFound)
		}
		if epic.ProjectID != in.ProjectID {
			return nil, fmt.Errorf("epic %s belongs to a different project", domain.ShortID(in.EpicID))
		}
		id := epic.ID
		epicID = &id
	}

	position, err := uc.nextPosition(in.ProjectID)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	ticket := &domain.Ticket{
		Created:     now,
		Updated:     now,
		EpicID:      epicID,
		Title:       in.Title,
		Description: in.Description,
		ProjectID:   in.ProjectID,
		ID:          uc.ids.NewID(),
		Status:      domain.StatusBacklog,
		Extras:      domain.Extras{Tags: in.Tags},
		Priority:    in.Priority,
		Position:    position,
	}
	if err := uc.store.Tickets().Save(ticket); err != nil {
		return nil, fmt.Errorf("save ticket: %w", err)
	}

	uc.logger.Info(ticket.ID, "ticket", fmt.Sprintf("created %q", ticket.Title))
	return &NewTicketOutput{Ticket: *ticket}, nil
}

func (uc *NewTicketUseCase) nextPosition(projectID string) (int, error) {
	tickets, err := uc.store.Tickets().ListByProject(projectID)
	if err != nil {
		return 0, fmt.Errorf("list tickets: %w", err)
	}
	max := 0
	for _, t := range tickets {
		if t.Status == domain.StatusBacklog && t.Position > max {
			max = t.Position
		}
	}
	return max + 1, nil
}
