package shared

import (
	"fmt"
	"os"

	"github.com/tracklet/trackd/internal/domain"
)

// TicketContext bundles a ticket with the records the workflow use cases
// need alongside it.
type TicketContext struct {
	Ticket  *domain.Ticket
	Project *domain.Project
	Epic    *domain.Epic // nil for standalone tickets
}

// LoadTicketContext fetches a ticket together with its project and, when
// assigned, its epic.
func LoadTicketContext(repos domain.Repositories, ticketID string) (*TicketContext, error) {
	ticket, err := repos.Tickets().Get(ticketID)
	if err != nil {
		return nil, fmt.Errorf("load ticket: %w", err)
	}
	if ticket == nil {
		return nil, fmt.Errorf("ticket %s: %w", ticketID, domain.ErrTicketNotFound)
	}

	project, err := repos.Projects().Get(ticket.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	if project == nil {
		return nil, fmt.Errorf("project %s: %w", ticket.ProjectID, domain.ErrProjectNotFound)
	}

	ctx := &TicketContext{Ticket: ticket, Project: project}

	if ticket.HasEpic() {
		epic, err := repos.Epics().Get(*ticket.EpicID)
		if err != nil {
			return nil, fmt.Errorf("load epic: %w", err)
		}
		if epic == nil {
			return nil, fmt.Errorf("epic %s: %w", *ticket.EpicID, domain.ErrEpicNotFound)
		}
		ctx.Epic = epic
	}

	return ctx, nil
}

// VerifyProjectPath ensures the project's working tree is present on disk.
func VerifyProjectPath(project *domain.Project) error {
	info, err := os.Stat(project.Path)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("project path %s: %w", project.Path, domain.ErrProjectPathMissing)
	}
	return nil
}
