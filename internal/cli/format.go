package cli

import (
	"fmt"

	"github.com/tracklet/trackd/internal/app"
	"github.com/tracklet/trackd/internal/domain"
)

func shortID(id string) string { return domain.ShortID(id) }

// currentProject returns the project registered for the repository the
// command runs in.
func currentProject(c *app.Container) (*domain.Project, error) {
	projects, err := c.Store.Projects().List()
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	for _, p := range projects {
		if p.Path == c.Paths.RepoRoot {
			return p, nil
		}
	}
	return nil, domain.ErrNotInitialized
}

// resolveTicketID accepts a full ticket id or the 8-character short form
// used in branch names.
func resolveTicketID(c *app.Container, ref string) (string, error) {
	ticket, err := c.Store.Tickets().Get(ref)
	if err != nil {
		return "", fmt.Errorf("load ticket: %w", err)
	}
	if ticket != nil {
		return ticket.ID, nil
	}

	project, err := currentProject(c)
	if err != nil {
		return "", err
	}
	tickets, err := c.Store.Tickets().ListByProject(project.ID)
	if err != nil {
		return "", fmt.Errorf("list tickets: %w", err)
	}
	for _, t := range tickets {
		if domain.ShortID(t.ID) == ref {
			return t.ID, nil
		}
	}
	return "", fmt.Errorf("ticket %s: %w", ref, domain.ErrTicketNotFound)
}

// resolveEpicID accepts a full epic id or its 8-character short form.
func resolveEpicID(c *app.Container, ref string) (string, error) {
	epic, err := c.Store.Epics().Get(ref)
	if err != nil {
		return "", fmt.Errorf("load epic: %w", err)
	}
	if epic != nil {
		return epic.ID, nil
	}

	project, err := currentProject(c)
	if err != nil {
		return "", err
	}
	epics, err := c.Store.Epics().ListByProject(project.ID)
	if err != nil {
		return "", fmt.Errorf("list epics: %w", err)
	}
	for _, e := range epics {
		if domain.ShortID(e.ID) == ref {
			return e.ID, nil
		}
	}
	return "", fmt.Errorf("epic %s: %w", ref, domain.ErrEpicNotFound)
}
