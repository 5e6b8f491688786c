package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/tracklet/trackd/internal/domain"
)

// ImportTicketsInput contains the parameters for bulk-importing tickets.
type ImportTicketsInput struct {
	Reader    io.Reader // Multi-document YAML stream
	ProjectID string
}

// ImportTicketsOutput contains the imported tickets.
type ImportTicketsOutput struct {
	Tickets []domain.Ticket
}

// importDoc is one YAML document in the import stream.
type importDoc struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Epic        string   `yaml:"epic"`
	Tags        []string `yaml:"tags"`
	Priority    int      `yaml:"priority"`
}

// ImportTickets is the use case for importing tickets from a YAML stream.
// The whole stream is imported in one transaction: a bad document or a
// failed write leaves no tickets behind.
type ImportTickets struct {
	store  domain.Store
	ids    domain.IDGenerator
	clock  domain.Clock
	logger domain.Logger
}

// NewImportTickets creates a new ImportTickets use case.
func NewImportTickets(store domain.Store, ids domain.IDGenerator, clock domain.Clock, logger domain.Logger) *ImportTickets {
	return &ImportTickets{
		store:  store,
		ids:    ids,
		clock:  clock,
		logger: logger,
	}
}

// Execute imports tickets.
func (uc *ImportTickets) Execute(ctx context.Context, in ImportTicketsInput) (*ImportTicketsOutput, error) {
	project, err := uc.store.Projects().Get(in.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	if project == nil {
		return nil, fmt.Errorf("project %s: %w", in.ProjectID, domain.ErrProjectNotFound)
	}

	docs, err := decodeImportStream(in.Reader)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return &ImportTicketsOutput{}, nil
	}

	out := &ImportTicketsOutput{}
	err = uc.store.InTransaction(ctx, func(repos domain.Repositories) error {
		position, err := nextBacklogPosition(repos, in.ProjectID)
		if err != nil {
			return err
		}
		for i, doc := range docs {
			if doc.Title == "" {
				return fmt.Errorf("document %d: %w", i+1, domain.ErrEmptyTitle)
			}
			epicID, err := resolveImportEpic(repos, in.ProjectID, doc.Epic)
			if err != nil {
				return fmt.Errorf("document %d: %w", i+1, err)
			}

			now := uc.clock.Now()
			ticket := &domain.Ticket{
				Created:     now,
				Updated:     now,
				EpicID:      epicID,
				Title:       doc.Title,
				Description: doc.Description,
				ProjectID:   in.ProjectID,
				ID:          uc.ids.NewID(),
				Status:      domain.StatusBacklog,
				Extras:      domain.Extras{Tags: doc.Tags},
				Priority:    doc.Priority,
				Position:    position,
			}
			position++
			if err := repos.Tickets().Save(ticket); err != nil {
				return fmt.Errorf("document %d: save ticket: %w", i+1, err)
			}
			out.Tickets = append(out.Tickets, *ticket)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("", "ticket", fmt.Sprintf("imported %d ticket(s)", len(out.Tickets)))
	return out, nil
}

func decodeImportStream(r io.Reader) ([]importDoc, error) {
	dec := yaml.NewDecoder(r)
	var docs []importDoc
	for {
		var doc importDoc
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				return docs, nil
			}
			return nil, fmt.Errorf("parse import document %d: %w", len(docs)+1, err)
		}
		docs = append(docs, doc)
	}
}

func nextBacklogPosition(repos domain.Repositories, projectID string) (int, error) {
	tickets, err := repos.Tickets().ListByProject(projectID)
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

// resolveImportEpic accepts a full epic id or an 8-character short id.
func resolveImportEpic(repos domain.Repositories, projectID, ref string) (*string, error) {
	if ref == "" {
		return nil, nil
	}
	epic, err := repos.Epics().Get(ref)
	if err != nil {
		return nil, fmt.Errorf("load epic: %w", err)
	}
	if epic == nil {
		epics, err := repos.Epics().ListByProject(projectID)
		if err != nil {
			return nil, fmt.Errorf("list epics: %w", err)
		}
		for _, e := range epics {
			if domain.ShortID(e.ID) == ref {
				epic = e
				break
			}
		}
	}
	if epic == nil {
		return nil, fmt.Errorf("epic %s: %w", ref, domain.ErrEpicNotFound)
	}
	if epic.ProjectID != projectID {
		return nil, fmt.Errorf("epic %s belongs to a different project", domain.ShortID(epic.ID))
	}
	id := epic.ID
	return &id, nil
}
