package usecase

import (
	"context"
	"fmt"

	"github.com/tracklet/trackd/internal/domain"
)

// NewEpicInput contains the parameters for creating an epic.
type NewEpicInput struct {
	ProjectID   string
	Title       string
	Description string
	Isolation   string // "shared-branch" (default) or "worktree"
}

// NewEpicOutput contains the created epic.
type NewEpicOutput struct {
	Epic domain.Epic
}

// NewEpicUseCase is the use case for creating an epic.
type NewEpicUseCase struct {
	store  domain.Store
	ids    domain.IDGenerator
	clock  domain.Clock
	logger domain.Logger
}

// NewNewEpic creates a new NewEpicUseCase.
func NewNewEpic(store domain.Store, ids domain.IDGenerator, clock domain.Clock, logger domain.Logger) *NewEpicUseCase {
	return &NewEpicUseCase{
		store:  store,
		ids:    ids,
		clock:  clock,
		logger: logger,
	}
}

// Execute creates an epic.
func (uc *NewEpicUseCase) Execute(ctx context.Context, in NewEpicInput) (*NewEpicOutput, error) {
	if in.Title == "" {
		return nil, domain.ErrEmptyTitle
	}

	isolation := domain.IsolationMode(in.Isolation)
	if in.Isolation == "" {
		isolation = domain.IsolationSharedBranch
	}
	if !isolation.IsValid() {
		return nil, fmt.Errorf("unknown isolation mode %q", in.Isolation)
	}

	project, err := uc.store.Projects().Get(in.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	if project == nil {
		return nil, fmt.Errorf("project %s: %w", in.ProjectID, domain.ErrProjectNotFound)
	}

	epic := &domain.Epic{
		Created:     uc.clock.Now(),
		ID:          uc.ids.NewID(),
		Title:       in.Title,
		Description: in.Description,
		ProjectID:   in.ProjectID,
		Isolation:   isolation,
	}
	if err := uc.store.Epics().Save(epic); err != nil {
		return nil, fmt.Errorf("save epic: %w", err)
	}

	uc.logger.Info("", "epic", fmt.Sprintf("created %q", epic.Title))
	return &NewEpicOutput{Epic: *epic}, nil
}
