package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tracklet/trackd/internal/domain"
)

// InitProjectInput contains the parameters for initializing a project.
type InitProjectInput struct {
	Path string // Repository root; defaults to the current directory
	Name string // Defaults to the directory base name
}

// InitProjectOutput contains the registered project.
type InitProjectOutput struct {
	Project domain.Project
	DataDir string
}

// InitProject is the use case for creating the data directory and
// registering the project record.
type InitProject struct {
	store domain.Store
	init  domain.StoreInitializer
	git   domain.Git
	ids   domain.IDGenerator
	clock domain.Clock
}

// NewInitProject creates a new InitProject use case.
func NewInitProject(store domain.Store, init domain.StoreInitializer, git domain.Git, ids domain.IDGenerator, clock domain.Clock) *InitProject {
	return &InitProject{
		store: store,
		init:  init,
		git:   git,
		ids:   ids,
		clock: clock,
	}
}

// Execute initializes trackd in a repository.
func (uc *InitProject) Execute(ctx context.Context, in InitProjectInput) (*InitProjectOutput, error) {
	path := in.Path
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve working directory: %w", err)
		}
		path = wd
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}

	if err := uc.git.VerifyWorkTree(abs); err != nil {
		return nil, err
	}

	if err := uc.init.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize store: %w", err)
	}

	// Re-running init in an already-registered repository is an error so a
	// typo never silently rebinds an existing project record.
	existing, err := uc.store.Projects().List()
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	for _, p := range existing {
		if p.Path == abs {
			return nil, fmt.Errorf("project %s: %w", p.Name, domain.ErrAlreadyInitialized)
		}
	}

	name := in.Name
	if name == "" {
		name = filepath.Base(abs)
	}

	project := &domain.Project{
		Created: uc.clock.Now(),
		ID:      uc.ids.NewID(),
		Name:    name,
		Path:    abs,
	}
	if err := uc.store.Projects().Save(project); err != nil {
		return nil, fmt.Errorf("save project: %w", err)
	}

	return &InitProjectOutput{Project: *project, DataDir: domain.DataDir(abs)}, nil
}
