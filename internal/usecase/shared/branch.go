// Package shared contains helpers used by multiple use cases.
package shared

import (
	"fmt"

	"github.com/tracklet/trackd/internal/domain"
)

// BranchResolution is the outcome of resolving a working branch.
type BranchResolution struct {
	BranchName      string // Resolved branch, checked out on return
	PreviousBranch  string // Branch HEAD pointed at before resolution
	Created         bool   // True if the branch was created by this call
	UsingEpicBranch bool   // True if the branch is an epic's shared branch
}

// BranchCoordinator decides which branch a ticket or epic uses and
// creates or checks it out through the version-control adapter.
type BranchCoordinator struct {
	git    domain.Git
	states domain.WorkflowStateRepository
	clock  domain.Clock
}

// NewBranchCoordinator creates a new BranchCoordinator.
func NewBranchCoordinator(git domain.Git, states domain.WorkflowStateRepository, clock domain.Clock) *BranchCoordinator {
	return &BranchCoordinator{
		git:    git,
		states: states,
		clock:  clock,
	}
}

// TrunkBranch determines the repository's integration branch, preferring
// main over master when both exist.
func TrunkBranch(git domain.Git, dir string) (string, error) {
	for _, branch := range []string{"main", "master"} {
		exists, err := git.BranchExists(dir, branch)
		if err != nil {
			return "", fmt.Errorf("probe trunk branch %s: %w", branch, err)
		}
		if exists {
			return branch, nil
		}
	}
	return "", fmt.Errorf("%s: %w", dir, domain.ErrNoTrunkBranch)
}

// Resolve returns the working branch for a ticket. Standalone tickets get a
// deterministic feature branch of their own; tickets in an epic share the
// epic's recorded branch. Any git failure aborts before anything is written
// to the record store.
func (c *BranchCoordinator) Resolve(ticket *domain.Ticket, epic *domain.Epic, dir string) (*BranchResolution, error) {
	previous, err := c.git.CurrentBranch(dir)
	if err != nil {
		return nil, fmt.Errorf("read current branch: %w", err)
	}

	if epic == nil {
		return c.resolveTicketBranch(ticket, dir, previous)
	}
	return c.resolveEpicBranch(epic, dir, previous)
}

// ResolveEpic returns the shared branch for an epic, creating and recording
// it on first use.
func (c *BranchCoordinator) ResolveEpic(epic *domain.Epic, dir string) (*BranchResolution, error) {
	previous, err := c.git.CurrentBranch(dir)
	if err != nil {
		return nil, fmt.Errorf("read current branch: %w", err)
	}
	return c.resolveEpicBranch(epic, dir, previous)
}

func (c *BranchCoordinator) resolveTicketBranch(ticket *domain.Ticket, dir, previous string) (*BranchResolution, error) {
	name := domain.TicketBranchName(ticket.ID, ticket.Title)

	exists, err := c.git.BranchExists(dir, name)
	if err != nil {
		return nil, fmt.Errorf("check branch %s: %w", name, err)
	}
	if exists {
		if err := c.git.Checkout(dir, name); err != nil {
			return nil, err
		}
		return &BranchResolution{BranchName: name, PreviousBranch: previous}, nil
	}

	if err := c.git.CreateBranch(dir, name); err != nil {
		return nil, err
	}
	return &BranchResolution{BranchName: name, PreviousBranch: previous, Created: true}, nil
}

func (c *BranchCoordinator) resolveEpicBranch(epic *domain.Epic, dir, previous string) (*BranchResolution, error) {
	state, err := c.states.EpicState(epic.ID)
	if err != nil {
		return nil, fmt.Errorf("read epic workflow state: %w", err)
	}

	if state != nil && state.BranchName != "" {
		// The recorded branch is authoritative. If it was deleted
		// out-of-band, silently substituting a new one would split the
		// epic's history across two branches, so the caller is told to
		// re-run epic initialization instead.
		exists, err := c.git.BranchExists(dir, state.BranchName)
		if err != nil {
			return nil, fmt.Errorf("check epic branch %s: %w", state.BranchName, err)
		}
		if !exists {
			return nil, fmt.Errorf("epic %s branch %q: %w", domain.ShortID(epic.ID), state.BranchName, domain.ErrEpicBranchMissing)
		}
		if err := c.git.Checkout(dir, state.BranchName); err != nil {
			return nil, err
		}
		return &BranchResolution{BranchName: state.BranchName, PreviousBranch: previous, UsingEpicBranch: true}, nil
	}

	name := domain.EpicBranchName(epic.ID, epic.Title)
	created := false

	exists, err := c.git.BranchExists(dir, name)
	if err != nil {
		return nil, fmt.Errorf("check branch %s: %w", name, err)
	}
	if exists {
		// Branch left over from an earlier run whose state write failed;
		// adopt it rather than failing on re-create.
		if err := c.git.Checkout(dir, name); err != nil {
			return nil, err
		}
	} else {
		trunk, err := TrunkBranch(c.git, dir)
		if err != nil {
			return nil, err
		}
		if err := c.git.Checkout(dir, trunk); err != nil {
			return nil, err
		}
		if err := c.git.CreateBranch(dir, name); err != nil {
			return nil, err
		}
		created = true
	}

	if state == nil {
		state = &domain.EpicWorkflowState{EpicID: epic.ID}
	}
	state.BranchName = name
	state.BranchCreatedAt = c.clock.Now()
	if err := c.states.SaveEpicState(state); err != nil {
		return nil, fmt.Errorf("record epic branch: %w", err)
	}

	return &BranchResolution{BranchName: name, PreviousBranch: previous, Created: created, UsingEpicBranch: true}, nil
}
