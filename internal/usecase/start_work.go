// Package usecase contains application use cases.
package usecase

import (
	"context"
	"fmt"

	"github.com/tracklet/trackd/internal/domain"
	"github.com/tracklet/trackd/internal/usecase/shared"
)

// StartWorkInput contains the parameters for starting work on a ticket.
type StartWorkInput struct {
	TicketID string
}

// StartWorkOutput contains the result of starting work.
type StartWorkOutput struct {
	Ticket          domain.Ticket
	Warnings        []string
	BranchName      string
	Created         bool // True if the branch was created by this call
	UsingEpicBranch bool
	AlreadyStarted  bool // True if the ticket was already in_progress
}

// StartWork is the use case for moving a ticket into in_progress and
// checking out its working branch.
type StartWork struct {
	store  domain.Store
	git    domain.Git
	clock  domain.Clock
	logger domain.Logger
}

// NewStartWork creates a new StartWork use case.
func NewStartWork(store domain.Store, git domain.Git, clock domain.Clock, logger domain.Logger) *StartWork {
	return &StartWork{
		store:  store,
		git:    git,
		clock:  clock,
		logger: logger,
	}
}

// Execute starts work on a ticket. Branch operations happen before any
// record is written; if the primary ticket save then fails, the branch
// operations are compensated so the repository is left where it started.
func (uc *StartWork) Execute(ctx context.Context, in StartWorkInput) (*StartWorkOutput, error) {
	tc, err := shared.LoadTicketContext(uc.store, in.TicketID)
	if err != nil {
		return nil, err
	}
	ticket := tc.Ticket

	// Re-running start on a ticket that is already in progress is a no-op,
	// not an error; agents retry freely.
	if ticket.Status == domain.StatusInProgress {
		return &StartWorkOutput{
			Ticket:         ticket.Snapshot(),
			BranchName:     ticket.BranchName,
			AlreadyStarted: true,
		}, nil
	}

	if !ticket.Status.CanStartWork() {
		return nil, fmt.Errorf("ticket %s is %s: %w", domain.ShortID(ticket.ID), ticket.Status, domain.ErrInvalidTransition)
	}

	if err := shared.VerifyProjectPath(tc.Project); err != nil {
		return nil, err
	}
	if err := uc.git.VerifyWorkTree(tc.Project.Path); err != nil {
		return nil, err
	}

	coord := shared.NewBranchCoordinator(uc.git, uc.store.WorkflowStates(), uc.clock)
	res, err := coord.Resolve(ticket, tc.Epic, tc.Project.Path)
	if err != nil {
		return nil, err
	}

	out := &StartWorkOutput{
		BranchName:      res.BranchName,
		Created:         res.Created,
		UsingEpicBranch: res.UsingEpicBranch,
	}

	ticket.Status = domain.StatusInProgress
	ticket.BranchName = res.BranchName
	ticket.Updated = uc.clock.Now()

	if err := uc.store.Tickets().Save(ticket); err != nil {
		uc.rollbackBranch(ticket.ID, tc.Project.Path, res)
		return nil, fmt.Errorf("save ticket: %w", err)
	}

	uc.logger.Info(ticket.ID, "workflow", fmt.Sprintf("started work on branch %s", res.BranchName))

	// Phase tracking is secondary state. The ticket transition above is
	// already durable, so a failure here degrades to a warning.
	if err := uc.resetTicketState(ticket.ID); err != nil {
		out.Warnings = append(out.Warnings, fmt.Sprintf("workflow state not updated: %v", err))
		uc.logger.Warn(ticket.ID, "workflow", fmt.Sprintf("workflow state not updated: %v", err))
	}

	out.Ticket = ticket.Snapshot()
	return out, nil
}

// rollbackBranch undoes branch creation and checkout after a failed primary
// save. A newly created epic branch is kept: its workflow state row was
// written during resolution and deleting the branch would orphan it. The
// checkout and delete steps are attempted independently so one failing does
// not skip the other.
func (uc *StartWork) rollbackBranch(ticketID, dir string, res *shared.BranchResolution) {
	if res.PreviousBranch != "" && res.PreviousBranch != res.BranchName {
		if err := uc.git.Checkout(dir, res.PreviousBranch); err != nil {
			uc.logger.Error(ticketID, "workflow", fmt.Sprintf("rollback checkout of %s failed: %v", res.PreviousBranch, err))
		}
	}
	if res.Created && !res.UsingEpicBranch {
		if err := uc.git.DeleteBranch(dir, res.BranchName, true); err != nil {
			uc.logger.Error(ticketID, "workflow", fmt.Sprintf("rollback delete of %s failed: %v", res.BranchName, err))
		}
	}
}

// resetTicketState creates or resets the phase row for a fresh round of
// implementation. The review iteration survives restarts so the fix loop
// count stays honest.
func (uc *StartWork) resetTicketState(ticketID string) error {
	states := uc.store.WorkflowStates()
	state, err := states.TicketState(ticketID)
	if err != nil {
		return err
	}
	if state == nil {
		state = &domain.TicketWorkflowState{TicketID: ticketID}
	}
	state.Phase = domain.PhaseImplementation
	state.FindingsRaised = 0
	state.FindingsFixed = 0
	return states.SaveTicketState(state)
}
