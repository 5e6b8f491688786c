package usecase

import (
	"context"
	"fmt"

	"github.com/tracklet/trackd/internal/domain"
	"github.com/tracklet/trackd/internal/usecase/shared"
)

// StartEpicWorkInput contains the parameters for initializing an epic.
type StartEpicWorkInput struct {
	EpicID  string
	OpenPR  bool // Push the branch and open a draft pull request
	PRTitle string
	PRBody  string
}

// StartEpicWorkOutput contains the result of initializing an epic.
type StartEpicWorkOutput struct {
	State        domain.EpicWorkflowState
	Warnings     []string
	BranchName   string
	WorktreePath string // Empty for shared-branch epics
	Created      bool   // True if the branch was created by this call
}

// StartEpicWork is the use case for setting up an epic's shared branch,
// optional worktree, and optional draft pull request. Everything past the
// branch resolution degrades to warnings; the branch itself is the one
// thing this use case must not leave half-done.
type StartEpicWork struct {
	store     domain.Store
	git       domain.Git
	worktrees domain.WorktreeManager
	prs       domain.PullRequests // nil when no PR host is configured
	clock     domain.Clock
	logger    domain.Logger
	prTimeout func(ctx context.Context) (context.Context, context.CancelFunc)
}

// NewStartEpicWork creates a new StartEpicWork use case. prTimeout bounds
// the pull request call; it is applied only around that network hop.
func NewStartEpicWork(
	store domain.Store,
	git domain.Git,
	worktrees domain.WorktreeManager,
	prs domain.PullRequests,
	clock domain.Clock,
	logger domain.Logger,
	prTimeout func(ctx context.Context) (context.Context, context.CancelFunc),
) *StartEpicWork {
	if prTimeout == nil {
		prTimeout = func(ctx context.Context) (context.Context, context.CancelFunc) {
			return context.WithCancel(ctx)
		}
	}
	return &StartEpicWork{
		store:     store,
		git:       git,
		worktrees: worktrees,
		prs:       prs,
		clock:     clock,
		logger:    logger,
		prTimeout: prTimeout,
	}
}

// Execute initializes work on an epic.
func (uc *StartEpicWork) Execute(ctx context.Context, in StartEpicWorkInput) (*StartEpicWorkOutput, error) {
	epic, err := uc.store.Epics().Get(in.EpicID)
	if err != nil {
		return nil, fmt.Errorf("load epic: %w", err)
	}
	if epic == nil {
		return nil, fmt.Errorf("epic %s: %w", in.EpicID, domain.ErrEpicNotFound)
	}

	project, err := uc.store.Projects().Get(epic.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	if project == nil {
		return nil, fmt.Errorf("project %s: %w", epic.ProjectID, domain.ErrProjectNotFound)
	}
	if err := shared.VerifyProjectPath(project); err != nil {
		return nil, err
	}
	if err := uc.git.VerifyWorkTree(project.Path); err != nil {
		return nil, err
	}

	coord := shared.NewBranchCoordinator(uc.git, uc.store.WorkflowStates(), uc.clock)
	res, err := coord.ResolveEpic(epic, project.Path)
	if err != nil {
		return nil, err
	}

	out := &StartEpicWorkOutput{BranchName: res.BranchName, Created: res.Created}

	state, err := uc.store.WorkflowStates().EpicState(epic.ID)
	if err != nil {
		return nil, fmt.Errorf("read epic workflow state: %w", err)
	}
	if state == nil {
		// ResolveEpic records the state row; reaching here means a racing
		// delete, which the caller should see as a hard error.
		return nil, fmt.Errorf("epic %s workflow state disappeared after branch resolution", domain.ShortID(epic.ID))
	}

	if epic.Isolation == domain.IsolationWorktree {
		// Git refuses to add a worktree for a branch checked out in the
		// main tree, so HEAD goes back to where resolution found it.
		if res.PreviousBranch != "" && res.PreviousBranch != res.BranchName {
			if err := uc.git.Checkout(project.Path, res.PreviousBranch); err != nil {
				out.Warnings = append(out.Warnings, fmt.Sprintf("could not restore %s in the main tree: %v", res.PreviousBranch, err))
			}
		}
		path, err := uc.worktrees.Ensure(res.BranchName, "")
		if err != nil {
			out.Warnings = append(out.Warnings, fmt.Sprintf("worktree not created: %v", err))
			uc.logger.Warn("", "epic", fmt.Sprintf("worktree for %s not created: %v", res.BranchName, err))
		} else {
			state.WorktreePath = path
			out.WorktreePath = path
		}
	}

	if err := uc.refreshCounters(epic.ID, state); err != nil {
		out.Warnings = append(out.Warnings, fmt.Sprintf("ticket counters not refreshed: %v", err))
	}

	if in.OpenPR {
		uc.openDraftPR(ctx, epic, res.BranchName, in, state, out)
	}

	if err := uc.store.WorkflowStates().SaveEpicState(state); err != nil {
		out.Warnings = append(out.Warnings, fmt.Sprintf("epic state not fully saved: %v", err))
		uc.logger.Warn("", "epic", fmt.Sprintf("epic %s state not fully saved: %v", domain.ShortID(epic.ID), err))
	}

	uc.logger.Info("", "epic", fmt.Sprintf("epic %s ready on branch %s", domain.ShortID(epic.ID), res.BranchName))
	out.State = *state
	return out, nil
}

func (uc *StartEpicWork) refreshCounters(epicID string, state *domain.EpicWorkflowState) error {
	tickets, err := uc.store.Tickets().ListByEpic(epicID)
	if err != nil {
		return err
	}
	state.TicketsTotal = len(tickets)
	done := 0
	for _, t := range tickets {
		if t.Status == domain.StatusDone {
			done++
		}
	}
	state.TicketsDone = done
	return nil
}

// openDraftPR pushes the branch and opens a draft pull request. Every
// failure in here is a warning: the epic is usable without a PR and the
// command can be re-run once the remote is reachable.
func (uc *StartEpicWork) openDraftPR(ctx context.Context, epic *domain.Epic, branch string, in StartEpicWorkInput, state *domain.EpicWorkflowState, out *StartEpicWorkOutput) {
	if state.PRURL != "" {
		out.Warnings = append(out.Warnings, fmt.Sprintf("pull request already open: %s", state.PRURL))
		return
	}
	if uc.prs == nil {
		out.Warnings = append(out.Warnings, "pull request host not configured")
		return
	}

	prCtx, cancel := uc.prTimeout(ctx)
	defer cancel()

	project, err := uc.store.Projects().Get(epic.ProjectID)
	if err != nil || project == nil {
		out.Warnings = append(out.Warnings, "pull request not opened: project unavailable")
		return
	}

	if err := uc.git.Push(prCtx, project.Path, branch); err != nil {
		out.Warnings = append(out.Warnings, fmt.Sprintf("branch not pushed: %v", err))
		uc.logger.Warn("", "epic", fmt.Sprintf("push of %s failed: %v", branch, err))
		return
	}

	trunk, err := shared.TrunkBranch(uc.git, project.Path)
	if err != nil {
		out.Warnings = append(out.Warnings, fmt.Sprintf("pull request not opened: %v", err))
		return
	}

	title := in.PRTitle
	if title == "" {
		title = epic.Title
	}
	pr, err := uc.prs.Create(prCtx, domain.CreatePROptions{
		Title: title,
		Body:  in.PRBody,
		Head:  branch,
		Base:  trunk,
		Draft: true,
	})
	if err != nil {
		out.Warnings = append(out.Warnings, fmt.Sprintf("pull request not opened: %v", err))
		uc.logger.Warn("", "epic", fmt.Sprintf("pull request for %s failed: %v", branch, err))
		return
	}

	state.PRURL = pr.URL
	state.PRStatus = pr.Status
	state.PRNumber = pr.Number
	uc.logger.Info("", "epic", fmt.Sprintf("opened draft pull request %s", pr.URL))
}
