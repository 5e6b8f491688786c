package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracklet/trackd/internal/domain"
	"github.com/tracklet/trackd/internal/testutil"
)

func newStartEpicWork(store *testutil.Store, git *testutil.Git, wt *testutil.Worktrees, prs domain.PullRequests) *StartEpicWork {
	return NewStartEpicWork(store, git, wt, prs, testutil.NewClock(), &testutil.Logger{}, nil)
}

func TestStartEpicWork_CreatesBranchAndState(t *testing.T) {
	store := testutil.NewStore()
	seedProject(t, store)
	epic := seedEpic(t, store, "e1e2e3e4-0000-4000-8000-00000000000e", "Payment flow", domain.IsolationSharedBranch)
	for _, id := range []string{"t2000000-0000-4000-8000-000000000002", "t3000000-0000-4000-8000-000000000003"} {
		ticket := seedTicket(t, store, id, "Part of payments", domain.StatusBacklog)
		ticket.EpicID = &epic.ID
		require.NoError(t, store.TicketRepo.Save(ticket))
	}
	done := seedTicket(t, store, "t4000000-0000-4000-8000-000000000004", "Shipped earlier", domain.StatusDone)
	done.EpicID = &epic.ID
	require.NoError(t, store.TicketRepo.Save(done))
	git := testutil.NewGit()

	uc := newStartEpicWork(store, git, testutil.NewWorktrees(), nil)
	out, err := uc.Execute(context.Background(), StartEpicWorkInput{EpicID: epic.ID})

	require.NoError(t, err)
	assert.Equal(t, "feature/epic-e1e2e3e4-payment-flow", out.BranchName)
	assert.True(t, out.Created)
	assert.Equal(t, 3, out.State.TicketsTotal)
	assert.Equal(t, 1, out.State.TicketsDone)
	assert.Empty(t, out.WorktreePath)

	state, err := store.StateRepo.EpicState(epic.ID)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, "feature/epic-e1e2e3e4-payment-flow", state.BranchName)
}

func TestStartEpicWork_ReusesRecordedBranch(t *testing.T) {
	store := testutil.NewStore()
	seedProject(t, store)
	epic := seedEpic(t, store, "e1e2e3e4-0000-4000-8000-00000000000e", "Payment flow", domain.IsolationSharedBranch)
	git := testutil.NewGit()
	git.Branches["feature/epic-e1e2e3e4-payment-flow"] = true
	require.NoError(t, store.StateRepo.SaveEpicState(&domain.EpicWorkflowState{
		EpicID:     epic.ID,
		BranchName: "feature/epic-e1e2e3e4-payment-flow",
	}))

	uc := newStartEpicWork(store, git, testutil.NewWorktrees(), nil)
	out, err := uc.Execute(context.Background(), StartEpicWorkInput{EpicID: epic.ID})

	require.NoError(t, err)
	assert.False(t, out.Created)
	assert.Equal(t, "feature/epic-e1e2e3e4-payment-flow", out.BranchName)
}

func TestStartEpicWork_RecordedBranchDeletedOutOfBand(t *testing.T) {
	store := testutil.NewStore()
	seedProject(t, store)
	epic := seedEpic(t, store, "e1e2e3e4-0000-4000-8000-00000000000e", "Payment flow", domain.IsolationSharedBranch)
	require.NoError(t, store.StateRepo.SaveEpicState(&domain.EpicWorkflowState{
		EpicID:     epic.ID,
		BranchName: "feature/epic-e1e2e3e4-payment-flow",
	}))

	uc := newStartEpicWork(store, testutil.NewGit(), testutil.NewWorktrees(), nil)
	_, err := uc.Execute(context.Background(), StartEpicWorkInput{EpicID: epic.ID})

	assert.ErrorIs(t, err, domain.ErrEpicBranchMissing)
}

func TestStartEpicWork_WorktreeIsolation(t *testing.T) {
	store := testutil.NewStore()
	seedProject(t, store)
	epic := seedEpic(t, store, "e1e2e3e4-0000-4000-8000-00000000000e", "Payment flow", domain.IsolationWorktree)
	wt := testutil.NewWorktrees()

	uc := newStartEpicWork(store, testutil.NewGit(), wt, nil)
	out, err := uc.Execute(context.Background(), StartEpicWorkInput{EpicID: epic.ID})

	require.NoError(t, err)
	assert.Equal(t, "/worktrees/feature/epic-e1e2e3e4-payment-flow", out.WorktreePath)

	state, err := store.StateRepo.EpicState(epic.ID)
	require.NoError(t, err)
	assert.Equal(t, out.WorktreePath, state.WorktreePath)
}

func TestStartEpicWork_WorktreeFailureIsWarning(t *testing.T) {
	store := testutil.NewStore()
	seedProject(t, store)
	epic := seedEpic(t, store, "e1e2e3e4-0000-4000-8000-00000000000e", "Payment flow", domain.IsolationWorktree)
	wt := testutil.NewWorktrees()
	wt.EnsureErr = errors.New("worktree add failed")

	uc := newStartEpicWork(store, testutil.NewGit(), wt, nil)
	out, err := uc.Execute(context.Background(), StartEpicWorkInput{EpicID: epic.ID})

	require.NoError(t, err)
	require.NotEmpty(t, out.Warnings)
	assert.Contains(t, out.Warnings[0], "worktree add failed")
}

func TestStartEpicWork_OpensDraftPR(t *testing.T) {
	store := testutil.NewStore()
	seedProject(t, store)
	epic := seedEpic(t, store, "e1e2e3e4-0000-4000-8000-00000000000e", "Payment flow", domain.IsolationSharedBranch)
	git := testutil.NewGit()
	prs := &testutil.PullRequests{Result: &domain.PullRequest{URL: "https://example.test/pr/7", Status: "draft", Number: 7}}

	uc := newStartEpicWork(store, git, testutil.NewWorktrees(), prs)
	out, err := uc.Execute(context.Background(), StartEpicWorkInput{EpicID: epic.ID, OpenPR: true})

	require.NoError(t, err)
	assert.Empty(t, out.Warnings)
	assert.Equal(t, "https://example.test/pr/7", out.State.PRURL)
	assert.Equal(t, "draft", out.State.PRStatus)
	assert.Equal(t, 7, out.State.PRNumber)
	assert.Contains(t, git.Calls, "push feature/epic-e1e2e3e4-payment-flow")

	require.Len(t, prs.Opts, 1)
	assert.True(t, prs.Opts[0].Draft)
	assert.Equal(t, "main", prs.Opts[0].Base)
	assert.Equal(t, "Payment flow", prs.Opts[0].Title)
}

func TestStartEpicWork_PRFailureDegradesToWarning(t *testing.T) {
	store := testutil.NewStore()
	seedProject(t, store)
	epic := seedEpic(t, store, "e1e2e3e4-0000-4000-8000-00000000000e", "Payment flow", domain.IsolationSharedBranch)
	git := testutil.NewGit()
	prs := &testutil.PullRequests{Err: errors.New("api unreachable")}

	uc := newStartEpicWork(store, git, testutil.NewWorktrees(), prs)
	out, err := uc.Execute(context.Background(), StartEpicWorkInput{EpicID: epic.ID, OpenPR: true})

	// The branch work stands; only the PR step is reported as a warning.
	require.NoError(t, err)
	require.NotEmpty(t, out.Warnings)
	assert.Contains(t, out.Warnings[0], "api unreachable")
	assert.Equal(t, "feature/epic-e1e2e3e4-payment-flow", out.BranchName)

	state, err := store.StateRepo.EpicState(epic.ID)
	require.NoError(t, err)
	assert.Empty(t, state.PRURL)
}

func TestStartEpicWork_PushFailureSkipsPR(t *testing.T) {
	store := testutil.NewStore()
	seedProject(t, store)
	epic := seedEpic(t, store, "e1e2e3e4-0000-4000-8000-00000000000e", "Payment flow", domain.IsolationSharedBranch)
	git := testutil.NewGit()
	git.PushErr = errors.New("remote rejected")
	prs := &testutil.PullRequests{}

	uc := newStartEpicWork(store, git, testutil.NewWorktrees(), prs)
	out, err := uc.Execute(context.Background(), StartEpicWorkInput{EpicID: epic.ID, OpenPR: true})

	require.NoError(t, err)
	require.NotEmpty(t, out.Warnings)
	assert.Contains(t, out.Warnings[0], "remote rejected")
	assert.Empty(t, prs.Opts)
}

func TestStartEpicWork_NoPRHostConfigured(t *testing.T) {
	store := testutil.NewStore()
	seedProject(t, store)
	epic := seedEpic(t, store, "e1e2e3e4-0000-4000-8000-00000000000e", "Payment flow", domain.IsolationSharedBranch)

	uc := newStartEpicWork(store, testutil.NewGit(), testutil.NewWorktrees(), nil)
	out, err := uc.Execute(context.Background(), StartEpicWorkInput{EpicID: epic.ID, OpenPR: true})

	require.NoError(t, err)
	require.NotEmpty(t, out.Warnings)
	assert.Contains(t, out.Warnings[0], "not configured")
}

func TestStartEpicWork_EpicNotFound(t *testing.T) {
	store := testutil.NewStore()
	seedProject(t, store)

	uc := newStartEpicWork(store, testutil.NewGit(), testutil.NewWorktrees(), nil)
	_, err := uc.Execute(context.Background(), StartEpicWorkInput{EpicID: "missing"})

	assert.ErrorIs(t, err, domain.ErrEpicNotFound)
}
