package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracklet/trackd/internal/domain"
	"github.com/tracklet/trackd/internal/testutil"
)

func TestTrunkBranch_PrefersMainOverMaster(t *testing.T) {
	git := testutil.NewGit()
	git.Branches["master"] = true

	trunk, err := TrunkBranch(git, "/repo")
	require.NoError(t, err)
	assert.Equal(t, "main", trunk)
}

func TestTrunkBranch_FallsBackToMaster(t *testing.T) {
	git := testutil.NewGit()
	delete(git.Branches, "main")
	git.Branches["master"] = true

	trunk, err := TrunkBranch(git, "/repo")
	require.NoError(t, err)
	assert.Equal(t, "master", trunk)
}

func TestTrunkBranch_NoneFound(t *testing.T) {
	git := testutil.NewGit()
	delete(git.Branches, "main")

	_, err := TrunkBranch(git, "/repo")
	assert.ErrorIs(t, err, domain.ErrNoTrunkBranch)
}

func TestResolveEpic_AdoptsOrphanBranch(t *testing.T) {
	// A branch can exist without a state row if a prior run's state write
	// failed; the coordinator adopts it instead of failing on create.
	git := testutil.NewGit()
	epic := &domain.Epic{ID: "e1e2e3e4-0000-4000-8000-00000000000e", Title: "Payment flow"}
	branch := domain.EpicBranchName(epic.ID, epic.Title)
	git.Branches[branch] = true
	states := testutil.NewStore().StateRepo

	coord := NewBranchCoordinator(git, states, testutil.NewClock())
	res, err := coord.ResolveEpic(epic, "/repo")

	require.NoError(t, err)
	assert.Equal(t, branch, res.BranchName)
	assert.False(t, res.Created)
	assert.True(t, res.UsingEpicBranch)

	state, err := states.EpicState(epic.ID)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, branch, state.BranchName)
}

func TestResolveEpic_CreatesFromTrunk(t *testing.T) {
	git := testutil.NewGit()
	git.Current = "feature/elsewhere"
	git.Branches["feature/elsewhere"] = true
	epic := &domain.Epic{ID: "e1e2e3e4-0000-4000-8000-00000000000e", Title: "Payment flow"}
	states := testutil.NewStore().StateRepo

	coord := NewBranchCoordinator(git, states, testutil.NewClock())
	res, err := coord.ResolveEpic(epic, "/repo")

	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, "feature/elsewhere", res.PreviousBranch)
	// Created from trunk, not from whatever HEAD happened to be.
	assert.Contains(t, git.Calls, "checkout main")
}
