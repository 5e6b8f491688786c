package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tracklet/trackd/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "trackd.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seedProject(t *testing.T, store *Store) *domain.Project {
	t.Helper()
	p := &domain.Project{
		ID:      "p1",
		Name:    "demo",
		Path:    "/tmp/demo",
		Created: time.Now(),
	}
	require.NoError(t, store.Projects().Save(p))
	return p
}

func seedTicket(t *testing.T, store *Store, id string, epicID *string) *domain.Ticket {
	t.Helper()
	now := time.Now()
	ticket := &domain.Ticket{
		ID:        id,
		ProjectID: "p1",
		EpicID:    epicID,
		Title:     "Add login form",
		Status:    domain.StatusBacklog,
		Created:   now,
		Updated:   now,
	}
	require.NoError(t, store.Tickets().Save(ticket))
	return ticket
}

func TestMigrate_Idempotent(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Initialize())
	require.NoError(t, store.Initialize())
}

func TestTicketRoundTrip(t *testing.T) {
	store := newTestStore(t)
	seedProject(t, store)

	now := time.Now()
	in := &domain.Ticket{
		ID:        "t1",
		ProjectID: "p1",
		Title:     "Add login form",
		Status:    domain.StatusReady,
		Priority:  2,
		Position:  5,
		Extras: domain.Extras{
			Tags:     []string{"auth"},
			Subtasks: []domain.Subtask{{Title: "form markup"}},
		},
		Created: now,
		Updated: now,
	}
	require.NoError(t, store.Tickets().Save(in))

	out, err := store.Tickets().Get("t1")
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, domain.StatusReady, out.Status)
	assert.Equal(t, 2, out.Priority)
	assert.Equal(t, []string{"auth"}, out.Extras.Tags)
	assert.Nil(t, out.EpicID)
	assert.Nil(t, out.CompletedAt)

	// Update path
	out.Status = domain.StatusInProgress
	out.BranchName = "feature/t1-add-login-form"
	require.NoError(t, store.Tickets().Save(out))

	again, err := store.Tickets().Get("t1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, again.Status)
	assert.Equal(t, "feature/t1-add-login-form", again.BranchName)
}

func TestTicketGet_NotFound(t *testing.T) {
	store := newTestStore(t)
	ticket, err := store.Tickets().Get("missing")
	require.NoError(t, err)
	assert.Nil(t, ticket)
}

func TestTicketListByEpic(t *testing.T) {
	store := newTestStore(t)
	seedProject(t, store)
	require.NoError(t, store.Epics().Save(&domain.Epic{
		ID: "e1", ProjectID: "p1", Title: "Auth", Isolation: domain.IsolationSharedBranch, Created: time.Now(),
	}))

	epicID := "e1"
	seedTicket(t, store, "t1", &epicID)
	seedTicket(t, store, "t2", &epicID)
	seedTicket(t, store, "t3", nil)

	tickets, err := store.Tickets().ListByEpic("e1")
	require.NoError(t, err)
	assert.Len(t, tickets, 2)

	all, err := store.Tickets().ListByProject("p1")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestEpicWorkflowStateRoundTrip(t *testing.T) {
	store := newTestStore(t)
	seedProject(t, store)
	require.NoError(t, store.Epics().Save(&domain.Epic{
		ID: "e1", ProjectID: "p1", Title: "Auth", Isolation: domain.IsolationWorktree, Created: time.Now(),
	}))

	missing, err := store.WorkflowStates().EpicState("e1")
	require.NoError(t, err)
	assert.Nil(t, missing)

	state := &domain.EpicWorkflowState{
		EpicID:          "e1",
		BranchName:      "feature/epic-e1-auth",
		BranchCreatedAt: time.Now(),
		TicketsTotal:    3,
		TicketsDone:     1,
	}
	require.NoError(t, store.WorkflowStates().SaveEpicState(state))

	out, err := store.WorkflowStates().EpicState("e1")
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, "feature/epic-e1-auth", out.BranchName)
	assert.Equal(t, 3, out.TicketsTotal)

	// Update only PR linkage; branch name is authoritative and survives.
	out.PRNumber = 42
	out.PRURL = "https://example.com/pr/42"
	out.PRStatus = "draft"
	require.NoError(t, store.WorkflowStates().SaveEpicState(out))

	again, err := store.WorkflowStates().EpicState("e1")
	require.NoError(t, err)
	assert.Equal(t, 42, again.PRNumber)
	assert.Equal(t, "feature/epic-e1-auth", again.BranchName)
}

func TestTicketWorkflowStateRoundTrip(t *testing.T) {
	store := newTestStore(t)
	seedProject(t, store)
	seedTicket(t, store, "t1", nil)

	missing, err := store.WorkflowStates().TicketState("t1")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, store.WorkflowStates().SaveTicketState(&domain.TicketWorkflowState{
		TicketID: "t1", Phase: domain.PhaseImplementation, ReviewIteration: 0,
	}))

	state, err := store.WorkflowStates().TicketState("t1")
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, domain.PhaseImplementation, state.Phase)

	state.Phase = domain.PhaseAIReview
	state.ReviewIteration = 1
	require.NoError(t, store.WorkflowStates().SaveTicketState(state))

	again, err := store.WorkflowStates().TicketState("t1")
	require.NoError(t, err)
	assert.Equal(t, 1, again.ReviewIteration)
}

func TestFindingsAppendOnly(t *testing.T) {
	store := newTestStore(t)
	seedProject(t, store)
	seedTicket(t, store, "t1", nil)

	f := &domain.ReviewFinding{
		ID:          "f1",
		TicketID:    "t1",
		Reviewer:    "reviewer-agent",
		Severity:    domain.SeverityMajor,
		Category:    "correctness",
		Description: "missing error check",
		FixStatus:   domain.FixStatusOpen,
		Created:     time.Now(),
	}
	require.NoError(t, store.Findings().Save(f))

	fixedAt := time.Now()
	f.FixStatus = domain.FixStatusFixed
	f.FixDescription = "added error check"
	f.FixedAt = &fixedAt
	require.NoError(t, store.Findings().Save(f))

	findings, err := store.Findings().ListByTicket("t1")
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, domain.FixStatusFixed, findings[0].FixStatus)
	assert.Equal(t, "missing error check", findings[0].Description)
	require.NotNil(t, findings[0].FixedAt)
}

func TestSessionsEndActive(t *testing.T) {
	store := newTestStore(t)
	seedProject(t, store)
	seedTicket(t, store, "t1", nil)

	require.NoError(t, store.Sessions().Save(&domain.ConversationSession{
		ID: "s1", TicketID: "t1", ProjectID: "p1", Environment: "local", Started: time.Now(),
	}))
	require.NoError(t, store.Sessions().Save(&domain.ConversationSession{
		ID: "s2", TicketID: "t1", ProjectID: "p1", Environment: "local", Started: time.Now(),
	}))

	n, err := store.Sessions().EndActive("t1", time.Now())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	sessions, err := store.Sessions().ListByTicket("t1")
	require.NoError(t, err)
	for _, s := range sessions {
		assert.False(t, s.IsActive())
	}

	// Nothing left to end.
	n, err = store.Sessions().EndActive("t1", time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestInTransaction_RollsBackOnError(t *testing.T) {
	store := newTestStore(t)
	seedProject(t, store)

	sentinel := errors.New("boom")
	err := store.InTransaction(context.Background(), func(repos domain.Repositories) error {
		now := time.Now()
		if err := repos.Tickets().Save(&domain.Ticket{
			ID: "t1", ProjectID: "p1", Title: "one", Status: domain.StatusBacklog, Created: now, Updated: now,
		}); err != nil {
			return err
		}
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	ticket, err := store.Tickets().Get("t1")
	require.NoError(t, err)
	assert.Nil(t, ticket)
}

func TestInTransaction_Commits(t *testing.T) {
	store := newTestStore(t)
	seedProject(t, store)

	err := store.InTransaction(context.Background(), func(repos domain.Repositories) error {
		now := time.Now()
		for _, id := range []string{"t1", "t2"} {
			if err := repos.Tickets().Save(&domain.Ticket{
				ID: id, ProjectID: "p1", Title: id, Status: domain.StatusBacklog, Created: now, Updated: now,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	tickets, err := store.Tickets().ListByProject("p1")
	require.NoError(t, err)
	assert.Len(t, tickets, 2)
}
