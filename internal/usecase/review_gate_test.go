package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracklet/trackd/internal/domain"
	"github.com/tracklet/trackd/internal/testutil"
)

func seedReviewTicket(t *testing.T, store *testutil.Store) *domain.Ticket {
	t.Helper()
	return seedTicket(t, store, "a1b2c3d4-0000-4000-8000-000000000001", "Add login form", domain.StatusAIReview)
}

func submitFinding(t *testing.T, store *testutil.Store, ids *testutil.IDs, ticketID, severity string) domain.ReviewFinding {
	t.Helper()
	uc := NewSubmitFinding(store, ids, testutil.NewClock(), &testutil.Logger{})
	out, err := uc.Execute(context.Background(), SubmitFindingInput{
		TicketID:    ticketID,
		Reviewer:    "reviewer-bot",
		Severity:    severity,
		Description: "issue of severity " + severity,
	})
	require.NoError(t, err)
	return out.Finding
}

func TestSubmitFinding_RecordsOpenFinding(t *testing.T) {
	store := testutil.NewStore()
	seedProject(t, store)
	ticket := seedReviewTicket(t, store)

	finding := submitFinding(t, store, &testutil.IDs{}, ticket.ID, "major")

	assert.Equal(t, domain.SeverityMajor, finding.Severity)
	assert.Equal(t, domain.FixStatusOpen, finding.FixStatus)
	assert.Equal(t, ticket.ID, finding.TicketID)

	state, err := store.StateRepo.TicketState(ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, state.FindingsRaised)
}

func TestSubmitFinding_RejectsUnknownSeverity(t *testing.T) {
	store := testutil.NewStore()
	seedProject(t, store)
	ticket := seedReviewTicket(t, store)

	uc := NewSubmitFinding(store, &testutil.IDs{}, testutil.NewClock(), &testutil.Logger{})
	_, err := uc.Execute(context.Background(), SubmitFindingInput{
		TicketID:    ticket.ID,
		Severity:    "catastrophic",
		Description: "bad",
	})

	assert.ErrorIs(t, err, domain.ErrInvalidSeverity)
}

func TestMarkFindingFixed_FlipsStatusKeepsRecord(t *testing.T) {
	store := testutil.NewStore()
	seedProject(t, store)
	ticket := seedReviewTicket(t, store)
	ids := &testutil.IDs{}
	finding := submitFinding(t, store, ids, ticket.ID, "critical")

	uc := NewMarkFindingFixed(store, testutil.NewClock(), &testutil.Logger{})
	out, err := uc.Execute(context.Background(), MarkFindingFixedInput{
		FindingID:      finding.ID,
		FixDescription: "guarded the nil case",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.FixStatusFixed, out.Finding.FixStatus)
	require.NotNil(t, out.Finding.FixedAt)
	assert.Equal(t, "guarded the nil case", out.Finding.FixDescription)

	// The finding still exists; fixing is a flip, not a delete.
	kept, err := store.FindingRepo.Get(finding.ID)
	require.NoError(t, err)
	require.NotNil(t, kept)

	state, err := store.StateRepo.TicketState(ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, state.FindingsFixed)
}

func TestMarkFindingFixed_AlreadyFixed(t *testing.T) {
	store := testutil.NewStore()
	seedProject(t, store)
	ticket := seedReviewTicket(t, store)
	finding := submitFinding(t, store, &testutil.IDs{}, ticket.ID, "minor")

	uc := NewMarkFindingFixed(store, testutil.NewClock(), &testutil.Logger{})
	_, err := uc.Execute(context.Background(), MarkFindingFixedInput{FindingID: finding.ID})
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), MarkFindingFixedInput{FindingID: finding.ID})
	assert.ErrorIs(t, err, domain.ErrFindingAlreadyFixed)
}

func TestCheckReview_BlocksOnOpenCriticalAndMajor(t *testing.T) {
	store := testutil.NewStore()
	seedProject(t, store)
	ticket := seedReviewTicket(t, store)
	ids := &testutil.IDs{}
	critical := submitFinding(t, store, ids, ticket.ID, "critical")
	major := submitFinding(t, store, ids, ticket.ID, "major")
	submitFinding(t, store, ids, ticket.ID, "minor")
	submitFinding(t, store, ids, ticket.ID, "suggestion")

	check := NewCheckReview(store)
	out, err := check.Execute(context.Background(), CheckReviewInput{TicketID: ticket.ID})
	require.NoError(t, err)
	assert.False(t, out.CanProceedToHumanReview)
	assert.Equal(t, 1, out.OpenCritical)
	assert.Equal(t, 1, out.OpenMajor)
	assert.Len(t, out.OpenBlocking, 2)

	fix := NewMarkFindingFixed(store, testutil.NewClock(), &testutil.Logger{})
	_, err = fix.Execute(context.Background(), MarkFindingFixedInput{FindingID: critical.ID})
	require.NoError(t, err)
	_, err = fix.Execute(context.Background(), MarkFindingFixedInput{FindingID: major.ID})
	require.NoError(t, err)

	// Open minor and suggestion findings never block.
	out, err = check.Execute(context.Background(), CheckReviewInput{TicketID: ticket.ID})
	require.NoError(t, err)
	assert.True(t, out.CanProceedToHumanReview)
	assert.Equal(t, 0, out.OpenCritical)
	assert.Equal(t, 0, out.OpenMajor)
	assert.Equal(t, 1, out.OpenMinor)
	assert.Equal(t, 1, out.OpenSuggestion)
}

func TestGenerateDemo_TransitionsToHumanReview(t *testing.T) {
	store := testutil.NewStore()
	seedProject(t, store)
	ticket := seedReviewTicket(t, store)

	uc := NewGenerateDemo(store, testutil.NewClock(), &testutil.Logger{})
	out, err := uc.Execute(context.Background(), GenerateDemoInput{
		TicketID: ticket.ID,
		Steps:    []string{"open the login page", "submit valid credentials", "confirm the dashboard loads"},
	})

	require.NoError(t, err)
	assert.Equal(t, domain.StatusHumanReview, out.Ticket.Status)
	assert.Contains(t, out.Script, "1. open the login page")
	assert.Contains(t, out.Script, "3. confirm the dashboard loads")

	state, err := store.StateRepo.TicketState(ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseHumanReview, state.Phase)
}

func TestGenerateDemo_RequiresThreeSteps(t *testing.T) {
	store := testutil.NewStore()
	seedProject(t, store)
	ticket := seedReviewTicket(t, store)

	uc := NewGenerateDemo(store, testutil.NewClock(), &testutil.Logger{})
	_, err := uc.Execute(context.Background(), GenerateDemoInput{
		TicketID: ticket.ID,
		Steps:    []string{"step one", "  ", "step two"},
	})

	assert.ErrorIs(t, err, domain.ErrTooFewDemoSteps)

	saved, getErr := store.TicketRepo.Get(ticket.ID)
	require.NoError(t, getErr)
	assert.Equal(t, domain.StatusAIReview, saved.Status)
}

func TestGenerateDemo_RefusesWhileGateBlocked(t *testing.T) {
	store := testutil.NewStore()
	seedProject(t, store)
	ticket := seedReviewTicket(t, store)
	submitFinding(t, store, &testutil.IDs{}, ticket.ID, "critical")

	uc := NewGenerateDemo(store, testutil.NewClock(), &testutil.Logger{})
	_, err := uc.Execute(context.Background(), GenerateDemoInput{
		TicketID: ticket.ID,
		Steps:    []string{"a", "b", "c"},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrReviewGateBlocked)
	assert.Contains(t, err.Error(), "issue of severity critical")

	saved, getErr := store.TicketRepo.Get(ticket.ID)
	require.NoError(t, getErr)
	assert.Equal(t, domain.StatusAIReview, saved.Status)
}

func TestGenerateDemo_RequiresAIReviewStatus(t *testing.T) {
	store := testutil.NewStore()
	seedProject(t, store)
	ticket := seedTicket(t, store, "a1b2c3d4-0000-4000-8000-000000000001", "Add login form", domain.StatusInProgress)

	uc := NewGenerateDemo(store, testutil.NewClock(), &testutil.Logger{})
	_, err := uc.Execute(context.Background(), GenerateDemoInput{
		TicketID: ticket.ID,
		Steps:    []string{"a", "b", "c"},
	})

	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}
