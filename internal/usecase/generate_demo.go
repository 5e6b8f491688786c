package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/tracklet/trackd/internal/domain"
	"github.com/tracklet/trackd/internal/usecase/shared"
)

// minDemoSteps is the smallest demo script a human reviewer will accept.
const minDemoSteps = 3

// GenerateDemoInput contains the parameters for producing a demo script.
type GenerateDemoInput struct {
	TicketID string
	Steps    []string // Verification steps, in order
}

// GenerateDemoOutput contains the rendered script and the advanced ticket.
type GenerateDemoOutput struct {
	Ticket   domain.Ticket
	Script   string
	Warnings []string
}

// GenerateDemo is the use case for producing the human-review demo script.
// This is the only path that moves a ticket into human_review: the script
// is the artifact the human reviews against, so the transition and the
// script are created together or not at all.
type GenerateDemo struct {
	store  domain.Store
	clock  domain.Clock
	logger domain.Logger
}

// NewGenerateDemo creates a new GenerateDemo use case.
func NewGenerateDemo(store domain.Store, clock domain.Clock, logger domain.Logger) *GenerateDemo {
	return &GenerateDemo{
		store:  store,
		clock:  clock,
		logger: logger,
	}
}

// Execute generates the demo script and advances the ticket.
func (uc *GenerateDemo) Execute(ctx context.Context, in GenerateDemoInput) (*GenerateDemoOutput, error) {
	tc, err := shared.LoadTicketContext(uc.store, in.TicketID)
	if err != nil {
		return nil, err
	}
	ticket := tc.Ticket

	if ticket.Status != domain.StatusAIReview {
		return nil, fmt.Errorf("ticket %s is %s, not ai_review: %w", domain.ShortID(ticket.ID), ticket.Status, domain.ErrInvalidTransition)
	}

	steps := make([]string, 0, len(in.Steps))
	for _, s := range in.Steps {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			steps = append(steps, trimmed)
		}
	}
	if len(steps) < minDemoSteps {
		return nil, fmt.Errorf("got %d steps: %w", len(steps), domain.ErrTooFewDemoSteps)
	}

	gate, err := NewCheckReview(uc.store).Execute(ctx, CheckReviewInput{TicketID: ticket.ID})
	if err != nil {
		return nil, err
	}
	if !gate.CanProceedToHumanReview {
		descs := make([]string, 0, len(gate.OpenBlocking))
		for _, f := range gate.OpenBlocking {
			descs = append(descs, fmt.Sprintf("[%s] %s", f.Severity, f.Description))
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrReviewGateBlocked, strings.Join(descs, "; "))
	}

	script := renderDemoScript(ticket, steps)

	ticket.Status = domain.StatusHumanReview
	ticket.Updated = uc.clock.Now()
	if err := uc.store.Tickets().Save(ticket); err != nil {
		return nil, fmt.Errorf("save ticket: %w", err)
	}

	out := &GenerateDemoOutput{Script: script}
	if err := uc.advancePhase(ticket.ID); err != nil {
		out.Warnings = append(out.Warnings, fmt.Sprintf("workflow state not updated: %v", err))
		uc.logger.Warn(ticket.ID, "review", fmt.Sprintf("workflow state not updated: %v", err))
	}

	uc.logger.Info(ticket.ID, "review", "demo script generated, entering human review")
	out.Ticket = ticket.Snapshot()
	return out, nil
}

func (uc *GenerateDemo) advancePhase(ticketID string) error {
	states := uc.store.WorkflowStates()
	state, err := states.TicketState(ticketID)
	if err != nil {
		return err
	}
	if state == nil {
		state = &domain.TicketWorkflowState{TicketID: ticketID}
	}
	state.Phase = domain.PhaseHumanReview
	return states.SaveTicketState(state)
}

func renderDemoScript(ticket *domain.Ticket, steps []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Demo: %s\n\n", ticket.Title)
	if ticket.BranchName != "" {
		fmt.Fprintf(&b, "Branch: %s\n\n", ticket.BranchName)
	}
	b.WriteString("## Verification steps\n\n")
	for i, s := range steps {
		fmt.Fprintf(&b, "%d. %s\n", i+1, s)
	}
	return b.String()
}
