package usecase

import (
	"context"
	"fmt"

	"github.com/tracklet/trackd/internal/domain"
	"github.com/tracklet/trackd/internal/usecase/shared"
)

// SubmitFindingInput contains the parameters for recording a review finding.
type SubmitFindingInput struct {
	TicketID    string
	Reviewer    string
	Severity    string
	Category    string
	Description string
}

// SubmitFindingOutput contains the recorded finding.
type SubmitFindingOutput struct {
	Finding domain.ReviewFinding
}

// SubmitFinding is the use case for recording a finding against a ticket
// under AI review.
type SubmitFinding struct {
	store  domain.Store
	ids    domain.IDGenerator
	clock  domain.Clock
	logger domain.Logger
}

// NewSubmitFinding creates a new SubmitFinding use case.
func NewSubmitFinding(store domain.Store, ids domain.IDGenerator, clock domain.Clock, logger domain.Logger) *SubmitFinding {
	return &SubmitFinding{
		store:  store,
		ids:    ids,
		clock:  clock,
		logger: logger,
	}
}

// Execute records a finding.
func (uc *SubmitFinding) Execute(ctx context.Context, in SubmitFindingInput) (*SubmitFindingOutput, error) {
	severity := domain.Severity(in.Severity)
	if !severity.IsValid() {
		return nil, fmt.Errorf("severity %q: %w", in.Severity, domain.ErrInvalidSeverity)
	}
	if in.Description == "" {
		return nil, fmt.Errorf("finding description cannot be empty")
	}

	tc, err := shared.LoadTicketContext(uc.store, in.TicketID)
	if err != nil {
		return nil, err
	}

	finding := &domain.ReviewFinding{
		Created:     uc.clock.Now(),
		ID:          uc.ids.NewID(),
		TicketID:    tc.Ticket.ID,
		Reviewer:    in.Reviewer,
		Category:    in.Category,
		Description: in.Description,
		Severity:    severity,
		FixStatus:   domain.FixStatusOpen,
	}
	if err := uc.store.Findings().Save(finding); err != nil {
		return nil, fmt.Errorf("save finding: %w", err)
	}

	if err := uc.countRaised(tc.Ticket.ID); err != nil {
		uc.logger.Warn(tc.Ticket.ID, "review", fmt.Sprintf("finding counter not updated: %v", err))
	}

	uc.logger.Info(tc.Ticket.ID, "review", fmt.Sprintf("%s finding recorded: %s", severity, in.Description))
	return &SubmitFindingOutput{Finding: *finding}, nil
}

func (uc *SubmitFinding) countRaised(ticketID string) error {
	states := uc.store.WorkflowStates()
	state, err := states.TicketState(ticketID)
	if err != nil {
		return err
	}
	if state == nil {
		state = &domain.TicketWorkflowState{TicketID: ticketID, Phase: domain.PhaseAIReview}
	}
	state.FindingsRaised++
	return states.SaveTicketState(state)
}
