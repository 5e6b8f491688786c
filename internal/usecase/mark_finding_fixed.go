package usecase

import (
	"context"
	"fmt"

	"github.com/tracklet/trackd/internal/domain"
)

// MarkFindingFixedInput contains the parameters for resolving a finding.
type MarkFindingFixedInput struct {
	FindingID      string
	FixDescription string
}

// MarkFindingFixedOutput contains the updated finding.
type MarkFindingFixedOutput struct {
	Finding domain.ReviewFinding
}

// MarkFindingFixed is the use case for flipping an open finding to fixed.
// Findings are append-only history; this never deletes one.
type MarkFindingFixed struct {
	store  domain.Store
	clock  domain.Clock
	logger domain.Logger
}

// NewMarkFindingFixed creates a new MarkFindingFixed use case.
func NewMarkFindingFixed(store domain.Store, clock domain.Clock, logger domain.Logger) *MarkFindingFixed {
	return &MarkFindingFixed{
		store:  store,
		clock:  clock,
		logger: logger,
	}
}

// Execute marks a finding as fixed.
func (uc *MarkFindingFixed) Execute(ctx context.Context, in MarkFindingFixedInput) (*MarkFindingFixedOutput, error) {
	finding, err := uc.store.Findings().Get(in.FindingID)
	if err != nil {
		return nil, fmt.Errorf("load finding: %w", err)
	}
	if finding == nil {
		return nil, fmt.Errorf("finding %s: %w", in.FindingID, domain.ErrFindingNotFound)
	}
	if !finding.IsOpen() {
		return nil, fmt.Errorf("finding %s: %w", in.FindingID, domain.ErrFindingAlreadyFixed)
	}

	now := uc.clock.Now()
	finding.FixStatus = domain.FixStatusFixed
	finding.FixedAt = &now
	finding.FixDescription = in.FixDescription
	if err := uc.store.Findings().Save(finding); err != nil {
		return nil, fmt.Errorf("save finding: %w", err)
	}

	if err := uc.countFixed(finding.TicketID); err != nil {
		uc.logger.Warn(finding.TicketID, "review", fmt.Sprintf("finding counter not updated: %v", err))
	}

	uc.logger.Info(finding.TicketID, "review", fmt.Sprintf("finding %s fixed", domain.ShortID(finding.ID)))
	return &MarkFindingFixedOutput{Finding: *finding}, nil
}

func (uc *MarkFindingFixed) countFixed(ticketID string) error {
	states := uc.store.WorkflowStates()
	state, err := states.TicketState(ticketID)
	if err != nil {
		return err
	}
	if state == nil {
		state = &domain.TicketWorkflowState{TicketID: ticketID, Phase: domain.PhaseAIReview}
	}
	state.FindingsFixed++
	return states.SaveTicketState(state)
}
