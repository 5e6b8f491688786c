package usecase

import (
	"context"
	"fmt"

	"github.com/tracklet/trackd/internal/domain"
	"github.com/tracklet/trackd/internal/usecase/shared"
)

// CheckReviewInput contains the parameters for inspecting the review gate.
type CheckReviewInput struct {
	TicketID string
}

// CheckReviewOutput reports where a ticket stands against the review gate.
type CheckReviewOutput struct {
	Findings                []*domain.ReviewFinding // All findings, oldest first
	OpenBlocking            []*domain.ReviewFinding
	OpenCritical            int
	OpenMajor               int
	OpenMinor               int
	OpenSuggestion          int
	CanProceedToHumanReview bool
}

// CheckReview is the use case for evaluating the review gate: a ticket may
// advance to human review only when no critical or major finding is open.
// Minor findings and suggestions never block.
type CheckReview struct {
	store domain.Store
}

// NewCheckReview creates a new CheckReview use case.
func NewCheckReview(store domain.Store) *CheckReview {
	return &CheckReview{store: store}
}

// Execute evaluates the gate for a ticket.
func (uc *CheckReview) Execute(ctx context.Context, in CheckReviewInput) (*CheckReviewOutput, error) {
	tc, err := shared.LoadTicketContext(uc.store, in.TicketID)
	if err != nil {
		return nil, err
	}

	findings, err := uc.store.Findings().ListByTicket(tc.Ticket.ID)
	if err != nil {
		return nil, fmt.Errorf("list findings: %w", err)
	}

	out := &CheckReviewOutput{Findings: findings}
	for _, f := range findings {
		if !f.IsOpen() {
			continue
		}
		switch f.Severity {
		case domain.SeverityCritical:
			out.OpenCritical++
		case domain.SeverityMajor:
			out.OpenMajor++
		case domain.SeverityMinor:
			out.OpenMinor++
		case domain.SeveritySuggestion:
			out.OpenSuggestion++
		}
		if f.Severity.Blocking() {
			out.OpenBlocking = append(out.OpenBlocking, f)
		}
	}
	out.CanProceedToHumanReview = len(out.OpenBlocking) == 0
	return out, nil
}
