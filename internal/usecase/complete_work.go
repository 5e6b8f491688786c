package usecase

import (
	"context"
	"fmt"

	"github.com/tracklet/trackd/internal/domain"
	"github.com/tracklet/trackd/internal/usecase/shared"
)

// CompleteWorkInput contains the parameters for completing implementation.
type CompleteWorkInput struct {
	TicketID string
	Summary  string // Optional implementation summary for the log
}

// CompleteWorkOutput contains the result of completing implementation.
type CompleteWorkOutput struct {
	Ticket               domain.Ticket
	Diff                 *domain.DiffSummary // nil when the summary could not be built
	Warnings             []string
	ReviewIteration      int
	AlreadyInReview      bool
	AlreadyInHumanReview bool
	AlreadyDone          bool
}

// CompleteWork is the use case for handing a ticket from implementation to
// AI review. It never advances past ai_review; human_review is reached only
// through the demo script gate.
type CompleteWork struct {
	store  domain.Store
	git    domain.Git
	clock  domain.Clock
	logger domain.Logger
}

// NewCompleteWork creates a new CompleteWork use case.
func NewCompleteWork(store domain.Store, git domain.Git, clock domain.Clock, logger domain.Logger) *CompleteWork {
	return &CompleteWork{
		store:  store,
		git:    git,
		clock:  clock,
		logger: logger,
	}
}

// Execute completes implementation for a ticket.
func (uc *CompleteWork) Execute(ctx context.Context, in CompleteWorkInput) (*CompleteWorkOutput, error) {
	tc, err := shared.LoadTicketContext(uc.store, in.TicketID)
	if err != nil {
		return nil, err
	}
	ticket := tc.Ticket

	switch ticket.Status {
	case domain.StatusDone:
		return &CompleteWorkOutput{Ticket: ticket.Snapshot(), AlreadyDone: true}, nil
	case domain.StatusAIReview:
		return &CompleteWorkOutput{Ticket: ticket.Snapshot(), AlreadyInReview: true}, nil
	case domain.StatusHumanReview:
		return &CompleteWorkOutput{Ticket: ticket.Snapshot(), AlreadyInHumanReview: true}, nil
	case domain.StatusInProgress:
		// proceed
	default:
		return nil, fmt.Errorf("ticket %s is %s, not in_progress: %w", domain.ShortID(ticket.ID), ticket.Status, domain.ErrInvalidTransition)
	}

	out := &CompleteWorkOutput{}

	// The diff summary is reporting, not state. Any failure here is
	// reduced to a warning so review is never blocked by a git hiccup.
	out.Diff, err = uc.diffAgainstTrunk(tc.Project.Path, ticket.BranchName)
	if err != nil {
		out.Warnings = append(out.Warnings, fmt.Sprintf("diff summary unavailable: %v", err))
		uc.logger.Warn(ticket.ID, "workflow", fmt.Sprintf("diff summary unavailable: %v", err))
	}

	ticket.Status = domain.StatusAIReview
	ticket.Updated = uc.clock.Now()
	if err := uc.store.Tickets().Save(ticket); err != nil {
		return nil, fmt.Errorf("save ticket: %w", err)
	}

	if in.Summary != "" {
		uc.logger.Info(ticket.ID, "workflow", "implementation summary: "+in.Summary)
	}
	uc.logger.Info(ticket.ID, "workflow", "implementation complete, entering AI review")

	iteration, err := uc.bumpReviewIteration(ticket.ID)
	if err != nil {
		out.Warnings = append(out.Warnings, fmt.Sprintf("workflow state not updated: %v", err))
		uc.logger.Warn(ticket.ID, "workflow", fmt.Sprintf("workflow state not updated: %v", err))
	}
	out.ReviewIteration = iteration

	out.Ticket = ticket.Snapshot()
	return out, nil
}

func (uc *CompleteWork) diffAgainstTrunk(dir, branch string) (*domain.DiffSummary, error) {
	if branch == "" {
		return nil, fmt.Errorf("ticket has no recorded branch")
	}
	trunk, err := shared.TrunkBranch(uc.git, dir)
	if err != nil {
		return nil, err
	}
	return uc.git.DiffSummary(dir, trunk, branch)
}

func (uc *CompleteWork) bumpReviewIteration(ticketID string) (int, error) {
	states := uc.store.WorkflowStates()
	state, err := states.TicketState(ticketID)
	if err != nil {
		return 0, err
	}
	if state == nil {
		state = &domain.TicketWorkflowState{TicketID: ticketID}
	}
	state.Phase = domain.PhaseAIReview
	state.ReviewIteration++
	if err := states.SaveTicketState(state); err != nil {
		return 0, err
	}
	return state.ReviewIteration, nil
}
