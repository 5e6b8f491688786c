package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/tracklet/trackd/internal/domain"
)

type workflowRepo struct {
	q queryer
}

func (r *workflowRepo) EpicState(epicID string) (*domain.EpicWorkflowState, error) {
	row := r.q.QueryRow(`
		SELECT epic_id, branch_name, branch_created_at, worktree_path, current_ticket_id,
		       pr_number, pr_url, pr_status, tickets_total, tickets_done
		FROM epic_workflow_states WHERE epic_id = ?`, epicID)

	var s domain.EpicWorkflowState
	var branchCreated string
	err := row.Scan(&s.EpicID, &s.BranchName, &branchCreated, &s.WorktreePath,
		&s.CurrentTicketID, &s.PRNumber, &s.PRURL, &s.PRStatus,
		&s.TicketsTotal, &s.TicketsDone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get epic workflow state: %w", err)
	}
	if s.BranchCreatedAt, err = timeFromDB(branchCreated); err != nil {
		return nil, fmt.Errorf("parse epic branch timestamp: %w", err)
	}
	return &s, nil
}

func (r *workflowRepo) SaveEpicState(s *domain.EpicWorkflowState) error {
	_, err := r.q.Exec(`
		INSERT INTO epic_workflow_states
			(epic_id, branch_name, branch_created_at, worktree_path, current_ticket_id,
			 pr_number, pr_url, pr_status, tickets_total, tickets_done)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(epic_id) DO UPDATE SET
			branch_name = excluded.branch_name,
			branch_created_at = excluded.branch_created_at,
			worktree_path = excluded.worktree_path,
			current_ticket_id = excluded.current_ticket_id,
			pr_number = excluded.pr_number,
			pr_url = excluded.pr_url,
			pr_status = excluded.pr_status,
			tickets_total = excluded.tickets_total,
			tickets_done = excluded.tickets_done`,
		s.EpicID, s.BranchName, timeToDB(s.BranchCreatedAt), s.WorktreePath,
		s.CurrentTicketID, s.PRNumber, s.PRURL, s.PRStatus,
		s.TicketsTotal, s.TicketsDone)
	if err != nil {
		return fmt.Errorf("save epic workflow state: %w", err)
	}
	return nil
}

func (r *workflowRepo) TicketState(ticketID string) (*domain.TicketWorkflowState, error) {
	row := r.q.QueryRow(`
		SELECT ticket_id, phase, review_iteration, findings_raised, findings_fixed
		FROM ticket_workflow_states WHERE ticket_id = ?`, ticketID)

	var s domain.TicketWorkflowState
	var phase string
	err := row.Scan(&s.TicketID, &phase, &s.ReviewIteration, &s.FindingsRaised, &s.FindingsFixed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get ticket workflow state: %w", err)
	}
	s.Phase = domain.Phase(phase)
	return &s, nil
}

func (r *workflowRepo) SaveTicketState(s *domain.TicketWorkflowState) error {
	_, err := r.q.Exec(`
		INSERT INTO ticket_workflow_states
			(ticket_id, phase, review_iteration, findings_raised, findings_fixed)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(ticket_id) DO UPDATE SET
			phase = excluded.phase,
			review_iteration = excluded.review_iteration,
			findings_raised = excluded.findings_raised,
			findings_fixed = excluded.findings_fixed`,
		s.TicketID, string(s.Phase), s.ReviewIteration, s.FindingsRaised, s.FindingsFixed)
	if err != nil {
		return fmt.Errorf("save ticket workflow state: %w", err)
	}
	return nil
}
