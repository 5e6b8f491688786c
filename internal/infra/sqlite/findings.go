package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/tracklet/trackd/internal/domain"
)

const findingColumns = `id, ticket_id, reviewer, severity, category, description, fix_status, fix_description, created, fixed_at`

type findingRepo struct {
	q queryer
}

func (r *findingRepo) Get(id string) (*domain.ReviewFinding, error) {
	row := r.q.QueryRow(`SELECT `+findingColumns+` FROM review_findings WHERE id = ?`, id)
	f, err := scanFinding(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return f, err
}

func (r *findingRepo) ListByTicket(ticketID string) ([]*domain.ReviewFinding, error) {
	rows, err := r.q.Query(`SELECT `+findingColumns+` FROM review_findings WHERE ticket_id = ? ORDER BY created`, ticketID)
	if err != nil {
		return nil, fmt.Errorf("list findings: %w", err)
	}
	defer rows.Close()

	var findings []*domain.ReviewFinding
	for rows.Next() {
		f, err := scanFinding(rows)
		if err != nil {
			return nil, err
		}
		findings = append(findings, f)
	}
	return findings, rows.Err()
}

func (r *findingRepo) Save(f *domain.ReviewFinding) error {
	_, err := r.q.Exec(`
		INSERT INTO review_findings (`+findingColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			fix_status = excluded.fix_status,
			fix_description = excluded.fix_description,
			fixed_at = excluded.fixed_at`,
		f.ID, f.TicketID, f.Reviewer, string(f.Severity), f.Category,
		f.Description, string(f.FixStatus), f.FixDescription,
		timeToDB(f.Created), nullTimeToDB(f.FixedAt))
	if err != nil {
		return fmt.Errorf("save finding: %w", err)
	}
	return nil
}

func scanFinding(row rowScanner) (*domain.ReviewFinding, error) {
	var f domain.ReviewFinding
	var severity, fixStatus, created string
	var fixedAt sql.NullString
	if err := row.Scan(&f.ID, &f.TicketID, &f.Reviewer, &severity, &f.Category,
		&f.Description, &fixStatus, &f.FixDescription, &created, &fixedAt); err != nil {
		return nil, err
	}
	f.Severity = domain.Severity(severity)
	f.FixStatus = domain.FixStatus(fixStatus)

	var err error
	if f.Created, err = timeFromDB(created); err != nil {
		return nil, fmt.Errorf("parse finding created: %w", err)
	}
	if f.FixedAt, err = nullTimeFromDB(fixedAt); err != nil {
		return nil, fmt.Errorf("parse finding fixed_at: %w", err)
	}
	return &f, nil
}
