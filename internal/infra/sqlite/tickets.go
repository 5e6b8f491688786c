package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/tracklet/trackd/internal/domain"
)

const ticketColumns = `id, project_id, epic_id, title, description, status, priority, position, extras, branch_name, completed_at, created, updated`

type ticketRepo struct {
	q queryer
}

func (r *ticketRepo) Get(id string) (*domain.Ticket, error) {
	row := r.q.QueryRow(`SELECT `+ticketColumns+` FROM tickets WHERE id = ?`, id)
	t, err := scanTicket(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return t, err
}

func (r *ticketRepo) ListByProject(projectID string) ([]*domain.Ticket, error) {
	return r.list(`SELECT `+ticketColumns+` FROM tickets WHERE project_id = ? ORDER BY status, position`, projectID)
}

func (r *ticketRepo) ListByEpic(epicID string) ([]*domain.Ticket, error) {
	return r.list(`SELECT `+ticketColumns+` FROM tickets WHERE epic_id = ? ORDER BY position`, epicID)
}

func (r *ticketRepo) list(query string, args ...any) ([]*domain.Ticket, error) {
	rows, err := r.q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*domain.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

func (r *ticketRepo) Save(t *domain.Ticket) error {
	extras, err := domain.MarshalExtras(t.Extras)
	if err != nil {
		return fmt.Errorf("marshal ticket extras: %w", err)
	}
	_, err = r.q.Exec(`
		INSERT INTO tickets (`+ticketColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			project_id = excluded.project_id,
			epic_id = excluded.epic_id,
			title = excluded.title,
			description = excluded.description,
			status = excluded.status,
			priority = excluded.priority,
			position = excluded.position,
			extras = excluded.extras,
			branch_name = excluded.branch_name,
			completed_at = excluded.completed_at,
			updated = excluded.updated`,
		t.ID, t.ProjectID, nullStrToDB(t.EpicID), t.Title, t.Description,
		string(t.Status), t.Priority, t.Position, extras, t.BranchName,
		nullTimeToDB(t.CompletedAt), timeToDB(t.Created), timeToDB(t.Updated))
	if err != nil {
		return fmt.Errorf("save ticket: %w", err)
	}
	return nil
}

func scanTicket(row rowScanner) (*domain.Ticket, error) {
	var t domain.Ticket
	var epicID, completedAt sql.NullString
	var status, extras, created, updated string
	if err := row.Scan(&t.ID, &t.ProjectID, &epicID, &t.Title, &t.Description,
		&status, &t.Priority, &t.Position, &extras, &t.BranchName,
		&completedAt, &created, &updated); err != nil {
		return nil, err
	}

	t.Status = domain.Status(status)
	t.EpicID = nullStrFromDB(epicID)
	// A corrupt extras payload degrades to an empty one; the ticket itself
	// stays readable.
	t.Extras, _ = domain.UnmarshalExtras(extras)

	var err error
	if t.Created, err = timeFromDB(created); err != nil {
		return nil, fmt.Errorf("parse ticket created: %w", err)
	}
	if t.Updated, err = timeFromDB(updated); err != nil {
		return nil, fmt.Errorf("parse ticket updated: %w", err)
	}
	if t.CompletedAt, err = nullTimeFromDB(completedAt); err != nil {
		return nil, fmt.Errorf("parse ticket completed_at: %w", err)
	}
	return &t, nil
}
