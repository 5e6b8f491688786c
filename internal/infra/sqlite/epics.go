package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/tracklet/trackd/internal/domain"
)

type epicRepo struct {
	q queryer
}

func (r *epicRepo) Get(id string) (*domain.Epic, error) {
	row := r.q.QueryRow(`SELECT id, project_id, title, description, isolation, created FROM epics WHERE id = ?`, id)
	e, err := scanEpic(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return e, err
}

func (r *epicRepo) ListByProject(projectID string) ([]*domain.Epic, error) {
	rows, err := r.q.Query(`SELECT id, project_id, title, description, isolation, created FROM epics WHERE project_id = ? ORDER BY created`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list epics: %w", err)
	}
	defer rows.Close()

	var epics []*domain.Epic
	for rows.Next() {
		e, err := scanEpic(rows)
		if err != nil {
			return nil, err
		}
		epics = append(epics, e)
	}
	return epics, rows.Err()
}

func (r *epicRepo) Save(e *domain.Epic) error {
	_, err := r.q.Exec(`
		INSERT INTO epics (id, project_id, title, description, isolation, created)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			isolation = excluded.isolation`,
		e.ID, e.ProjectID, e.Title, e.Description, string(e.Isolation), timeToDB(e.Created))
	if err != nil {
		return fmt.Errorf("save epic: %w", err)
	}
	return nil
}

func scanEpic(row rowScanner) (*domain.Epic, error) {
	var e domain.Epic
	var isolation, created string
	if err := row.Scan(&e.ID, &e.ProjectID, &e.Title, &e.Description, &isolation, &created); err != nil {
		return nil, err
	}
	e.Isolation = domain.IsolationMode(isolation)
	t, err := timeFromDB(created)
	if err != nil {
		return nil, fmt.Errorf("parse epic timestamp: %w", err)
	}
	e.Created = t
	return &e, nil
}
