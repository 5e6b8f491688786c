package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/tracklet/trackd/internal/domain"
)

type projectRepo struct {
	q queryer
}

func (r *projectRepo) Get(id string) (*domain.Project, error) {
	row := r.q.QueryRow(`SELECT id, name, path, created FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (r *projectRepo) List() ([]*domain.Project, error) {
	rows, err := r.q.Query(`SELECT id, name, path, created FROM projects ORDER BY created`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *projectRepo) Save(p *domain.Project) error {
	_, err := r.q.Exec(`
		INSERT INTO projects (id, name, path, created) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, path = excluded.path`,
		p.ID, p.Name, p.Path, timeToDB(p.Created))
	if err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*domain.Project, error) {
	var p domain.Project
	var created string
	if err := row.Scan(&p.ID, &p.Name, &p.Path, &created); err != nil {
		return nil, err
	}
	t, err := timeFromDB(created)
	if err != nil {
		return nil, fmt.Errorf("parse project timestamp: %w", err)
	}
	p.Created = t
	return &p, nil
}
