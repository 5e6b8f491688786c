package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tracklet/trackd/internal/domain"
)

const sessionColumns = `id, ticket_id, project_id, environment, started, ended`

type sessionRepo struct {
	q queryer
}

func (r *sessionRepo) Get(id string) (*domain.ConversationSession, error) {
	row := r.q.QueryRow(`SELECT `+sessionColumns+` FROM conversation_sessions WHERE id = ?`, id)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

func (r *sessionRepo) ListByTicket(ticketID string) ([]*domain.ConversationSession, error) {
	rows, err := r.q.Query(`SELECT `+sessionColumns+` FROM conversation_sessions WHERE ticket_id = ? ORDER BY started DESC`, ticketID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*domain.ConversationSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (r *sessionRepo) Save(s *domain.ConversationSession) error {
	_, err := r.q.Exec(`
		INSERT INTO conversation_sessions (`+sessionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			environment = excluded.environment,
			ended = excluded.ended`,
		s.ID, s.TicketID, s.ProjectID, s.Environment, timeToDB(s.Started), nullTimeToDB(s.Ended))
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *sessionRepo) EndActive(ticketID string, endedAt time.Time) (int, error) {
	res, err := r.q.Exec(`UPDATE conversation_sessions SET ended = ? WHERE ticket_id = ? AND ended IS NULL`,
		timeToDB(endedAt), ticketID)
	if err != nil {
		return 0, fmt.Errorf("end active sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count ended sessions: %w", err)
	}
	return int(n), nil
}

func scanSession(row rowScanner) (*domain.ConversationSession, error) {
	var s domain.ConversationSession
	var started string
	var ended sql.NullString
	if err := row.Scan(&s.ID, &s.TicketID, &s.ProjectID, &s.Environment, &started, &ended); err != nil {
		return nil, err
	}
	var err error
	if s.Started, err = timeFromDB(started); err != nil {
		return nil, fmt.Errorf("parse session started: %w", err)
	}
	if s.Ended, err = nullTimeFromDB(ended); err != nil {
		return nil, fmt.Errorf("parse session ended: %w", err)
	}
	return &s, nil
}
