// Package sqlite implements the record store on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tracklet/trackd/internal/domain"
	_ "modernc.org/sqlite"
)

//go:embed migrations/001_initial_schema.sql
var migrationV1 string

// migrations are applied in order; each entry runs at most once.
var migrations = []string{migrationV1}

// queryer is the subset of database/sql shared by *sql.DB and *sql.Tx, so
// every repository works both standalone and inside a transaction.
type queryer interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// Store is the SQLite-backed record store.
type Store struct {
	db   *sql.DB
	path string
}

// Ensure Store implements the record-store contracts.
var (
	_ domain.Store            = (*Store)(nil)
	_ domain.StoreInitializer = (*Store)(nil)
)

// New opens (creating if necessary) the database at path. WAL mode keeps
// concurrent readers working while the orchestrator writes; transactions
// take the write lock immediately so writers fail fast instead of
// deadlocking.
func New(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	dsn := path + "?_txlock=immediate&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return s, nil
}

// Initialize creates the store schema if it doesn't exist. New already
// migrates; Initialize exists to satisfy the initializer port for callers
// that construct the store lazily.
func (s *Store) Initialize() error {
	return s.migrate()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY, applied TEXT NOT NULL)`); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	var current int
	if err := s.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for i := current; i < len(migrations); i++ {
		version := i + 1
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", version, err)
		}
		if _, err := tx.Exec(migrations[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration %d: %w", version, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations (version, applied) VALUES (?, ?)`, version, time.Now().UTC().Format(time.RFC3339)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %d: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", version, err)
		}
	}
	return nil
}

// Projects returns the project repository.
func (s *Store) Projects() domain.ProjectRepository { return &projectRepo{q: s.db} }

// Tickets returns the ticket repository.
func (s *Store) Tickets() domain.TicketRepository { return &ticketRepo{q: s.db} }

// Epics returns the epic repository.
func (s *Store) Epics() domain.EpicRepository { return &epicRepo{q: s.db} }

// WorkflowStates returns the workflow-state repository.
func (s *Store) WorkflowStates() domain.WorkflowStateRepository { return &workflowRepo{q: s.db} }

// Findings returns the review-finding repository.
func (s *Store) Findings() domain.FindingRepository { return &findingRepo{q: s.db} }

// Sessions returns the conversation-session repository.
func (s *Store) Sessions() domain.SessionRepository { return &sessionRepo{q: s.db} }

// txRepos binds every repository to one transaction.
type txRepos struct {
	tx *sql.Tx
}

func (r *txRepos) Projects() domain.ProjectRepository { return &projectRepo{q: r.tx} }

func (r *txRepos) Tickets() domain.TicketRepository { return &ticketRepo{q: r.tx} }

func (r *txRepos) Epics() domain.EpicRepository { return &epicRepo{q: r.tx} }

func (r *txRepos) WorkflowStates() domain.WorkflowStateRepository { return &workflowRepo{q: r.tx} }

func (r *txRepos) Findings() domain.FindingRepository { return &findingRepo{q: r.tx} }

func (r *txRepos) Sessions() domain.SessionRepository { return &sessionRepo{q: r.tx} }

// InTransaction runs fn with repositories bound to a single transaction.
// A panic in fn rolls back and is re-raised.
func (s *Store) InTransaction(ctx context.Context, fn func(domain.Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(&txRepos{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	committed = true
	return nil
}

// Timestamps are stored as RFC3339Nano in UTC.

func timeToDB(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func timeFromDB(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func nullTimeToDB(t *time.Time) any {
	if t == nil {
		return nil
	}
	return timeToDB(*t)
}

func nullTimeFromDB(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := timeFromDB(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullStrToDB(s *string) any {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}

func nullStrFromDB(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
