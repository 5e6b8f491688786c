// Package app provides the dependency injection container for the application.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/tracklet/trackd/internal/domain"
	"github.com/tracklet/trackd/internal/infra/config"
	"github.com/tracklet/trackd/internal/infra/git"
	"github.com/tracklet/trackd/internal/infra/github"
	"github.com/tracklet/trackd/internal/infra/lock"
	"github.com/tracklet/trackd/internal/infra/logging"
	"github.com/tracklet/trackd/internal/infra/sqlite"
	"github.com/tracklet/trackd/internal/infra/worktree"
	"github.com/tracklet/trackd/internal/usecase"
)

// Paths holds the resolved filesystem layout for one repository.
type Paths struct {
	RepoRoot    string // Root directory of the repository
	DataDir     string // Path to the .trackd directory
	StorePath   string // Path to the SQLite database
	LockPath    string // Path to the advisory process lock
	WorktreeDir string // Path to epic worktrees
}

// uuidGenerator implements domain.IDGenerator with random uuids.
type uuidGenerator struct{}

func (uuidGenerator) NewID() string { return uuid.NewString() }

// Container provides dependency injection for the application.
// It holds all port implementations and provides factory methods for use cases.
type Container struct {
	Store       *sqlite.Store
	Git         domain.Git
	Worktrees   domain.WorktreeManager
	PRs         domain.PullRequests // nil when GitHub is not configured
	Clock       domain.Clock
	IDs         domain.IDGenerator
	Logger      *logging.Logger
	Config      *config.Config
	Paths       Paths
	LockWarning string // Non-empty when a live foreign process holds the lock

	lock *lock.Lock
}

// New creates a Container rooted at dir, creating the data directory and
// acquiring the advisory process lock. A live foreign lock does not fail
// construction; it surfaces as LockWarning.
func New(dir, kind string) (*Container, error) {
	root, err := resolveRoot(dir)
	if err != nil {
		return nil, err
	}

	paths := newPaths(root)
	if err := os.MkdirAll(paths.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	cfg, err := config.NewLoader(paths.DataDir).Load()
	if err != nil {
		return nil, err
	}

	store, err := sqlite.New(paths.StorePath)
	if err != nil {
		return nil, err
	}

	clock := domain.RealClock{}
	procLock := lock.New(paths.LockPath)
	warning, err := procLock.Acquire(kind, clock.Now())
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("acquire process lock: %w", err)
	}

	c := &Container{
		Store:       store,
		Git:         git.NewClient(),
		Worktrees:   worktree.NewClient(paths.RepoRoot, paths.WorktreeDir),
		Clock:       clock,
		IDs:         uuidGenerator{},
		Logger:      logging.New(paths.DataDir, logging.ParseLevel(cfg.Log.Level)),
		Config:      cfg,
		Paths:       paths,
		LockWarning: warning,
		lock:        procLock,
	}
	if cfg.GitHub.Configured() {
		c.PRs = github.NewClient(cfg.GitHub.Token(), cfg.GitHub.Owner, cfg.GitHub.Repo)
	}
	return c, nil
}

// Close releases the process lock and closes the store and log files.
func (c *Container) Close() error {
	var first error
	if c.lock != nil {
		if err := c.lock.Release(); err != nil {
			first = err
		}
	}
	if c.Logger != nil {
		if err := c.Logger.Close(); err != nil && first == nil {
			first = err
		}
	}
	if c.Store != nil {
		if err := c.Store.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func newPaths(root string) Paths {
	dataDir := domain.DataDir(root)
	return Paths{
		RepoRoot:    root,
		DataDir:     dataDir,
		StorePath:   domain.StorePath(dataDir),
		LockPath:    domain.LockPath(dataDir),
		WorktreeDir: filepath.Join(dataDir, "worktrees"),
	}
}

// resolveRoot walks upward from dir until a directory containing .trackd is
// found; if none exists yet (before init), dir itself is the root.
func resolveRoot(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}
	for cur := abs; ; {
		if info, err := os.Stat(domain.DataDir(cur)); err == nil && info.IsDir() {
			return cur, nil
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return abs, nil
		}
		cur = parent
	}
}

// prTimeout bounds the PR push/create step per configuration.
func (c *Container) prTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.Config.PR.Timeout())
}

// UseCase factory methods

// InitProjectUseCase returns a new InitProject use case.
func (c *Container) InitProjectUseCase() *usecase.InitProject {
	return usecase.NewInitProject(c.Store, c.Store, c.Git, c.IDs, c.Clock)
}

// NewTicketUseCase returns a new NewTicketUseCase.
func (c *Container) NewTicketUseCase() *usecase.NewTicketUseCase {
	return usecase.NewNewTicket(c.Store, c.IDs, c.Clock, c.Logger)
}

// NewEpicUseCase returns a new NewEpicUseCase.
func (c *Container) NewEpicUseCase() *usecase.NewEpicUseCase {
	return usecase.NewNewEpic(c.Store, c.IDs, c.Clock, c.Logger)
}

// ListTicketsUseCase returns a new ListTickets use case.
func (c *Container) ListTicketsUseCase() *usecase.ListTickets {
	return usecase.NewListTickets(c.Store)
}

// ShowTicketUseCase returns a new ShowTicket use case.
func (c *Container) ShowTicketUseCase() *usecase.ShowTicket {
	return usecase.NewShowTicket(c.Store)
}

// ImportTicketsUseCase returns a new ImportTickets use case.
func (c *Container) ImportTicketsUseCase() *usecase.ImportTickets {
	return usecase.NewImportTickets(c.Store, c.IDs, c.Clock, c.Logger)
}

// StartWorkUseCase returns a new StartWork use case.
func (c *Container) StartWorkUseCase() *usecase.StartWork {
	return usecase.NewStartWork(c.Store, c.Git, c.Clock, c.Logger)
}

// CompleteWorkUseCase returns a new CompleteWork use case.
func (c *Container) CompleteWorkUseCase() *usecase.CompleteWork {
	return usecase.NewCompleteWork(c.Store, c.Git, c.Clock, c.Logger)
}

// StartEpicWorkUseCase returns a new StartEpicWork use case.
func (c *Container) StartEpicWorkUseCase() *usecase.StartEpicWork {
	return usecase.NewStartEpicWork(c.Store, c.Git, c.Worktrees, c.PRs, c.Clock, c.Logger, c.prTimeout)
}

// SubmitFindingUseCase returns a new SubmitFinding use case.
func (c *Container) SubmitFindingUseCase() *usecase.SubmitFinding {
	return usecase.NewSubmitFinding(c.Store, c.IDs, c.Clock, c.Logger)
}

// MarkFindingFixedUseCase returns a new MarkFindingFixed use case.
func (c *Container) MarkFindingFixedUseCase() *usecase.MarkFindingFixed {
	return usecase.NewMarkFindingFixed(c.Store, c.Clock, c.Logger)
}

// CheckReviewUseCase returns a new CheckReview use case.
func (c *Container) CheckReviewUseCase() *usecase.CheckReview {
	return usecase.NewCheckReview(c.Store)
}

// GenerateDemoUseCase returns a new GenerateDemo use case.
func (c *Container) GenerateDemoUseCase() *usecase.GenerateDemo {
	return usecase.NewGenerateDemo(c.Store, c.Clock, c.Logger)
}

// StartSessionUseCase returns a new StartSession use case.
func (c *Container) StartSessionUseCase() *usecase.StartSession {
	return usecase.NewStartSession(c.Store, c.IDs, c.Clock, c.Logger)
}

// EndSessionUseCase returns a new EndSession use case.
func (c *Container) EndSessionUseCase() *usecase.EndSession {
	return usecase.NewEndSession(c.Store, c.Clock, c.Logger)
}

// ListSessionsUseCase returns a new ListSessions use case.
func (c *Container) ListSessionsUseCase() *usecase.ListSessions {
	return usecase.NewListSessions(c.Store)
}
