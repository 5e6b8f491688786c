package domain

import (
	"context"
	"time"
)

// StoreInitializer initializes the record store.
type StoreInitializer interface {
	// Initialize creates the store schema if it doesn't exist.
	Initialize() error
}

// ProjectRepository manages project persistence.
type ProjectRepository interface {
	// Get retrieves a project by ID. Returns nil if not found.
	Get(id string) (*Project, error)

	// List retrieves all projects.
	List() ([]*Project, error)

	// Save creates or updates a project.
	Save(p *Project) error
}

// TicketRepository manages ticket persistence.
type TicketRepository interface {
	// Get retrieves a ticket by ID. Returns nil if not found.
	Get(id string) (*Ticket, error)

	// ListByProject retrieves all tickets in a project.
	ListByProject(projectID string) ([]*Ticket, error)

	// ListByEpic retrieves all tickets belonging to an epic.
	ListByEpic(epicID string) ([]*Ticket, error)

	// Save creates or updates a ticket.
	Save(t *Ticket) error
}

// EpicRepository manages epic persistence.
type EpicRepository interface {
	// Get retrieves an epic by ID. Returns nil if not found.
	Get(id string) (*Epic, error)

	// ListByProject retrieves all epics in a project.
	ListByProject(projectID string) ([]*Epic, error)

	// Save creates or updates an epic.
	Save(e *Epic) error
}

// WorkflowStateRepository manages workflow-state rows.
type WorkflowStateRepository interface {
	// EpicState retrieves the workflow state for an epic. Returns nil if no
	// work has started yet.
	EpicState(epicID string) (*EpicWorkflowState, error)

	// SaveEpicState creates or updates an epic's workflow state.
	SaveEpicState(s *EpicWorkflowState) error

	// TicketState retrieves the workflow state for a ticket. Returns nil if
	// no work has started yet.
	TicketState(ticketID string) (*TicketWorkflowState, error)

	// SaveTicketState creates or updates a ticket's workflow state.
	SaveTicketState(s *TicketWorkflowState) error
}

// FindingRepository manages review findings.
type FindingRepository interface {
	// Get retrieves a finding by ID. Returns nil if not found.
	Get(id string) (*ReviewFinding, error)

	// ListByTicket retrieves all findings for a ticket, oldest first.
	ListByTicket(ticketID string) ([]*ReviewFinding, error)

	// Save creates or updates a finding.
	Save(f *ReviewFinding) error
}

// SessionRepository manages conversation sessions.
type SessionRepository interface {
	// Get retrieves a session by ID. Returns nil if not found.
	Get(id string) (*ConversationSession, error)

	// ListByTicket retrieves all sessions for a ticket, newest first.
	ListByTicket(ticketID string) ([]*ConversationSession, error)

	// Save creates or updates a session.
	Save(s *ConversationSession) error

	// EndActive ends all unended sessions for a ticket and returns how many
	// were closed.
	EndActive(ticketID string, endedAt time.Time) (int, error)
}

// Repositories bundles the record-store repositories so they can be used
// either directly or inside a transaction.
type Repositories interface {
	Projects() ProjectRepository
	Tickets() TicketRepository
	Epics() EpicRepository
	WorkflowStates() WorkflowStateRepository
	Findings() FindingRepository
	Sessions() SessionRepository
}

// Store is the record store: repositories plus a transaction primitive.
type Store interface {
	Repositories

	// InTransaction runs fn with repositories bound to a single
	// transaction. fn returning an error rolls everything back.
	InTransaction(ctx context.Context, fn func(Repositories) error) error
}

// DiffSummary describes work on a branch relative to a base, for reporting.
type DiffSummary struct {
	Commits []string // Commit subjects, newest first
	Files   []string // Changed file paths
}

// Git executes version-control operations against a working directory.
// Implementations must use argument-array execution only, never a shell,
// because ticket and epic titles flow into branch names.
type Git interface {
	// VerifyWorkTree checks that dir is inside a git working tree.
	VerifyWorkTree(dir string) error

	// CurrentBranch returns the branch HEAD points at in dir.
	CurrentBranch(dir string) (string, error)

	// BranchExists checks if a local branch exists.
	BranchExists(dir, branch string) (bool, error)

	// Checkout switches dir to an existing branch.
	Checkout(dir, branch string) error

	// CreateBranch creates branch from the current HEAD and checks it out.
	CreateBranch(dir, branch string) error

	// DeleteBranch deletes a local branch.
	DeleteBranch(dir, branch string, force bool) error

	// Push pushes a branch to the origin remote, setting upstream.
	Push(ctx context.Context, dir, branch string) error

	// DiffSummary reports commits and changed files on branch relative to
	// base.
	DiffSummary(dir, base, branch string) (*DiffSummary, error)
}

// WorktreeManager manages dedicated checkouts for worktree-isolated epics.
type WorktreeManager interface {
	// Ensure creates (or reuses) a worktree for the branch and returns its
	// path.
	Ensure(branch, baseBranch string) (string, error)

	// Exists checks if a worktree exists for the branch.
	Exists(branch string) (bool, error)

	// Remove deletes the worktree for a branch.
	Remove(branch string) error
}

// CreatePROptions configures pull request creation.
type CreatePROptions struct {
	Title string
	Body  string
	Head  string
	Base  string
	Draft bool
}

// PullRequest is the engine-visible result of PR creation.
type PullRequest struct {
	URL    string
	Status string
	Number int
}

// PullRequests creates pull requests on the hosting service. The only
// network-bound collaborator in the engine; calls must honor ctx deadlines.
type PullRequests interface {
	Create(ctx context.Context, opts CreatePROptions) (*PullRequest, error)
}

// Logger writes engine events to the audit log.
type Logger interface {
	Debug(ticketID, component, msg string)
	Info(ticketID, component, msg string)
	Warn(ticketID, component, msg string)
	Error(ticketID, component, msg string)
}

// Clock provides time operations for testability.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the system clock.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// IDGenerator produces entity identifiers.
type IDGenerator interface {
	// NewID returns a new unique identifier.
	NewID() string
}
