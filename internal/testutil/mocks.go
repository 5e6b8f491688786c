// Package testutil provides in-memory fakes for use case tests.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/tracklet/trackd/internal/domain"
)

// Store is an in-memory domain.Store. Error fields, when set, are returned
// by the corresponding operation to exercise failure paths.
type Store struct {
	ProjectRepo *ProjectRepo
	TicketRepo  *TicketRepo
	EpicRepo    *EpicRepo
	StateRepo   *StateRepo
	FindingRepo *FindingRepo
	SessionRepo *SessionRepo

	TxErr error
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		ProjectRepo: &ProjectRepo{byID: map[string]*domain.Project{}},
		TicketRepo:  &TicketRepo{byID: map[string]*domain.Ticket{}},
		EpicRepo:    &EpicRepo{byID: map[string]*domain.Epic{}},
		StateRepo:   &StateRepo{epics: map[string]*domain.EpicWorkflowState{}, tickets: map[string]*domain.TicketWorkflowState{}},
		FindingRepo: &FindingRepo{byID: map[string]*domain.ReviewFinding{}},
		SessionRepo: &SessionRepo{byID: map[string]*domain.ConversationSession{}},
	}
}

func (s *Store) Projects() domain.ProjectRepository { return s.ProjectRepo }

func (s *Store) Tickets() domain.TicketRepository { return s.TicketRepo }

func (s *Store) Epics() domain.EpicRepository { return s.EpicRepo }

func (s *Store) WorkflowStates() domain.WorkflowStateRepository { return s.StateRepo }

func (s *Store) Findings() domain.FindingRepository { return s.FindingRepo }

func (s *Store) Sessions() domain.SessionRepository { return s.SessionRepo }

// InTransaction runs fn against the same in-memory state. True rollback is
// covered by the sqlite store tests; fakes only propagate errors.
func (s *Store) InTransaction(_ context.Context, fn func(domain.Repositories) error) error {
	if s.TxErr != nil {
		return s.TxErr
	}
	return fn(s)
}

// ProjectRepo is an in-memory domain.ProjectRepository.
type ProjectRepo struct {
	byID    map[string]*domain.Project
	GetErr  error
	SaveErr error
}

func (r *ProjectRepo) Get(id string) (*domain.Project, error) {
	if r.GetErr != nil {
		return nil, r.GetErr
	}
	p, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *ProjectRepo) List() ([]*domain.Project, error) {
	out := make([]*domain.Project, 0, len(r.byID))
	for _, p := range r.byID {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *ProjectRepo) Save(p *domain.Project) error {
	if r.SaveErr != nil {
		return r.SaveErr
	}
	cp := *p
	r.byID[p.ID] = &cp
	return nil
}

// TicketRepo is an in-memory domain.TicketRepository.
type TicketRepo struct {
	byID    map[string]*domain.Ticket
	GetErr  error
	SaveErr error
	Saves   int // Save calls, including failed ones
}

func (r *TicketRepo) Get(id string) (*domain.Ticket, error) {
	if r.GetErr != nil {
		return nil, r.GetErr
	}
	t, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *TicketRepo) ListByProject(projectID string) ([]*domain.Ticket, error) {
	var out []*domain.Ticket
	for _, t := range r.byID {
		if t.ProjectID == projectID {
			cp := *t
			out = append(out, &cp)
		}
	}
	sortTickets(out)
	return out, nil
}

func (r *TicketRepo) ListByEpic(epicID string) ([]*domain.Ticket, error) {
	var out []*domain.Ticket
	for _, t := range r.byID {
		if t.EpicID != nil && *t.EpicID == epicID {
			cp := *t
			out = append(out, &cp)
		}
	}
	sortTickets(out)
	return out, nil
}

func (r *TicketRepo) Save(t *domain.Ticket) error {
	r.Saves++
	if r.SaveErr != nil {
		return r.SaveErr
	}
	cp := *t
	r.byID[t.ID] = &cp
	return nil
}

func sortTickets(ts []*domain.Ticket) {
	sort.Slice(ts, func(i, j int) bool {
		if ts[i].Position != ts[j].Position {
			return ts[i].Position < ts[j].Position
		}
		return ts[i].ID < ts[j].ID
	})
}

// EpicRepo is an in-memory domain.EpicRepository.
type EpicRepo struct {
	byID    map[string]*domain.Epic
	SaveErr error
}

func (r *EpicRepo) Get(id string) (*domain.Epic, error) {
	e, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (r *EpicRepo) ListByProject(projectID string) ([]*domain.Epic, error) {
	var out []*domain.Epic
	for _, e := range r.byID {
		if e.ProjectID == projectID {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *EpicRepo) Save(e *domain.Epic) error {
	if r.SaveErr != nil {
		return r.SaveErr
	}
	cp := *e
	r.byID[e.ID] = &cp
	return nil
}

// StateRepo is an in-memory domain.WorkflowStateRepository.
type StateRepo struct {
	epics   map[string]*domain.EpicWorkflowState
	tickets map[string]*domain.TicketWorkflowState

	EpicStateErr       error
	SaveEpicStateErr   error
	SaveTicketStateErr error
}

func (r *StateRepo) EpicState(epicID string) (*domain.EpicWorkflowState, error) {
	if r.EpicStateErr != nil {
		return nil, r.EpicStateErr
	}
	s, ok := r.epics[epicID]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *StateRepo) SaveEpicState(s *domain.EpicWorkflowState) error {
	if r.SaveEpicStateErr != nil {
		return r.SaveEpicStateErr
	}
	cp := *s
	r.epics[s.EpicID] = &cp
	return nil
}

func (r *StateRepo) TicketState(ticketID string) (*domain.TicketWorkflowState, error) {
	s, ok := r.tickets[ticketID]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *StateRepo) SaveTicketState(s *domain.TicketWorkflowState) error {
	if r.SaveTicketStateErr != nil {
		return r.SaveTicketStateErr
	}
	cp := *s
	r.tickets[s.TicketID] = &cp
	return nil
}

// FindingRepo is an in-memory domain.FindingRepository.
type FindingRepo struct {
	byID    map[string]*domain.ReviewFinding
	SaveErr error
}

func (r *FindingRepo) Get(id string) (*domain.ReviewFinding, error) {
	f, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *f
	return &cp, nil
}

func (r *FindingRepo) ListByTicket(ticketID string) ([]*domain.ReviewFinding, error) {
	var out []*domain.ReviewFinding
	for _, f := range r.byID {
		if f.TicketID == ticketID {
			cp := *f
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Created.Before(out[j].Created) })
	return out, nil
}

func (r *FindingRepo) Save(f *domain.ReviewFinding) error {
	if r.SaveErr != nil {
		return r.SaveErr
	}
	cp := *f
	r.byID[f.ID] = &cp
	return nil
}

// SessionRepo is an in-memory domain.SessionRepository.
type SessionRepo struct {
	byID    map[string]*domain.ConversationSession
	SaveErr error
}

func (r *SessionRepo) Get(id string) (*domain.ConversationSession, error) {
	s, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *SessionRepo) ListByTicket(ticketID string) ([]*domain.ConversationSession, error) {
	var out []*domain.ConversationSession
	for _, s := range r.byID {
		if s.TicketID == ticketID {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Started.After(out[j].Started) })
	return out, nil
}

func (r *SessionRepo) Save(s *domain.ConversationSession) error {
	if r.SaveErr != nil {
		return r.SaveErr
	}
	cp := *s
	r.byID[s.ID] = &cp
	return nil
}

func (r *SessionRepo) EndActive(ticketID string, endedAt time.Time) (int, error) {
	n := 0
	for _, s := range r.byID {
		if s.TicketID == ticketID && s.Ended == nil {
			t := endedAt
			s.Ended = &t
			n++
		}
	}
	return n, nil
}

// Git is a scriptable domain.Git. Branches maps branch name to existence;
// Calls records every mutating operation in order.
type Git struct {
	Branches map[string]bool
	Current  string
	Calls    []string

	VerifyErr   error
	CurrentErr  error
	ExistsErr   error
	CheckoutErr error
	CreateErr   error
	DeleteErr   error
	PushErr     error
	Diff        *domain.DiffSummary
	DiffErr     error
}

// NewGit creates a fake git with a main trunk checked out.
func NewGit() *Git {
	return &Git{Branches: map[string]bool{"main": true}, Current: "main"}
}

func (g *Git) VerifyWorkTree(string) error { return g.VerifyErr }

func (g *Git) CurrentBranch(string) (string, error) {
	if g.CurrentErr != nil {
		return "", g.CurrentErr
	}
	return g.Current, nil
}

func (g *Git) BranchExists(_, branch string) (bool, error) {
	if g.ExistsErr != nil {
		return false, g.ExistsErr
	}
	return g.Branches[branch], nil
}

func (g *Git) Checkout(_, branch string) error {
	g.Calls = append(g.Calls, "checkout "+branch)
	if g.CheckoutErr != nil {
		return g.CheckoutErr
	}
	if !g.Branches[branch] {
		return fmt.Errorf("checkout %s: branch does not exist", branch)
	}
	g.Current = branch
	return nil
}

func (g *Git) CreateBranch(_, branch string) error {
	g.Calls = append(g.Calls, "create "+branch)
	if g.CreateErr != nil {
		return g.CreateErr
	}
	g.Branches[branch] = true
	g.Current = branch
	return nil
}

func (g *Git) DeleteBranch(_, branch string, _ bool) error {
	g.Calls = append(g.Calls, "delete "+branch)
	if g.DeleteErr != nil {
		return g.DeleteErr
	}
	delete(g.Branches, branch)
	return nil
}

func (g *Git) Push(_ context.Context, _, branch string) error {
	g.Calls = append(g.Calls, "push "+branch)
	return g.PushErr
}

func (g *Git) DiffSummary(_, _, _ string) (*domain.DiffSummary, error) {
	if g.DiffErr != nil {
		return nil, g.DiffErr
	}
	if g.Diff != nil {
		return g.Diff, nil
	}
	return &domain.DiffSummary{}, nil
}

// Worktrees is a scriptable domain.WorktreeManager.
type Worktrees struct {
	Paths     map[string]string // branch -> path
	EnsureErr error
}

func NewWorktrees() *Worktrees {
	return &Worktrees{Paths: map[string]string{}}
}

func (w *Worktrees) Ensure(branch, _ string) (string, error) {
	if w.EnsureErr != nil {
		return "", w.EnsureErr
	}
	if p, ok := w.Paths[branch]; ok {
		return p, nil
	}
	p := "/worktrees/" + branch
	w.Paths[branch] = p
	return p, nil
}

func (w *Worktrees) Exists(branch string) (bool, error) {
	_, ok := w.Paths[branch]
	return ok, nil
}

func (w *Worktrees) Remove(branch string) error {
	delete(w.Paths, branch)
	return nil
}

// PullRequests is a scriptable domain.PullRequests.
type PullRequests struct {
	Result *domain.PullRequest
	Err    error
	Opts   []domain.CreatePROptions
}

func (p *PullRequests) Create(_ context.Context, opts domain.CreatePROptions) (*domain.PullRequest, error) {
	p.Opts = append(p.Opts, opts)
	if p.Err != nil {
		return nil, p.Err
	}
	if p.Result != nil {
		return p.Result, nil
	}
	return &domain.PullRequest{URL: "https://example.test/pr/1", Status: "draft", Number: 1}, nil
}

// Clock is a fixed domain.Clock.
type Clock struct {
	Time time.Time
}

func NewClock() *Clock {
	return &Clock{Time: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)}
}

func (c *Clock) Now() time.Time { return c.Time }

// Logger is a no-op domain.Logger that records messages for assertions.
type Logger struct {
	Entries []string
}

func (l *Logger) Debug(_, _, msg string) { l.Entries = append(l.Entries, "debug: "+msg) }
func (l *Logger) Info(_, _, msg string)  { l.Entries = append(l.Entries, "info: "+msg) }
func (l *Logger) Warn(_, _, msg string)  { l.Entries = append(l.Entries, "warn: "+msg) }
func (l *Logger) Error(_, _, msg string) { l.Entries = append(l.Entries, "error: "+msg) }

// IDs generates sequential identifiers shaped like uuids so ShortID has
// enough characters to slice.
type IDs struct {
	n int
}

func (g *IDs) NewID() string {
	g.n++
	return fmt.Sprintf("%08d-0000-4000-8000-%012d", g.n, g.n)
}
