package domain

import "time"

// IsolationMode controls which working tree an epic's agents use.
type IsolationMode string

const (
	// IsolationSharedBranch works directly in the project working tree.
	// Two agents must not work such epics concurrently; this is a documented
	// constraint, not enforced by a lock.
	IsolationSharedBranch IsolationMode = "shared-branch"

	// IsolationWorktree gives the epic a dedicated git worktree so its
	// agents never race another epic's agents on the same HEAD.
	IsolationWorktree IsolationMode = "worktree"
)

// IsValid returns true if the isolation mode is a known value.
func (m IsolationMode) IsValid() bool {
	return m == IsolationSharedBranch || m == IsolationWorktree
}

// Epic groups tickets that share one feature branch. An epic has no
// lifecycle status of its own, only derived progress.
type Epic struct {
	Created     time.Time     `json:"created"`
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	ProjectID   string        `json:"projectID"`
	Isolation   IsolationMode `json:"isolation"`
}

// EpicWorkflowState is the durable memory of which branch an epic committed
// to. Created lazily on first start, never deleted, only updated.
type EpicWorkflowState struct {
	BranchCreatedAt time.Time `json:"branchCreatedAt"`
	EpicID          string    `json:"epicID"`
	BranchName      string    `json:"branchName"`
	WorktreePath    string    `json:"worktreePath,omitempty"`
	CurrentTicketID string    `json:"currentTicketID,omitempty"`
	PRURL           string    `json:"prURL,omitempty"`
	PRStatus        string    `json:"prStatus,omitempty"`
	PRNumber        int       `json:"prNumber,omitempty"`
	TicketsTotal    int       `json:"ticketsTotal"`
	TicketsDone     int       `json:"ticketsDone"`
}

// TicketWorkflowState tracks phase and review progress for one ticket.
// ReviewIteration increments each time the ticket re-enters AI review;
// restarting a ticket resets the phase and counters, never the iteration.
type TicketWorkflowState struct {
	TicketID        string `json:"ticketID"`
	Phase           Phase  `json:"phase"`
	ReviewIteration int    `json:"reviewIteration"`
	FindingsRaised  int    `json:"findingsRaised"`
	FindingsFixed   int    `json:"findingsFixed"`
}
