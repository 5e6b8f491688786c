// Package domain contains core business entities and interfaces.
package domain

import (
	"encoding/json"
	"time"
)

// Project is the repository a ticket belongs to. Path must point at a git
// working tree before any work can start.
type Project struct {
	Created time.Time `json:"created"`
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Path    string    `json:"path"`
}

// Ticket represents a unit of work moving through the lifecycle.
type Ticket struct {
	Created     time.Time  `json:"created"`
	Updated     time.Time  `json:"updated"`
	CompletedAt *time.Time `json:"completedAt,omitempty"` // Set externally when a human approves
	EpicID      *string    `json:"epicID,omitempty"`      // nil = standalone ticket
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	ProjectID   string     `json:"projectID"`
	BranchName  string     `json:"branchName,omitempty"` // Set once work starts
	ID          string     `json:"id"`
	Status      Status     `json:"status"`
	Extras      Extras     `json:"extras"`
	Priority    int        `json:"priority"`
	Position    int        `json:"position"` // Ordering within a status column
}

// HasEpic returns true if the ticket belongs to an epic.
func (t *Ticket) HasEpic() bool {
	return t.EpicID != nil && *t.EpicID != ""
}

// Snapshot returns a copy of the ticket for returning to callers.
func (t *Ticket) Snapshot() Ticket {
	return *t
}

// extrasVersion is the current schema version of the Extras payload.
const extrasVersion = 1

// Extras holds the free-form ticket payload (tags, subtasks, attachments).
// It is serialized as a versioned JSON document so a parse failure degrades
// to an empty payload instead of corrupting the ticket read path.
type Extras struct {
	Tags        []string     `json:"tags,omitempty"`
	Subtasks    []Subtask    `json:"subtasks,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Subtask is a checklist item within a ticket.
type Subtask struct {
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

// Attachment references a file attached to a ticket.
type Attachment struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// versionedExtras is the wire form of Extras.
type versionedExtras struct {
	V           int          `json:"v"`
	Tags        []string     `json:"tags,omitempty"`
	Subtasks    []Subtask    `json:"subtasks,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// MarshalExtras serializes the payload with its schema version.
func MarshalExtras(e Extras) (string, error) {
	raw, err := json.Marshal(versionedExtras{
		V:           extrasVersion,
		Tags:        e.Tags,
		Subtasks:    e.Subtasks,
		Attachments: e.Attachments,
	})
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// UnmarshalExtras parses a stored payload. Unknown versions and malformed
// documents return an empty payload and ok=false; the ticket itself stays
// readable.
func UnmarshalExtras(raw string) (Extras, bool) {
	if raw == "" {
		return Extras{}, true
	}
	var v versionedExtras
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return Extras{}, false
	}
	if v.V != extrasVersion {
		return Extras{}, false
	}
	return Extras{
		Tags:        v.Tags,
		Subtasks:    v.Subtasks,
		Attachments: v.Attachments,
	}, true
}
