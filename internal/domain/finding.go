package domain

import "time"

// Severity classifies a review finding. Open critical and major findings
// block the ticket from leaving AI review; minor and suggestion never do.
type Severity string

const (
	SeverityCritical   Severity = "critical"
	SeverityMajor      Severity = "major"
	SeverityMinor      Severity = "minor"
	SeveritySuggestion Severity = "suggestion"
)

// IsValid returns true if the severity is a known value.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityCritical, SeverityMajor, SeverityMinor, SeveritySuggestion:
		return true
	default:
		return false
	}
}

// Blocking returns true if an open finding of this severity prevents the
// ticket from advancing to human review.
func (s Severity) Blocking() bool {
	return s == SeverityCritical || s == SeverityMajor
}

// FixStatus is the resolution state of a finding.
type FixStatus string

const (
	FixStatusOpen  FixStatus = "open"
	FixStatusFixed FixStatus = "fixed"
)

// ReviewFinding is a recorded issue against a ticket's implementation.
// Findings are append-only: fixing one flips its status, never deletes it.
type ReviewFinding struct {
	Created        time.Time  `json:"created"`
	FixedAt        *time.Time `json:"fixedAt,omitempty"`
	ID             string     `json:"id"`
	TicketID       string     `json:"ticketID"`
	Reviewer       string     `json:"reviewer"` // Reviewer or agent identifier
	Category       string     `json:"category,omitempty"`
	Description    string     `json:"description"`
	FixDescription string     `json:"fixDescription,omitempty"`
	Severity       Severity   `json:"severity"`
	FixStatus      FixStatus  `json:"fixStatus"`
}

// IsOpen returns true if the finding has not been fixed.
func (f *ReviewFinding) IsOpen() bool {
	return f.FixStatus == FixStatusOpen
}
