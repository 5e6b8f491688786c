package domain

// Status represents the lifecycle state of a ticket.
type Status string

const (
	StatusBacklog     Status = "backlog"      // Created, not yet scheduled
	StatusReady       Status = "ready"        // Scheduled, awaiting start
	StatusInProgress  Status = "in_progress"  // Agent working
	StatusAIReview    Status = "ai_review"    // Implementation complete, AI review running
	StatusHumanReview Status = "human_review" // AI review passed, awaiting human approval
	StatusDone        Status = "done"         // Approved by a human (never set by the engine)
)

// AllStatuses returns all valid status values.
func AllStatuses() []Status {
	return []Status{
		StatusBacklog,
		StatusReady,
		StatusInProgress,
		StatusAIReview,
		StatusHumanReview,
		StatusDone,
	}
}

// transitions defines the allowed status transitions.
// Flow: backlog/ready → in_progress → ai_review → human_review → done
//
//	                       ↑              ↓
//	                       └─ (fix loop) ─┘
//
// done is reachable only through an external human approval action; the
// engine never assigns it.
var transitions = map[Status][]Status{
	StatusBacklog:     {StatusReady, StatusInProgress},
	StatusReady:       {StatusInProgress, StatusBacklog},
	StatusInProgress:  {StatusAIReview},
	StatusAIReview:    {StatusInProgress, StatusHumanReview},
	StatusHumanReview: {StatusInProgress, StatusDone},
	StatusDone:        {},
}

// CanTransitionTo returns true if the status can transition to the target status.
func (s Status) CanTransitionTo(target Status) bool {
	allowed, ok := transitions[s]
	if !ok {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// CanStartWork returns true if a ticket in this status may enter in_progress.
// ai_review is included for the review fix loop.
func (s Status) CanStartWork() bool {
	return s == StatusBacklog || s == StatusReady || s == StatusAIReview
}

// IsTerminal returns true if the status is a terminal state.
func (s Status) IsTerminal() bool {
	return s == StatusDone
}

// IsValid returns true if the status is a known value.
func (s Status) IsValid() bool {
	switch s {
	case StatusBacklog, StatusReady, StatusInProgress, StatusAIReview, StatusHumanReview, StatusDone:
		return true
	default:
		return false
	}
}

// Display returns a human-readable representation of the status.
func (s Status) Display() string {
	switch s {
	case StatusBacklog:
		return "Backlog"
	case StatusReady:
		return "Ready"
	case StatusInProgress:
		return "In Progress"
	case StatusAIReview:
		return "AI Review"
	case StatusHumanReview:
		return "Human Review"
	case StatusDone:
		return "Done"
	default:
		return string(s)
	}
}

// Phase represents the workflow phase tracked alongside the ticket status.
// Phase values are persisted and must remain stable across versions.
type Phase string

const (
	PhaseImplementation Phase = "implementation"
	PhaseAIReview       Phase = "ai_review"
	PhaseHumanReview    Phase = "human_review"
)

// IsValid returns true if the phase is a known value.
func (p Phase) IsValid() bool {
	switch p {
	case PhaseImplementation, PhaseAIReview, PhaseHumanReview:
		return true
	default:
		return false
	}
}
