package domain

import "time"

// ConversationSession is a compliance log session bound to a ticket.
// At most one active (unended) session per ticket is meaningful; starting
// new work always ends any stragglers first.
type ConversationSession struct {
	Started     time.Time  `json:"started"`
	Ended       *time.Time `json:"ended,omitempty"`
	ID          string     `json:"id"`
	TicketID    string     `json:"ticketID"`
	ProjectID   string     `json:"projectID"`
	Environment string     `json:"environment,omitempty"`
}

// IsActive returns true if the session has not ended.
func (s *ConversationSession) IsActive() bool {
	return s.Ended == nil
}
