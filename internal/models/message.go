package models

import (
	"time"
)

// Message is a single message in a negotiation thread.
//
// ThreadID equals the id of the thread's first message; for the first
// message it equals the message's own ID. All messages of a thread
// reference the same resource.
type Message struct {
	ID            string     `json:"id"`
	ThreadID      string     `json:"thread_id"`
	FromCompanyID string     `json:"from_company_id"`
	ToCompanyID   string     `json:"to_company_id"`
	ResourceID    string     `json:"resource_id"`
	Subject       string     `json:"subject"`
	Content       string     `json:"content"`
	System        bool       `json:"system,omitempty"`
	ReadAt        *time.Time `json:"read_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// IsUnreadFor returns true if the message is addressed to companyID and
// has not been read yet.
func (m *Message) IsUnreadFor(companyID string) bool {
	return m.ToCompanyID == companyID && m.ReadAt == nil
}

// Counterpart returns the other participant of the message relative to
// companyID, or "" if companyID is not a participant.
func (m *Message) Counterpart(companyID string) string {
	switch companyID {
	case m.FromCompanyID:
		return m.ToCompanyID
	case m.ToCompanyID:
		return m.FromCompanyID
	default:
		return ""
	}
}

// ThreadSummary is the list-view projection of a thread: its most recent
// message plus derived counters. Rows with dangling company or resource
// references never reach a summary.
type ThreadSummary struct {
	Latest          *Message `json:"latest"`
	UnreadCount     int      `json:"unread_count"`
	Disclosed       bool     `json:"disclosed"`
	CounterpartID   string   `json:"counterpart_id"`
	CounterpartName string   `json:"counterpart_name"` // anonymous until disclosed
	Competence      string   `json:"competence"`
}
