package domain

import "time"

// AuditEntry is one recorded console action.
type AuditEntry struct {
	ID         int64
	EventType  string
	Resource   string
	Actor      string
	Role       string
	Message    string
	RequestID  string
	OccurredAt time.Time
	RecordedAt time.Time
}
