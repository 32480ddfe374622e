package models

import "time"

// Audit feed action types written by the service.
const (
	ActionCreated       = "created"
	ActionCommentAdded  = "comment_added"
	ActionStatusChanged = "status_changed"
	ActionAssigned      = "assigned"
	ActionAutoClosed    = "auto_closed"
)

// AuditEntry is an append-only activity-feed record. Entries are only
// ever inserted; nothing in the service updates or deletes them.
type AuditEntry struct {
	ID          uint      `gorm:"primaryKey"`
	CreatedAt   time.Time `gorm:"not null;index"`
	ActionType  string    `gorm:"type:text;not null;index"`
	Description string    `gorm:"type:text;not null"`
	ComplaintID string    `gorm:"type:uuid;not null;index"`
	ActorID     string    `gorm:"type:uuid;not null"`
	// Metadata is a free-form JSON payload, e.g. the reaper's
	// {"reason":"stale_complaint","days_inactive":5}.
	Metadata []byte `gorm:"type:jsonb"`
}
