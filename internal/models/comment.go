package models

import "gorm.io/gorm"

// Comment represents a message left on a complaint by a student or an
// admin. The embedded gorm.Model provides ID, CreatedAt, UpdatedAt and
// DeletedAt fields; CreatedAt doubles as the recent-activity signal the
// stale reaper checks before closing a complaint.
type Comment struct {
	gorm.Model

	// ComplaintID is the complaint this comment belongs to.
	ComplaintID string `gorm:"type:uuid;not null;index"`
	// AuthorID is the user who wrote the comment.
	AuthorID string `gorm:"type:uuid;not null"`
	// Message is the comment body.
	Message string `gorm:"type:text;not null"`
}
