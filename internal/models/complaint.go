package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq" // Needed for pq.StringArray
	"gorm.io/gorm"
)

// ComplaintCategory enumerates the areas a complaint can be filed under.
type ComplaintCategory string

const (
	CategoryTechnical  ComplaintCategory = "technical"
	CategoryFacilities ComplaintCategory = "facilities"
	CategoryCurriculum ComplaintCategory = "curriculum"
	CategoryMentorship ComplaintCategory = "mentorship"
	CategoryOther      ComplaintCategory = "other"
)

// ComplaintUrgency enumerates how quickly a complaint needs attention.
type ComplaintUrgency string

const (
	UrgencyLow    ComplaintUrgency = "low"
	UrgencyMedium ComplaintUrgency = "medium"
	UrgencyHigh   ComplaintUrgency = "high"
	UrgencyUrgent ComplaintUrgency = "urgent"
)

// ComplaintStatus enumerates the lifecycle states of a complaint.
type ComplaintStatus string

const (
	StatusOpen       ComplaintStatus = "open"
	StatusInProgress ComplaintStatus = "in_progress"
	StatusResolved   ComplaintStatus = "resolved"
)

// Complaint is the central trackable issue submitted by a student.
// ResolvedAt is non-nil if and only if Status is StatusResolved.
type Complaint struct {
	ID          string            `gorm:"primaryKey" json:"id"`
	Title       string            `gorm:"type:text;not null" json:"title"`
	Description string            `gorm:"type:text;not null" json:"description"`
	Category    ComplaintCategory `gorm:"type:text;not null;index" json:"category"`
	Urgency     ComplaintUrgency  `gorm:"type:text;not null" json:"urgency"`
	Status      ComplaintStatus   `gorm:"type:text;not null;index" json:"status"`
	Tags        pq.StringArray    `gorm:"type:text[]" json:"tags"`
	StudentID   string            `gorm:"type:uuid;not null;index" json:"student_id"`
	AssignedTo  *string           `gorm:"type:uuid;index" json:"assigned_to"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	ResolvedAt  *time.Time        `json:"resolved_at"`
}

// BeforeCreate is a GORM hook that assigns a fresh UUID and defaults
// the status to open when the caller left them empty.
func (c *Complaint) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Status == "" {
		c.Status = StatusOpen
	}
	return
}

// IsLive reports whether the complaint is still being worked on,
// i.e. open or in progress.
func (c *Complaint) IsLive() bool {
	return c.Status == StatusOpen || c.Status == StatusInProgress
}
