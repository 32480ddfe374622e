package handler

import (
	"campusdesk/backend/internal/models"
	"campusdesk/backend/internal/sla"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type createComplaintRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description" binding:"required"`
	Category    string   `json:"category" binding:"required"`
	Urgency     string   `json:"urgency" binding:"required"`
	Tags        []string `json:"tags"`
}

var validCategories = map[models.ComplaintCategory]bool{
	models.CategoryTechnical:  true,
	models.CategoryFacilities: true,
	models.CategoryCurriculum: true,
	models.CategoryMentorship: true,
	models.CategoryOther:      true,
}

var validUrgencies = map[models.ComplaintUrgency]bool{
	models.UrgencyLow:    true,
	models.UrgencyMedium: true,
	models.UrgencyHigh:   true,
	models.UrgencyUrgent: true,
}

// CreateComplaint files a new complaint for the authenticated student
// and records it on the activity feed.
func (h *Handler) CreateComplaint(c *gin.Context) {
	var req createComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category := models.ComplaintCategory(req.Category)
	urgency := models.ComplaintUrgency(req.Urgency)
	if !validCategories[category] || !validUrgencies[urgency] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category or urgency"})
		return
	}

	studentID := c.GetString("user_id")
	complaint := &models.Complaint{
		Title:       req.Title,
		Description: req.Description,
		Category:    category,
		Urgency:     urgency,
		Tags:        pq.StringArray(req.Tags),
		StudentID:   studentID,
	}
	if err := h.Storage.SaveComplaint(complaint); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save complaint"})
		return
	}

	h.logActivity(complaint.ID, studentID, models.ActionCreated,
		fmt.Sprintf("Complaint %q was submitted", complaint.Title), nil)

	c.JSON(http.StatusCreated, complaint)
}

// ListComplaints returns the authenticated student's complaints, each
// annotated with its SLA state.
func (h *Handler) ListComplaints(c *gin.Context) {
	studentID := c.GetString("user_id")
	complaints, err := h.Storage.ListComplaintsForStudent(studentID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list complaints"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"complaints": annotateSLA(complaints)})
}

// GetComplaint returns one complaint with its comments, activity feed
// and SLA state. Students can only read their own complaints.
func (h *Handler) GetComplaint(c *gin.Context) {
	id := c.Param("id")
	complaint, err := h.Storage.GetComplaintByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Complaint not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load complaint"})
		return
	}
	if complaint.StudentID != c.GetString("user_id") {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your complaint"})
		return
	}

	comments, err := h.Storage.ListComments(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load comments"})
		return
	}
	feed, err := h.Storage.ListAuditEntries(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load activity"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"complaint":     complaint,
		"comments":      comments,
		"activity":      feed,
		"overdue":       sla.IsOverdue(complaint.CreatedAt, complaint.Status, complaint.ResolvedAt),
		"overdue_hours": sla.OverdueHours(complaint.CreatedAt),
	})
}

type addCommentRequest struct {
	Message string `json:"message" binding:"required"`
}

// AddComment appends a comment to the caller's complaint. A fresh
// comment also counts as activity for the stale reaper's exclusion rule.
func (h *Handler) AddComment(c *gin.Context) {
	id := c.Param("id")
	complaint, err := h.Storage.GetComplaintByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Complaint not found"})
		return
	}
	userID := c.GetString("user_id")
	if complaint.StudentID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your complaint"})
		return
	}

	var req addCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment := &models.Comment{
		ComplaintID: id,
		AuthorID:    userID,
		Message:     req.Message,
	}
	if err := h.Storage.SaveComment(comment); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save comment"})
		return
	}

	h.logActivity(id, userID, models.ActionCommentAdded, "A comment was added", nil)

	c.JSON(http.StatusCreated, comment)
}

type slaAnnotated struct {
	models.Complaint
	Overdue      bool    `json:"overdue"`
	OverdueHours float64 `json:"overdue_hours"`
}

func annotateSLA(complaints []models.Complaint) []slaAnnotated {
	annotated := make([]slaAnnotated, 0, len(complaints))
	for _, c := range complaints {
		annotated = append(annotated, slaAnnotated{
			Complaint:    c,
			Overdue:      sla.IsOverdue(c.CreatedAt, c.Status, c.ResolvedAt),
			OverdueHours: sla.OverdueHours(c.CreatedAt),
		})
	}
	return annotated
}

// logActivity appends an activity-feed entry; failures are logged but
// never fail the request that triggered them.
func (h *Handler) logActivity(complaintID, actorID, actionType, description string, metadata []byte) {
	entry := &models.AuditEntry{
		ActionType:  actionType,
		Description: description,
		ComplaintID: complaintID,
		ActorID:     actorID,
		Metadata:    metadata,
	}
	if err := h.Storage.SaveAuditEntry(entry); err != nil {
		log.Printf("ERROR: Failed to log %s on complaint %s: %v", actionType, complaintID, err)
	}
}
