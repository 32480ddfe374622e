package handler

import (
	"campusdesk/backend/internal/analysis"
	"campusdesk/backend/internal/config"
	"campusdesk/backend/internal/grouping"
	"campusdesk/backend/internal/models"
	"campusdesk/backend/internal/reaper"
	"campusdesk/backend/internal/sla"
	"campusdesk/backend/internal/workload"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ListAllComplaints returns every complaint, optionally filtered by
// status and a ?since= creation timestamp, annotated with SLA state for
// the triage board.
func (h *Handler) ListAllComplaints(c *gin.Context) {
	var since time.Time
	if q := c.Query("since"); q != "" {
		var err error
		since, err = sla.ParseTimestamp(q)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid since timestamp"})
			return
		}
	}

	status := models.ComplaintStatus(c.Query("status"))
	complaints, err := h.Storage.ListComplaints(status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list complaints"})
		return
	}

	if !since.IsZero() {
		filtered := complaints[:0]
		for _, cm := range complaints {
			if !cm.CreatedAt.Before(since) {
				filtered = append(filtered, cm)
			}
		}
		complaints = filtered
	}

	c.JSON(http.StatusOK, gin.H{"complaints": annotateSLA(complaints)})
}

type adminCommentRequest struct {
	Message     string `json:"message"`
	TemplateKey string `json:"template_key"`
}

// AdminAddComment posts an admin reply on any complaint: either free
// text or a canned response template resolved against the complaint's
// category. The reply counts as activity for the stale reaper.
func (h *Handler) AdminAddComment(c *gin.Context) {
	id := c.Param("id")
	adminID := c.GetString("user_id")

	complaint, err := h.Storage.GetComplaintByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Complaint not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load complaint"})
		return
	}

	var req adminCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message := req.Message
	if message == "" && req.TemplateKey != "" {
		message = h.Templates.Get(string(complaint.Category), req.TemplateKey)
	}
	if message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message or template_key is required"})
		return
	}

	comment := &models.Comment{
		ComplaintID: id,
		AuthorID:    adminID,
		Message:     message,
	}
	if err := h.Storage.SaveComment(comment); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save comment"})
		return
	}

	h.logActivity(id, adminID, models.ActionCommentAdded, "An admin replied", nil)

	c.JSON(http.StatusCreated, comment)
}

type updateComplaintRequest struct {
	Status     string `json:"status"`
	AssignedTo string `json:"assigned_to"`
}

// UpdateComplaint changes a complaint's status and/or assignee, keeping
// resolved_at consistent and writing the matching feed entries.
func (h *Handler) UpdateComplaint(c *gin.Context) {
	id := c.Param("id")
	adminID := c.GetString("user_id")

	var req updateComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	complaint, err := h.Storage.GetComplaintByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Complaint not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load complaint"})
		return
	}

	if req.Status != "" {
		status := models.ComplaintStatus(req.Status)
		switch status {
		case models.StatusOpen, models.StatusInProgress, models.StatusResolved:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
			return
		}

		var resolvedAt *time.Time
		if status == models.StatusResolved {
			now := time.Now()
			resolvedAt = &now
		}
		if err := h.Storage.UpdateComplaintStatus(id, status, resolvedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status"})
			return
		}
		h.logActivity(id, adminID, models.ActionStatusChanged,
			fmt.Sprintf("Status changed from %s to %s", complaint.Status, status), nil)
	}

	if req.AssignedTo != "" {
		if _, err := h.Storage.GetUserByID(req.AssignedTo); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown assignee"})
			return
		}
		if err := h.Storage.AssignComplaint(id, req.AssignedTo); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assign complaint"})
			return
		}
		h.logActivity(id, adminID, models.ActionAssigned,
			fmt.Sprintf("Complaint assigned to %s", req.AssignedTo), nil)
	}

	updated, err := h.Storage.GetComplaintByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reload complaint"})
		return
	}
	c.JSON(http.StatusOK, updated)
}

type runReaperRequest struct {
	StaleDays int `json:"staleDays"`
}

// RunReaper triggers one stale-complaint pass and returns its report.
func (h *Handler) RunReaper(c *gin.Context) {
	var req runReaperRequest
	// Empty body means default window, mirroring the scheduler trigger.
	_ = c.ShouldBindJSON(&req)

	report, err := h.Reaper.Run(req.StaleDays)
	if err != nil {
		if errors.Is(err, reaper.ErrAlreadyRunning) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "report": report})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "report": report})
		return
	}
	c.JSON(http.StatusOK, report)
}

// BalanceWorkload recomputes the roster loads, builds a round-robin
// plan over the open complaints and applies it, reporting partial
// failures instead of aborting.
func (h *Handler) BalanceWorkload(c *gin.Context) {
	roster, err := h.Workload.Loads()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load roster"})
		return
	}
	complaints, err := h.Storage.ListComplaints("")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list complaints"})
		return
	}
	var live []models.Complaint
	for _, cm := range complaints {
		if cm.IsLive() {
			live = append(live, cm)
		}
	}

	plan := workload.BuildPlan(live, roster)
	if plan.RosterSize == 0 {
		c.JSON(http.StatusOK, gin.H{"plan": plan, "message": "No admins available"})
		return
	}
	if len(plan.Assignments) == 0 {
		c.JSON(http.StatusOK, gin.H{"plan": plan, "message": "Nothing to assign"})
		return
	}

	report := h.Workload.ApplyPlan(plan, c.GetString("user_id"))
	c.JSON(http.StatusOK, gin.H{"plan": plan, "report": report})
}

// GetRoster returns the admins with their live load counts.
func (h *Handler) GetRoster(c *gin.Context) {
	roster, err := h.Workload.Loads()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load roster"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"roster": roster, "size": len(roster)})
}

// GetDuplicates reports keyword clusters over the live complaints. The
// default-threshold report is cached in Redis so dashboard refreshes
// stay cheap; a custom ?threshold= bypasses the cache.
func (h *Handler) GetDuplicates(c *gin.Context) {
	threshold := config.DefaultDuplicateThreshold
	if q := c.Query("threshold"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid threshold"})
			return
		}
		threshold = n
	}

	useCache := threshold == config.DefaultDuplicateThreshold
	if useCache {
		if cached, err := h.Storage.CachedDuplicateReport(); err == nil && cached != nil {
			c.Data(http.StatusOK, "application/json", cached)
			return
		}
	}

	complaints, err := h.Storage.ListComplaints("")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list complaints"})
		return
	}
	// Resolved complaints are history, not a systemic signal; grouping
	// them would keep old clusters above the threshold forever.
	var live []models.Complaint
	for _, cm := range complaints {
		if cm.IsLive() {
			live = append(live, cm)
		}
	}

	groups := grouping.DetectDuplicateGroups(live, threshold)
	payload, err := json.Marshal(gin.H{"groups": groups})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode report"})
		return
	}
	if useCache {
		if err := h.Storage.CacheDuplicateReport(payload, config.DuplicateReportCacheTTL); err != nil {
			log.Printf("ERROR: Failed to cache duplicate report: %v", err)
		}
	}

	c.Data(http.StatusOK, "application/json", payload)
}

// GetStats aggregates complaint counts and the weighted backlog score.
func (h *Handler) GetStats(c *gin.Context) {
	complaints, err := h.Storage.ListComplaints("")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list complaints"})
		return
	}
	c.JSON(http.StatusOK, analysis.ComputeStats(complaints))
}

// GetTemplates returns the canned response templates for one category.
func (h *Handler) GetTemplates(c *gin.Context) {
	category := c.Query("category")
	if category == "" {
		category = "other"
	}
	c.JSON(http.StatusOK, gin.H{
		"category":  category,
		"templates": h.Templates.Category(category),
	})
}
