package handler_test

import (
	"campusdesk/backend/internal/api/handler"
	"campusdesk/backend/internal/models"
	"campusdesk/backend/internal/storage/storagetest"
	"campusdesk/backend/internal/templates"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTestContext(t *testing.T, method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("user_id", "admin-1")
	c.Set("role", string(models.RoleAdmin))
	return c, w
}

func newTemplateStore(t *testing.T) *templates.Store {
	t.Helper()
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "technical.json"),
		[]byte(`{"acknowledged": "IT is on it."}`), 0o644)
	assert.NoError(t, err)

	store, err := templates.NewStore(dir)
	assert.NoError(t, err)
	return store
}

// TestGetDuplicates_IgnoresResolvedComplaints verifies that resolved
// complaints do not feed the duplicate report: three resolved wifi
// complaints alone must not produce a group.
func TestGetDuplicates_IgnoresResolvedComplaints(t *testing.T) {
	// Arrange
	storageMock := new(storagetest.MockStorage)
	h := handler.NewHandler(storageMock, nil, nil, newTemplateStore(t))

	complaints := []models.Complaint{
		{ID: "r1", Title: "wifi down", Status: models.StatusResolved},
		{ID: "r2", Title: "wifi slow", Status: models.StatusResolved},
		{ID: "r3", Title: "wifi broken", Status: models.StatusResolved},
		{ID: "o1", Title: "hostel water leak", Status: models.StatusOpen},
		{ID: "o2", Title: "hostel heating", Status: models.StatusInProgress},
		{ID: "o3", Title: "hostel noise", Status: models.StatusOpen},
	}

	storageMock.On("CachedDuplicateReport").Return(nil, nil)
	storageMock.On("ListComplaints", models.ComplaintStatus("")).Return(complaints, nil)
	storageMock.On("CacheDuplicateReport", mock.Anything, mock.Anything).Return(nil)

	c, w := newTestContext(t, http.MethodGet, "/admin/duplicates", "")

	// Act
	h.GetDuplicates(c)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Groups []struct {
			Keyword string `json:"keyword"`
			Count   int    `json:"count"`
		} `json:"groups"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response.Groups, 1, "Only the live hostel cluster is a signal")
	assert.Equal(t, "Hostel", response.Groups[0].Keyword)
	assert.Equal(t, 3, response.Groups[0].Count)
}

// TestAdminAddComment_UsesTemplate verifies an admin reply can be
// filled from a canned template resolved against the complaint's
// category, and that the reply is logged on the activity feed.
func TestAdminAddComment_UsesTemplate(t *testing.T) {
	// Arrange
	storageMock := new(storagetest.MockStorage)
	h := handler.NewHandler(storageMock, nil, nil, newTemplateStore(t))

	storageMock.On("GetComplaintByID", "c1").Return(&models.Complaint{
		ID:       "c1",
		Category: models.CategoryTechnical,
		Status:   models.StatusOpen,
	}, nil)
	storageMock.On("SaveComment", mock.MatchedBy(func(cm *models.Comment) bool {
		return cm.ComplaintID == "c1" &&
			cm.AuthorID == "admin-1" &&
			cm.Message == "IT is on it."
	})).Return(nil)
	storageMock.On("SaveAuditEntry", mock.MatchedBy(func(e *models.AuditEntry) bool {
		return e.ActionType == models.ActionCommentAdded && e.ActorID == "admin-1"
	})).Return(nil)

	c, w := newTestContext(t, http.MethodPost, "/admin/complaints/c1/comments",
		`{"template_key": "acknowledged"}`)
	c.Params = gin.Params{{Key: "id", Value: "c1"}}

	// Act
	h.AdminAddComment(c)

	// Assert
	assert.Equal(t, http.StatusCreated, w.Code)
	storageMock.AssertExpectations(t)
}

// TestAdminAddComment_RequiresContent rejects a reply with neither a
// message nor a template key.
func TestAdminAddComment_RequiresContent(t *testing.T) {
	storageMock := new(storagetest.MockStorage)
	h := handler.NewHandler(storageMock, nil, nil, newTemplateStore(t))

	storageMock.On("GetComplaintByID", "c1").Return(&models.Complaint{
		ID:       "c1",
		Category: models.CategoryTechnical,
	}, nil)

	c, w := newTestContext(t, http.MethodPost, "/admin/complaints/c1/comments", `{}`)
	c.Params = gin.Params{{Key: "id", Value: "c1"}}

	h.AdminAddComment(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	storageMock.AssertNotCalled(t, "SaveComment", mock.Anything)
}

// TestListAllComplaints_SinceFilter verifies the ?since= boundary:
// malformed timestamps are rejected, valid ones filter older
// complaints out of the listing.
func TestListAllComplaints_SinceFilter(t *testing.T) {
	storageMock := new(storagetest.MockStorage)
	h := handler.NewHandler(storageMock, nil, nil, newTemplateStore(t))

	// Malformed timestamp -> 400 before any storage call
	c, w := newTestContext(t, http.MethodGet, "/admin/complaints?since=not-a-date", "")
	h.ListAllComplaints(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	storageMock.AssertNotCalled(t, "ListComplaints", mock.Anything)

	// Valid timestamp -> only complaints created at or after it remain
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	storageMock.On("ListComplaints", models.ComplaintStatus("")).Return([]models.Complaint{
		{ID: "old", Status: models.StatusOpen, CreatedAt: now.AddDate(0, 0, -10)},
		{ID: "new", Status: models.StatusOpen, CreatedAt: now.AddDate(0, 0, -1)},
	}, nil)

	c, w = newTestContext(t, http.MethodGet, "/admin/complaints?since=2026-03-05T00:00:00Z", "")
	h.ListAllComplaints(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Complaints []struct {
			ID string `json:"id"`
		} `json:"complaints"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response.Complaints, 1)
	assert.Equal(t, "new", response.Complaints[0].ID)
}
