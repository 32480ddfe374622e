package reaper_test

import (
	"campusdesk/backend/internal/config"
	"campusdesk/backend/internal/models"
	"campusdesk/backend/internal/reaper"
	"campusdesk/backend/internal/storage/storagetest"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestService(storageMock *storagetest.MockStorage) *reaper.Service {
	svc := reaper.NewService(storageMock)
	svc.Now = func() time.Time { return testNow }
	return svc
}

func expectLock(storageMock *storagetest.MockStorage) {
	storageMock.On("AcquireReaperLock", config.ReaperLockTTL).Return(true, nil)
	storageMock.On("ReleaseReaperLock").Return(nil)
}

func staleComplaint(id string) models.Complaint {
	return models.Complaint{
		ID:        id,
		Title:     "Projector broken in lab 2",
		Status:    models.StatusOpen,
		StudentID: "student-1",
		UpdatedAt: testNow.AddDate(0, 0, -6),
	}
}

// TestRun_ClosesStaleComplaint walks the full happy path: a 6-day-old
// open complaint with no recent comments is closed, gets an auto-close
// comment and an auto_closed audit entry.
func TestRun_ClosesStaleComplaint(t *testing.T) {
	// Arrange
	storageMock := new(storagetest.MockStorage)
	svc := newTestService(storageMock)
	cutoff := testNow.AddDate(0, 0, -5)

	expectLock(storageMock)
	storageMock.On("FindStaleComplaints", cutoff).Return([]models.Complaint{staleComplaint("c1")}, nil)
	storageMock.On("HasRecentComment", "c1", cutoff).Return(false, nil)
	storageMock.On("CloseComplaintIfLive", "c1", testNow).Return(true, nil)
	storageMock.On("SaveComment", mock.MatchedBy(func(c *models.Comment) bool {
		return c.ComplaintID == "c1" && c.AuthorID == "student-1"
	})).Return(nil)
	storageMock.On("SaveAuditEntry", mock.MatchedBy(func(e *models.AuditEntry) bool {
		return e.ActionType == models.ActionAutoClosed && e.ComplaintID == "c1"
	})).Return(nil)

	// Act
	report, err := svc.Run(5)

	// Assert
	assert.NoError(t, err)
	assert.True(t, report.Success)
	assert.Equal(t, 1, report.ClosedCount)
	assert.Equal(t, []string{"c1"}, report.ClosedIDs)
	assert.Empty(t, report.FailedIDs)
	storageMock.AssertExpectations(t)
}

// TestRun_ExcludesRecentlyDiscussed verifies the two-signal check: a
// complaint with a stale updated_at but a comment after the cutoff must
// not be closed.
func TestRun_ExcludesRecentlyDiscussed(t *testing.T) {
	// Arrange
	storageMock := new(storagetest.MockStorage)
	svc := newTestService(storageMock)
	cutoff := testNow.AddDate(0, 0, -5)

	expectLock(storageMock)
	storageMock.On("FindStaleComplaints", cutoff).Return([]models.Complaint{staleComplaint("c1")}, nil)
	storageMock.On("HasRecentComment", "c1", cutoff).Return(true, nil)

	// Act
	report, err := svc.Run(5)

	// Assert
	assert.NoError(t, err)
	assert.Zero(t, report.ClosedCount)
	assert.Empty(t, report.ClosedIDs)
	storageMock.AssertNotCalled(t, "CloseComplaintIfLive", mock.Anything, mock.Anything)
}

// TestRun_Idempotent simulates a second run after everything eligible
// was already closed: the candidate query filters by status, so the
// second pass finds nothing.
func TestRun_Idempotent(t *testing.T) {
	storageMock := new(storagetest.MockStorage)
	svc := newTestService(storageMock)
	cutoff := testNow.AddDate(0, 0, -5)

	expectLock(storageMock)
	storageMock.On("FindStaleComplaints", cutoff).Return([]models.Complaint{}, nil)

	report, err := svc.Run(5)

	assert.NoError(t, err)
	assert.True(t, report.Success)
	assert.Zero(t, report.ClosedCount)
}

// TestRun_ConcurrentCloseSkipsFollowUps covers the overlap guard: when
// the conditional update reports no row changed, neither the comment
// nor the audit entry may be written.
func TestRun_ConcurrentCloseSkipsFollowUps(t *testing.T) {
	storageMock := new(storagetest.MockStorage)
	svc := newTestService(storageMock)
	cutoff := testNow.AddDate(0, 0, -5)

	expectLock(storageMock)
	storageMock.On("FindStaleComplaints", cutoff).Return([]models.Complaint{staleComplaint("c1")}, nil)
	storageMock.On("HasRecentComment", "c1", cutoff).Return(false, nil)
	storageMock.On("CloseComplaintIfLive", "c1", testNow).Return(false, nil)

	report, err := svc.Run(5)

	assert.NoError(t, err)
	assert.Zero(t, report.ClosedCount)
	storageMock.AssertNotCalled(t, "SaveComment", mock.Anything)
	storageMock.AssertNotCalled(t, "SaveAuditEntry", mock.Anything)
}

// TestRun_PerCandidateFailureIsolation verifies one failing candidate
// does not abort the batch.
func TestRun_PerCandidateFailureIsolation(t *testing.T) {
	storageMock := new(storagetest.MockStorage)
	svc := newTestService(storageMock)
	cutoff := testNow.AddDate(0, 0, -5)

	expectLock(storageMock)
	storageMock.On("FindStaleComplaints", cutoff).
		Return([]models.Complaint{staleComplaint("c1"), staleComplaint("c2")}, nil)
	storageMock.On("HasRecentComment", mock.Anything, cutoff).Return(false, nil)
	storageMock.On("CloseComplaintIfLive", "c1", testNow).Return(false, errors.New("connection reset"))
	storageMock.On("CloseComplaintIfLive", "c2", testNow).Return(true, nil)
	storageMock.On("SaveComment", mock.AnythingOfType("*models.Comment")).Return(nil)
	storageMock.On("SaveAuditEntry", mock.AnythingOfType("*models.AuditEntry")).Return(nil)

	report, err := svc.Run(5)

	assert.NoError(t, err)
	assert.True(t, report.Success)
	assert.Equal(t, 2, report.Attempted)
	assert.Equal(t, 1, report.ClosedCount)
	assert.Equal(t, []string{"c2"}, report.ClosedIDs)
	assert.Equal(t, []string{"c1"}, report.FailedIDs)
}

// TestRun_ActivityCheckFailureCounted verifies a candidate whose
// activity check fails is still counted as attempted, so the report
// always satisfies ClosedCount + len(FailedIDs) == Attempted.
func TestRun_ActivityCheckFailureCounted(t *testing.T) {
	storageMock := new(storagetest.MockStorage)
	svc := newTestService(storageMock)
	cutoff := testNow.AddDate(0, 0, -5)

	expectLock(storageMock)
	storageMock.On("FindStaleComplaints", cutoff).
		Return([]models.Complaint{staleComplaint("c1"), staleComplaint("c2")}, nil)
	storageMock.On("HasRecentComment", "c1", cutoff).Return(false, errors.New("connection reset"))
	storageMock.On("HasRecentComment", "c2", cutoff).Return(false, nil)
	storageMock.On("CloseComplaintIfLive", "c2", testNow).Return(true, nil)
	storageMock.On("SaveComment", mock.AnythingOfType("*models.Comment")).Return(nil)
	storageMock.On("SaveAuditEntry", mock.AnythingOfType("*models.AuditEntry")).Return(nil)

	report, err := svc.Run(5)

	assert.NoError(t, err)
	assert.Equal(t, 2, report.Attempted)
	assert.Equal(t, 1, report.ClosedCount)
	assert.Equal(t, []string{"c1"}, report.FailedIDs)
	assert.Equal(t, report.Attempted, report.ClosedCount+len(report.FailedIDs))
	storageMock.AssertNotCalled(t, "CloseComplaintIfLive", "c1", mock.Anything)
}

// TestRun_InitialQueryFailureAborts verifies a store outage on the
// candidate query is a hard failure before anything is written.
func TestRun_InitialQueryFailureAborts(t *testing.T) {
	storageMock := new(storagetest.MockStorage)
	svc := newTestService(storageMock)

	expectLock(storageMock)
	storageMock.On("FindStaleComplaints", mock.Anything).Return(nil, errors.New("store unreachable"))

	report, err := svc.Run(5)

	assert.Error(t, err)
	assert.False(t, report.Success)
	storageMock.AssertNotCalled(t, "CloseComplaintIfLive", mock.Anything, mock.Anything)
}

// TestRun_SkipsWhenLocked verifies an overlapping run skips entirely.
func TestRun_SkipsWhenLocked(t *testing.T) {
	storageMock := new(storagetest.MockStorage)
	svc := newTestService(storageMock)

	storageMock.On("AcquireReaperLock", config.ReaperLockTTL).Return(false, nil)

	report, err := svc.Run(5)

	assert.ErrorIs(t, err, reaper.ErrAlreadyRunning)
	assert.False(t, report.Success)
	storageMock.AssertNotCalled(t, "FindStaleComplaints", mock.Anything)
	storageMock.AssertNotCalled(t, "ReleaseReaperLock")
}

// TestRun_DefaultStaleDays verifies out-of-range inputs fall back to
// the default window.
func TestRun_DefaultStaleDays(t *testing.T) {
	storageMock := new(storagetest.MockStorage)
	svc := newTestService(storageMock)
	cutoff := testNow.AddDate(0, 0, -config.DefaultStaleDays)

	expectLock(storageMock)
	storageMock.On("FindStaleComplaints", cutoff).Return([]models.Complaint{}, nil)

	report, err := svc.Run(0)

	assert.NoError(t, err)
	assert.Equal(t, config.DefaultStaleDays, report.StaleDays)
	storageMock.AssertExpectations(t)
}
