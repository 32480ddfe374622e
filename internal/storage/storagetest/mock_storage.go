// Package storagetest provides a shared test double for the
// storage.Storage interface, used by the reaper and workload tests.
package storagetest

import (
	"campusdesk/backend/internal/models"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockStorage is a comprehensive mock implementation of the
// storage.Storage interface backed by testify/mock, so tests can set
// expectations per method.
type MockStorage struct {
	mock.Mock
}

// Complaint operations

func (m *MockStorage) SaveComplaint(complaint *models.Complaint) error {
	args := m.Called(complaint)
	return args.Error(0)
}

func (m *MockStorage) GetComplaintByID(id string) (*models.Complaint, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Complaint), args.Error(1)
}

func (m *MockStorage) ListComplaints(status models.ComplaintStatus) ([]models.Complaint, error) {
	args := m.Called(status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Complaint), args.Error(1)
}

func (m *MockStorage) ListComplaintsForStudent(studentID string) ([]models.Complaint, error) {
	args := m.Called(studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Complaint), args.Error(1)
}

func (m *MockStorage) FindStaleComplaints(cutoff time.Time) ([]models.Complaint, error) {
	args := m.Called(cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Complaint), args.Error(1)
}

func (m *MockStorage) CloseComplaintIfLive(id string, resolvedAt time.Time) (bool, error) {
	args := m.Called(id, resolvedAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) UpdateComplaintStatus(id string, status models.ComplaintStatus, resolvedAt *time.Time) error {
	args := m.Called(id, status, resolvedAt)
	return args.Error(0)
}

func (m *MockStorage) AssignComplaint(id, adminID string) error {
	args := m.Called(id, adminID)
	return args.Error(0)
}

// Comment operations

func (m *MockStorage) HasRecentComment(complaintID string, since time.Time) (bool, error) {
	args := m.Called(complaintID, since)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) SaveComment(comment *models.Comment) error {
	args := m.Called(comment)
	return args.Error(0)
}

func (m *MockStorage) ListComments(complaintID string) ([]models.Comment, error) {
	args := m.Called(complaintID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Comment), args.Error(1)
}

// Audit operations

func (m *MockStorage) SaveAuditEntry(entry *models.AuditEntry) error {
	args := m.Called(entry)
	return args.Error(0)
}

func (m *MockStorage) ListAuditEntries(complaintID string) ([]models.AuditEntry, error) {
	args := m.Called(complaintID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AuditEntry), args.Error(1)
}

// Roster operations

func (m *MockStorage) GetRoster(role models.UserRole) ([]models.User, error) {
	args := m.Called(role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockStorage) GetUserByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) SaveUser(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockStorage) FindOrCreateStudent(email, fullName string) (*models.User, error) {
	args := m.Called(email, fullName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) CountAssignedPerAdmin() (map[string]int, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

// Redis-backed operations

func (m *MockStorage) AcquireReaperLock(ttl time.Duration) (bool, error) {
	args := m.Called(ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) ReleaseReaperLock() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockStorage) CacheDuplicateReport(payload []byte, ttl time.Duration) error {
	args := m.Called(payload, ttl)
	return args.Error(0)
}

func (m *MockStorage) CachedDuplicateReport() ([]byte, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
