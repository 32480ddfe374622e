package storage

import (
	"campusdesk/backend/internal/models"
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Storage interface {
	SaveComplaint(complaint *models.Complaint) error
	GetComplaintByID(id string) (*models.Complaint, error)
	ListComplaints(status models.ComplaintStatus) ([]models.Complaint, error)
	ListComplaintsForStudent(studentID string) ([]models.Complaint, error)
	FindStaleComplaints(cutoff time.Time) ([]models.Complaint, error)
	CloseComplaintIfLive(id string, resolvedAt time.Time) (bool, error)
	UpdateComplaintStatus(id string, status models.ComplaintStatus, resolvedAt *time.Time) error
	AssignComplaint(id, adminID string) error

	HasRecentComment(complaintID string, since time.Time) (bool, error)
	SaveComment(comment *models.Comment) error
	ListComments(complaintID string) ([]models.Comment, error)

	SaveAuditEntry(entry *models.AuditEntry) error
	ListAuditEntries(complaintID string) ([]models.AuditEntry, error)

	GetRoster(role models.UserRole) ([]models.User, error)
	GetUserByID(id string) (*models.User, error)
	SaveUser(user *models.User) error
	FindOrCreateStudent(email, fullName string) (*models.User, error)
	CountAssignedPerAdmin() (map[string]int, error)

	AcquireReaperLock(ttl time.Duration) (bool, error)
	ReleaseReaperLock() error
	CacheDuplicateReport(payload []byte, ttl time.Duration) error
	CachedDuplicateReport() ([]byte, error)
}

type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// SaveComplaint persists a complaint in PostgreSQL.
func (s *Service) SaveComplaint(complaint *models.Complaint) error {
	if err := s.DB.Save(complaint).Error; err != nil {
		log.Printf("ERROR: Failed to save complaint %s: %v", complaint.ID, err)
		return err
	}
	return nil
}

// GetComplaintByID returns a single complaint or gorm.ErrRecordNotFound.
func (s *Service) GetComplaintByID(id string) (*models.Complaint, error) {
	var complaint models.Complaint
	if err := s.DB.First(&complaint, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &complaint, nil
}

// ListComplaints returns complaints, optionally filtered by status.
// An empty status returns everything, newest first.
func (s *Service) ListComplaints(status models.ComplaintStatus) ([]models.Complaint, error) {
	var complaints []models.Complaint
	q := s.DB.Order("created_at desc")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Find(&complaints).Error; err != nil {
		log.Printf("ERROR: Failed to list complaints: %v", err)
		return nil, err
	}
	return complaints, nil
}

// ListComplaintsForStudent returns a student's own complaints, newest first.
func (s *Service) ListComplaintsForStudent(studentID string) ([]models.Complaint, error) {
	var complaints []models.Complaint
	err := s.DB.Where("student_id = ?", studentID).
		Order("created_at desc").
		Find(&complaints).Error
	if err != nil {
		log.Printf("ERROR: Failed to list complaints for student %s: %v", studentID, err)
		return nil, err
	}
	return complaints, nil
}

// FindStaleComplaints returns live complaints whose updated_at is older
// than the cutoff. These are the reaper's candidates; the recent-comment
// exclusion happens separately per candidate.
func (s *Service) FindStaleComplaints(cutoff time.Time) ([]models.Complaint, error) {
	var complaints []models.Complaint
	err := s.DB.Where("status IN ?", []models.ComplaintStatus{models.StatusOpen, models.StatusInProgress}).
		Where("updated_at < ?", cutoff).
		Find(&complaints).Error
	if err != nil {
		log.Printf("ERROR: Failed to query stale complaints: %v", err)
		return nil, err
	}
	return complaints, nil
}

// CloseComplaintIfLive transitions a complaint to resolved, but only if
// it is still open or in progress at write time. Returns whether a row
// was actually closed, so overlapping reaper runs close each complaint
// at most once.
func (s *Service) CloseComplaintIfLive(id string, resolvedAt time.Time) (bool, error) {
	result := s.DB.Model(&models.Complaint{}).
		Where("id = ?", id).
		Where("status IN ?", []models.ComplaintStatus{models.StatusOpen, models.StatusInProgress}).
		Updates(map[string]interface{}{
			"status":      models.StatusResolved,
			"resolved_at": resolvedAt,
		})
	if result.Error != nil {
		log.Printf("ERROR: Failed to close complaint %s: %v", id, result.Error)
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// UpdateComplaintStatus sets the status, keeping resolved_at in sync:
// non-nil when resolving, cleared when reopening.
func (s *Service) UpdateComplaintStatus(id string, status models.ComplaintStatus, resolvedAt *time.Time) error {
	err := s.DB.Model(&models.Complaint{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      status,
			"resolved_at": resolvedAt,
		}).Error
	if err != nil {
		log.Printf("ERROR: Failed to update status of complaint %s: %v", id, err)
	}
	return err
}

// AssignComplaint sets the assignee of a single complaint.
func (s *Service) AssignComplaint(id, adminID string) error {
	err := s.DB.Model(&models.Complaint{}).
		Where("id = ?", id).
		Update("assigned_to", adminID).Error
	if err != nil {
		log.Printf("ERROR: Failed to assign complaint %s to %s: %v", id, adminID, err)
	}
	return err
}

// HasRecentComment reports whether any comment exists on the complaint
// at or after the given time. Existence check only.
func (s *Service) HasRecentComment(complaintID string, since time.Time) (bool, error) {
	var count int64
	err := s.DB.Model(&models.Comment{}).
		Where("complaint_id = ?", complaintID).
		Where("created_at >= ?", since).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Service) SaveComment(comment *models.Comment) error {
	if err := s.DB.Create(comment).Error; err != nil {
		log.Printf("ERROR: Failed to save comment for complaint %s: %v", comment.ComplaintID, err)
		return err
	}
	return nil
}

// ListComments returns a complaint's comments sorted by creation time.
func (s *Service) ListComments(complaintID string) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.DB.Where("complaint_id = ?", complaintID).
		Order("created_at asc").
		Find(&comments).Error
	if err != nil {
		log.Printf("ERROR: Failed to get comments for complaint %s: %v", complaintID, err)
		return nil, err
	}
	return comments, nil
}

// SaveAuditEntry appends an activity-feed record. The feed is
// write-once; there are no update or delete methods on purpose.
func (s *Service) SaveAuditEntry(entry *models.AuditEntry) error {
	if err := s.DB.Create(entry).Error; err != nil {
		log.Printf("ERROR: Failed to save audit entry for complaint %s: %v", entry.ComplaintID, err)
		return err
	}
	return nil
}

// ListAuditEntries returns the activity feed for a complaint, newest first.
func (s *Service) ListAuditEntries(complaintID string) ([]models.AuditEntry, error) {
	var entries []models.AuditEntry
	err := s.DB.Where("complaint_id = ?", complaintID).
		Order("created_at desc").
		Find(&entries).Error
	if err != nil {
		log.Printf("ERROR: Failed to get audit entries for complaint %s: %v", complaintID, err)
		return nil, err
	}
	return entries, nil
}

// GetRoster returns all users with the given role.
func (s *Service) GetRoster(role models.UserRole) ([]models.User, error) {
	var users []models.User
	if err := s.DB.Where("role = ?", role).Order("id asc").Find(&users).Error; err != nil {
		log.Printf("ERROR: Failed to load roster for role %s: %v", role, err)
		return nil, err
	}
	return users, nil
}

func (s *Service) GetUserByID(id string) (*models.User, error) {
	var user models.User
	if err := s.DB.First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// SaveUser persists a user in PostgreSQL.
func (s *Service) SaveUser(user *models.User) error {
	return s.DB.Save(user).Error
}

// FindOrCreateStudent looks a student up by email, creating the account
// on first contact.
func (s *Service) FindOrCreateStudent(email, fullName string) (*models.User, error) {
	var user models.User
	defaults := models.User{
		Email:    email,
		FullName: fullName,
		Role:     models.RoleStudent,
	}

	result := s.DB.Where("email = ?", email).FirstOrCreate(&user, defaults)
	if result.Error != nil {
		log.Printf("ERROR: Failed to save student %s on first contact: %v", email, result.Error)
		return nil, result.Error
	}
	if result.RowsAffected > 0 {
		log.Printf("INFO: New student %s saved to database (ID: %s).", email, user.ID)
	}
	return &user, nil
}

// CountAssignedPerAdmin recomputes each admin's live load from the
// complaint table. The counts are derived on demand rather than kept as
// running counters, so they cannot drift from ground truth.
func (s *Service) CountAssignedPerAdmin() (map[string]int, error) {
	type row struct {
		AssignedTo string
		N          int
	}
	var rows []row
	err := s.DB.Model(&models.Complaint{}).
		Select("assigned_to, count(*) as n").
		Where("assigned_to IS NOT NULL").
		Where("status IN ?", []models.ComplaintStatus{models.StatusOpen, models.StatusInProgress}).
		Group("assigned_to").
		Scan(&rows).Error
	if err != nil {
		log.Printf("ERROR: Failed to count assigned complaints: %v", err)
		return nil, err
	}

	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.AssignedTo] = r.N
	}
	return counts, nil
}
