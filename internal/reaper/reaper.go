// Package reaper implements the stale-complaint auto-closer. It scans
// live complaints whose updated_at fell behind the staleness window,
// excludes any with recent comment activity, and resolves the rest with
// an explanatory comment and an activity-feed entry.
package reaper

import (
	"campusdesk/backend/internal/config"
	"campusdesk/backend/internal/models"
	"campusdesk/backend/internal/storage"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"
)

// ErrAlreadyRunning is returned when another reaper run holds the lock.
var ErrAlreadyRunning = errors.New("reaper run already in progress")

// Notifier receives the summary of a finished run. Implementations are
// best-effort; a failed notification never fails the run.
type Notifier interface {
	NotifyReaperReport(report *Report)
}

// Report summarizes one reaper run. Attempted counts every candidate
// the run acted on, including ones whose activity check failed;
// ClosedCount can be lower when individual writes fail or a complaint
// was resolved concurrently between the scan and the close.
type Report struct {
	Success     bool     `json:"success"`
	StaleDays   int      `json:"stale_days"`
	Attempted   int      `json:"attempted"`
	ClosedCount int      `json:"closed_count"`
	ClosedIDs   []string `json:"closed_ids"`
	FailedIDs   []string `json:"failed_ids,omitempty"`
}

// Service runs the stale-complaint batch over the storage layer.
type Service struct {
	Storage  storage.Storage
	Notifier Notifier

	// Now is the clock used for cutoff and resolution timestamps.
	Now func() time.Time
}

// NewService creates a new reaper service.
func NewService(s storage.Storage) *Service {
	return &Service{Storage: s, Now: time.Now}
}

// Run executes one reaper pass. staleDays values below 1 fall back to
// the default window. The initial candidate query failing is a hard
// error; everything after that is per-candidate and isolated.
func (s *Service) Run(staleDays int) (*Report, error) {
	if staleDays < 1 {
		staleDays = config.DefaultStaleDays
	}
	report := &Report{StaleDays: staleDays, ClosedIDs: []string{}}

	locked, err := s.Storage.AcquireReaperLock(config.ReaperLockTTL)
	if err != nil {
		return report, err
	}
	if !locked {
		return report, ErrAlreadyRunning
	}
	defer func() {
		if err := s.Storage.ReleaseReaperLock(); err != nil {
			log.Printf("ERROR: Failed to release reaper lock: %v", err)
		}
	}()

	now := s.Now()
	cutoff := now.AddDate(0, 0, -staleDays)
	log.Printf("INFO: Reaper looking for complaints stale since %s (%d days)", cutoff.Format(time.RFC3339), staleDays)

	candidates, err := s.Storage.FindStaleComplaints(cutoff)
	if err != nil {
		return report, err
	}
	log.Printf("INFO: Reaper found %d candidate complaints", len(candidates))

	for _, candidate := range candidates {
		// Two-signal check: a stale updated_at alone is not enough,
		// a complaint under active discussion stays open.
		active, err := s.Storage.HasRecentComment(candidate.ID, cutoff)
		if err != nil {
			log.Printf("ERROR: Reaper could not check activity on complaint %s: %v", candidate.ID, err)
			report.Attempted++
			report.FailedIDs = append(report.FailedIDs, candidate.ID)
			continue
		}
		if active {
			continue
		}

		report.Attempted++
		if closed := s.closeOne(candidate, staleDays, now); closed {
			report.ClosedCount++
			report.ClosedIDs = append(report.ClosedIDs, candidate.ID)
		} else {
			report.FailedIDs = append(report.FailedIDs, candidate.ID)
		}
	}

	report.Success = true
	log.Printf("INFO: Reaper auto-closed %d of %d stale complaints", report.ClosedCount, report.Attempted)

	if s.Notifier != nil {
		s.Notifier.NotifyReaperReport(report)
	}
	return report, nil
}

// closeOne resolves a single candidate. The conditional update re-checks
// the status at write time, so a complaint resolved by a concurrent run
// or an admin in the meantime is skipped without follow-up records.
func (s *Service) closeOne(candidate models.Complaint, staleDays int, now time.Time) bool {
	closed, err := s.Storage.CloseComplaintIfLive(candidate.ID, now)
	if err != nil || !closed {
		return false
	}

	comment := &models.Comment{
		ComplaintID: candidate.ID,
		AuthorID:    candidate.StudentID,
		Message: fmt.Sprintf("This complaint was automatically closed due to %d days of inactivity. "+
			"If the issue persists, please reopen or create a new complaint.", staleDays),
	}
	if err := s.Storage.SaveComment(comment); err != nil {
		log.Printf("ERROR: Reaper could not add auto-close comment on complaint %s: %v", candidate.ID, err)
	}

	metadata, _ := json.Marshal(map[string]interface{}{
		"reason":        "stale_complaint",
		"days_inactive": staleDays,
	})
	entry := &models.AuditEntry{
		ActionType:  models.ActionAutoClosed,
		Description: fmt.Sprintf("Complaint %q was auto-closed due to inactivity", candidate.Title),
		ComplaintID: candidate.ID,
		ActorID:     candidate.StudentID,
		Metadata:    metadata,
	}
	if err := s.Storage.SaveAuditEntry(entry); err != nil {
		log.Printf("ERROR: Reaper could not log auto-close of complaint %s: %v", candidate.ID, err)
	}

	return true
}
