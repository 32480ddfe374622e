// Package sla decides whether a complaint has breached the response
// SLA and by how much. All functions are pure; variants suffixed At
// take an explicit clock so callers and tests stay deterministic.
package sla

import (
	"campusdesk/backend/internal/config"
	"campusdesk/backend/internal/models"
	"errors"
	"time"
)

// ErrInvalidTimestamp is returned when a timestamp string cannot be
// parsed. Callers should treat it as bad input, not as "not overdue".
var ErrInvalidTimestamp = errors.New("invalid timestamp")

// IsOverdue reports whether an unresolved complaint has been waiting
// longer than the SLA threshold. Resolved complaints are never overdue,
// regardless of age.
func IsOverdue(createdAt time.Time, status models.ComplaintStatus, resolvedAt *time.Time) bool {
	return IsOverdueAt(createdAt, status, resolvedAt, time.Now())
}

// IsOverdueAt is IsOverdue evaluated against the given clock.
func IsOverdueAt(createdAt time.Time, status models.ComplaintStatus, resolvedAt *time.Time, now time.Time) bool {
	if status == models.StatusResolved {
		return false
	}
	return now.Sub(createdAt).Hours() > config.SLAThresholdHours
}

// OverdueHours returns the magnitude of the SLA breach in hours, or 0
// when the complaint is still inside the SLA window.
func OverdueHours(createdAt time.Time) float64 {
	return OverdueHoursAt(createdAt, time.Now())
}

// OverdueHoursAt is OverdueHours evaluated against the given clock.
func OverdueHoursAt(createdAt, now time.Time) float64 {
	breach := now.Sub(createdAt).Hours() - config.SLAThresholdHours
	if breach < 0 {
		return 0
	}
	return breach
}

// ParseTimestamp parses an RFC 3339 timestamp as received on the API
// boundary, wrapping parse failures in ErrInvalidTimestamp.
func ParseTimestamp(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, ErrInvalidTimestamp
	}
	return t, nil
}
