package sla_test

import (
	"campusdesk/backend/internal/models"
	"campusdesk/backend/internal/sla"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestIsOverdue_ResolvedNeverOverdue verifies that resolved complaints
// are never reported as overdue, no matter how old they are.
func TestIsOverdue_ResolvedNeverOverdue(t *testing.T) {
	// Arrange
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	created := now.Add(-30 * 24 * time.Hour)
	resolved := now.Add(-time.Hour)

	// Act / Assert
	assert.False(t, sla.IsOverdueAt(created, models.StatusResolved, &resolved, now),
		"Resolved complaints must never be overdue")
}

// TestIsOverdue_Boundary checks the 48-hour boundary: exactly 48h is
// still inside the SLA, one second past it is a breach.
func TestIsOverdue_Boundary(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		created time.Time
		status  models.ComplaintStatus
		want    bool
	}{
		{"exactly 48h old", now.Add(-48 * time.Hour), models.StatusOpen, false},
		{"48h plus one second", now.Add(-48*time.Hour - time.Second), models.StatusOpen, true},
		{"brand new", now, models.StatusOpen, false},
		{"in progress past SLA", now.Add(-72 * time.Hour), models.StatusInProgress, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sla.IsOverdueAt(tt.created, tt.status, nil, now)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestOverdueHours_Monotonic verifies that the breach magnitude never
// decreases as elapsed time grows and is never negative.
func TestOverdueHours_Monotonic(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	created := now.Add(-24 * time.Hour)

	prev := -1.0
	for i := 0; i < 96; i++ {
		at := now.Add(time.Duration(i) * time.Hour)
		hours := sla.OverdueHoursAt(created, at)

		assert.GreaterOrEqual(t, hours, 0.0, "Breach hours must never be negative")
		assert.GreaterOrEqual(t, hours, prev, "Breach hours must be non-decreasing")
		prev = hours
	}
}

// TestOverdueHours_Magnitude checks the computed breach size.
func TestOverdueHours_Magnitude(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	// 60 hours old -> 12 hours past the 48h SLA
	created := now.Add(-60 * time.Hour)
	assert.InDelta(t, 12.0, sla.OverdueHoursAt(created, now), 0.001)

	// Inside the window -> 0
	created = now.Add(-10 * time.Hour)
	assert.Zero(t, sla.OverdueHoursAt(created, now))
}

// TestParseTimestamp verifies the boundary parse helper distinguishes
// bad input from valid timestamps.
func TestParseTimestamp(t *testing.T) {
	// Valid RFC 3339
	ts, err := sla.ParseTimestamp("2026-03-10T12:00:00Z")
	assert.NoError(t, err)
	assert.Equal(t, 2026, ts.Year())

	// Garbage input
	_, err = sla.ParseTimestamp("not-a-date")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, sla.ErrInvalidTimestamp), "Parse failures must carry ErrInvalidTimestamp")
}
