package analysis_test

import (
	"campusdesk/backend/internal/analysis"
	"campusdesk/backend/internal/models"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestGetWeight verifies the urgency weighting, including the zero
// fallback for unknown values.
func TestGetWeight(t *testing.T) {
	assert.Equal(t, 1, analysis.GetWeight(models.UrgencyLow))
	assert.Equal(t, 20, analysis.GetWeight(models.UrgencyUrgent))
	assert.Zero(t, analysis.GetWeight("whatever"), "Unknown urgency weighs nothing")
}

// TestComputeStats checks the aggregate counts and that resolved
// complaints do not contribute to the backlog score.
func TestComputeStats(t *testing.T) {
	// Arrange
	complaints := []models.Complaint{
		{Status: models.StatusOpen, Category: models.CategoryTechnical, Urgency: models.UrgencyUrgent},
		{Status: models.StatusInProgress, Category: models.CategoryTechnical, Urgency: models.UrgencyMedium},
		{Status: models.StatusResolved, Category: models.CategoryFacilities, Urgency: models.UrgencyUrgent},
	}

	// Act
	stats := analysis.ComputeStats(complaints)

	// Assert
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.ByCategory[models.CategoryTechnical])
	assert.Equal(t, 1, stats.ByStatus[models.StatusResolved])
	assert.Equal(t, 23, stats.BacklogScore, "Backlog counts only live complaints (20 urgent + 3 medium)")
}
