// Package analysis provides functionality for analyzing the complaint
// backlog. It scores complaints by urgency and aggregates counts for
// the admin stats view.
package analysis

import (
	"campusdesk/backend/internal/config"
	"campusdesk/backend/internal/models"
)

// GetWeight returns the backlog weight for a given urgency.
// It returns 0 if the urgency is not recognized.
func GetWeight(urgency models.ComplaintUrgency) int {
	return config.UrgencyWeights[string(urgency)]
}

// Stats aggregates the complaint set for the admin dashboard.
type Stats struct {
	Total        int                               `json:"total"`
	ByStatus     map[models.ComplaintStatus]int    `json:"by_status"`
	ByCategory   map[models.ComplaintCategory]int  `json:"by_category"`
	BacklogScore int                               `json:"backlog_score"`
}

// ComputeStats derives counts by status and category plus the
// urgency-weighted backlog score over the live (unresolved) complaints.
func ComputeStats(complaints []models.Complaint) Stats {
	stats := Stats{
		Total:      len(complaints),
		ByStatus:   make(map[models.ComplaintStatus]int),
		ByCategory: make(map[models.ComplaintCategory]int),
	}
	for _, c := range complaints {
		stats.ByStatus[c.Status]++
		stats.ByCategory[c.Category]++
		if c.IsLive() {
			stats.BacklogScore += GetWeight(c.Urgency)
		}
	}
	return stats
}
