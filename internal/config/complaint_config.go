package config

import "time"

const (
	// SLA
	SLAThresholdHours = 48

	// Reaper
	DefaultStaleDays   = 5
	ReaperLockKey      = "reaper:lock"
	ReaperLockTTL      = 10 * time.Minute

	// Duplicate detection
	DefaultDuplicateThreshold = 3
	DuplicateReportCacheKey   = "duplicates:report"
	DuplicateReportCacheTTL   = 5 * time.Minute

	// Auth
	TokenTTL  = 72 * time.Hour
	JWTIssuer = "campusdesk-service"
)

// UrgencyWeights scores a complaint's urgency for the weighted backlog
// metric on the admin stats endpoint.
var UrgencyWeights = map[string]int{
	"low":    1,
	"medium": 3,
	"high":   8,
	"urgent": 20,
}
