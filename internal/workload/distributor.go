// Package workload distributes unassigned complaints across the admin
// roster. The plan builder is a pure single-pass round-robin over the
// least-loaded ordering; it deliberately does not reconsider in-flight
// assignments mid-pass and is not weighted by urgency beyond skipping
// low-urgency work.
package workload

import (
	"campusdesk/backend/internal/models"
	"campusdesk/backend/internal/storage"
	"log"
	"sort"
)

// Assignee is one roster entry with its current live load.
type Assignee struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	AssignedCount int    `json:"assigned_count"`
}

// Assignment pairs a complaint with the admin it should go to.
type Assignment struct {
	ComplaintID string `json:"complaint_id"`
	AssigneeID  string `json:"assignee_id"`
}

// Plan is the result of a balancing pass. An empty roster or an empty
// eligible set are expected conditions, reported through RosterSize and
// UnassignedCount rather than as errors.
type Plan struct {
	Assignments     []Assignment `json:"assignments"`
	UnassignedCount int          `json:"unassigned_count"`
	RosterSize      int          `json:"roster_size"`
}

// BuildPlan produces assignments for every unassigned, non-low-urgency
// complaint. Complaints are walked in input order and dealt round-robin
// to the roster sorted ascending by current load (ties keep roster
// order), so after applying the plan the max and min loads differ by at
// most one.
func BuildPlan(complaints []models.Complaint, roster []Assignee) Plan {
	var eligible []models.Complaint
	for _, c := range complaints {
		if c.AssignedTo == nil && c.Urgency != models.UrgencyLow {
			eligible = append(eligible, c)
		}
	}

	plan := Plan{
		UnassignedCount: len(eligible),
		RosterSize:      len(roster),
	}
	if len(eligible) == 0 || len(roster) == 0 {
		return plan
	}

	sorted := make([]Assignee, len(roster))
	copy(sorted, roster)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].AssignedCount < sorted[j].AssignedCount
	})

	plan.Assignments = make([]Assignment, 0, len(eligible))
	for i, c := range eligible {
		plan.Assignments = append(plan.Assignments, Assignment{
			ComplaintID: c.ID,
			AssigneeID:  sorted[i%len(sorted)].ID,
		})
	}
	return plan
}

// Report summarizes an apply pass. Assigned can be lower than Attempted
// when individual updates fail; failed complaints stay unassigned and
// are picked up by the next balancing run.
type Report struct {
	Attempted int      `json:"attempted"`
	Assigned  int      `json:"assigned"`
	FailedIDs []string `json:"failed_ids,omitempty"`
}

// Service applies assignment plans through the storage layer.
type Service struct {
	Storage storage.Storage
}

// NewService creates a new workload service.
func NewService(s storage.Storage) *Service {
	return &Service{Storage: s}
}

// Loads recomputes the current roster with live assignment counts.
func (s *Service) Loads() ([]Assignee, error) {
	admins, err := s.Storage.GetRoster(models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	counts, err := s.Storage.CountAssignedPerAdmin()
	if err != nil {
		return nil, err
	}

	roster := make([]Assignee, 0, len(admins))
	for _, a := range admins {
		roster = append(roster, Assignee{
			ID:            a.ID,
			Name:          a.FullName,
			AssignedCount: counts[a.ID],
		})
	}
	return roster, nil
}

// ApplyPlan issues one independent update per assignment. A failing
// update is logged and counted but never blocks the rest of the plan.
// Each successful assignment gets an activity-feed entry attributed to
// the triggering actor.
func (s *Service) ApplyPlan(plan Plan, actorID string) Report {
	report := Report{Attempted: len(plan.Assignments)}

	for _, a := range plan.Assignments {
		if err := s.Storage.AssignComplaint(a.ComplaintID, a.AssigneeID); err != nil {
			report.FailedIDs = append(report.FailedIDs, a.ComplaintID)
			continue
		}
		report.Assigned++

		entry := &models.AuditEntry{
			ActionType:  models.ActionAssigned,
			Description: "Complaint assigned by workload balancing",
			ComplaintID: a.ComplaintID,
			ActorID:     actorID,
		}
		if err := s.Storage.SaveAuditEntry(entry); err != nil {
			log.Printf("ERROR: Failed to log assignment of complaint %s: %v", a.ComplaintID, err)
		}
	}
	return report
}
