// Package grouping flags clusters of complaints sharing a keyword from
// a fixed vocabulary, as a cheap signal of a systemic issue. The match
// is deliberately naive substring containment: explainable triage
// hints, not semantic duplicate detection.
package grouping

import (
	"campusdesk/backend/internal/models"
	"sort"
	"strings"
	"time"
)

// issueKeywords is the vocabulary of recurring campus problems.
var issueKeywords = []string{
	"wifi", "internet", "network", "laptop", "computer", "projector",
	"ac", "air conditioner", "fan", "light", "electricity", "power",
	"hostel", "mess", "food", "water", "toilet", "bathroom",
	"mentor", "faculty", "teacher", "class", "schedule", "timetable",
	"lab", "library", "canteen", "parking", "security",
}

// Member is one complaint inside a duplicate group.
type Member struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	StudentID string `json:"student_id"`
	CreatedAt string `json:"created_at"`
}

// Group is a keyword bucket that crossed the report threshold.
type Group struct {
	Keyword string   `json:"keyword"`
	Count   int      `json:"count"`
	Members []Member `json:"members"`
}

// DetectDuplicateGroups buckets complaints by keyword containment over
// the lower-cased title+description. Buckets smaller than threshold are
// dropped; the rest are returned sorted by size descending, each with
// members sorted by recency descending.
func DetectDuplicateGroups(complaints []models.Complaint, threshold int) []Group {
	buckets := make(map[string][]models.Complaint)

	for _, c := range complaints {
		text := strings.ToLower(c.Title + " " + c.Description)
		for _, keyword := range issueKeywords {
			if !strings.Contains(text, keyword) {
				continue
			}
			// Deduplicate by complaint id within the bucket.
			already := false
			for _, existing := range buckets[keyword] {
				if existing.ID == c.ID {
					already = true
					break
				}
			}
			if !already {
				buckets[keyword] = append(buckets[keyword], c)
			}
		}
	}

	var groups []Group
	for keyword, members := range buckets {
		if len(members) < threshold {
			continue
		}
		sort.SliceStable(members, func(i, j int) bool {
			return members[i].CreatedAt.After(members[j].CreatedAt)
		})

		group := Group{
			Keyword: strings.ToUpper(keyword[:1]) + keyword[1:],
			Count:   len(members),
		}
		for _, m := range members {
			group.Members = append(group.Members, Member{
				ID:        m.ID,
				Title:     m.Title,
				StudentID: m.StudentID,
				CreatedAt: m.CreatedAt.Format(time.RFC3339),
			})
		}
		groups = append(groups, group)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Count > groups[j].Count
	})
	return groups
}
