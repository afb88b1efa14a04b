// Package store provides read access to the extracted community data, either
// from the almashines_data.json snapshot or from the database the extractor
// fills.
package store

import "github.com/garjemarathi/community-agent/internal/models"

const DefaultSearchLimit = 10

// Stats is the community summary block. JSON keys match what the original
// snapshot consumers expect.
type Stats struct {
	TotalMembers          int `json:"total_users"`
	TotalJobs             int `json:"total_jobs"`
	MembersWithPhotos     int `json:"users_with_profiles"`
	MembersWithExperience int `json:"users_with_work_experience"`
}

// Store is what the agent and the search endpoints query. Search is
// case-insensitive substring matching; an empty query matches everything.
type Store interface {
	// SearchMembers matches against name, email, role and city.
	SearchMembers(query string, limit int) ([]models.Member, error)
	// SearchJobs matches against designation, company, location and description.
	SearchJobs(query string, limit int) ([]models.JobPosting, error)
	Stats() (Stats, error)
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultSearchLimit
	}
	return limit
}
