package store

import (
	"encoding/json"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/garjemarathi/community-agent/internal/models"
)

// FileStore serves the community data out of the JSON snapshot, loaded once
// at startup. The data is immutable after load, so it is safe to share.
type FileStore struct {
	members []models.Member
	jobs    []models.JobPosting
}

// snapshotMember adds the raw fields we only need transiently. The embedded
// Member already carries the AlmaShines JSON tags.
type snapshotMember struct {
	models.Member
	WorkExperiences []json.RawMessage `json:"work_experiences"`
}

type snapshot struct {
	Users []snapshotMember    `json:"users"`
	Jobs  []models.JobPosting `json:"jobs"`
}

// OpenFile loads the snapshot. A missing or corrupt file is not fatal: the
// agent still runs, it just has nothing to search (same as the original tool).
func OpenFile(path string) *FileStore {
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Printf("⚠️ Data file %s not found, starting with empty dataset", path)
		return &FileStore{}
	}

	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		log.Printf("⚠️ Failed to parse data file %s: %v", path, err)
		return &FileStore{}
	}

	fs := &FileStore{jobs: snap.Jobs}
	for _, u := range snap.Users {
		m := u.Member
		m.WorkExperienceCount = len(u.WorkExperiences)
		fs.members = append(fs.members, m)
	}

	log.Printf("📦 Loaded %d members and %d jobs from %s", len(fs.members), len(fs.jobs), path)
	return fs
}

func (fs *FileStore) SearchMembers(query string, limit int) ([]models.Member, error) {
	limit = normalizeLimit(limit)
	q := strings.ToLower(strings.TrimSpace(query))

	var results []models.Member
	for _, m := range fs.members {
		if memberMatches(m, q) {
			results = append(results, m)
			if len(results) >= limit {
				break
			}
		}
	}
	return results, nil
}

func (fs *FileStore) SearchJobs(query string, limit int) ([]models.JobPosting, error) {
	limit = normalizeLimit(limit)
	q := strings.ToLower(strings.TrimSpace(query))

	var results []models.JobPosting
	for _, j := range fs.jobs {
		if jobMatches(j, q) {
			results = append(results, j)
			if len(results) >= limit {
				break
			}
		}
	}
	return results, nil
}

func (fs *FileStore) Stats() (Stats, error) {
	s := Stats{
		TotalMembers: len(fs.members),
		TotalJobs:    len(fs.jobs),
	}
	for _, m := range fs.members {
		if m.ProfilePic != "" {
			s.MembersWithPhotos++
		}
		if m.WorkExperienceCount > 0 {
			s.MembersWithExperience++
		}
	}
	return s, nil
}

func memberMatches(m models.Member, q string) bool {
	return strings.Contains(strings.ToLower(m.Name), q) ||
		strings.Contains(strings.ToLower(m.Email), q) ||
		strings.Contains(strconv.Itoa(m.Role), q) ||
		strings.Contains(strings.ToLower(m.City), q)
}

func jobMatches(j models.JobPosting, q string) bool {
	return strings.Contains(strings.ToLower(j.Designation), q) ||
		strings.Contains(strings.ToLower(j.Company), q) ||
		strings.Contains(strings.ToLower(j.Location), q) ||
		strings.Contains(strings.ToLower(j.Description), q)
}
