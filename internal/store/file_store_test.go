package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSnapshot = `{
  "users": [
    {
      "unique_profile_id": "u-001",
      "name": "Priya Deshpande",
      "primary_email": "priya@example.com",
      "role": 2,
      "current-city": "Pune",
      "current-state": "Maharashtra",
      "current-country": "India",
      "profile_url_linkedin": "https://linkedin.com/in/priyad",
      "profile_pic": "https://cdn.example.com/priya.jpg",
      "work_experiences": [{"company": "Infosys"}, {"company": "TCS"}]
    },
    {
      "unique_profile_id": "u-002",
      "name": "Anand Kulkarni",
      "primary_email": "anand@example.com",
      "role": 1,
      "current-city": "San Jose",
      "current-state": "CA",
      "current-country": "USA",
      "work_experiences": []
    },
    {
      "unique_profile_id": "u-003",
      "name": "Sneha Joshi",
      "primary_email": "sneha@example.com",
      "role": 2,
      "current-city": "Mumbai",
      "current-state": "Maharashtra",
      "current-country": "India"
    }
  ],
  "jobs": [
    {
      "designation": "Backend Engineer",
      "company": "StartupInc",
      "location": "Pune",
      "job_type": "Full-time",
      "description": "Go and Postgres work"
    },
    {
      "designation": "Data Analyst",
      "company": "BigCorp",
      "location": "Remote",
      "job_type": "Contract"
    }
  ]
}`

func writeSnapshot(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "almashines_data.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestOpenFileMissing(t *testing.T) {
	fs := OpenFile(filepath.Join(t.TempDir(), "nope.json"))

	stats, err := fs.Stats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalMembers)
	assert.Equal(t, 0, stats.TotalJobs)

	members, err := fs.SearchMembers("priya", 10)
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestOpenFileCorrupt(t *testing.T) {
	fs := OpenFile(writeSnapshot(t, "{not json"))

	stats, err := fs.Stats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalMembers)
}

func TestSearchMembers(t *testing.T) {
	fs := OpenFile(writeSnapshot(t, sampleSnapshot))

	// by name, case-insensitive
	members, err := fs.SearchMembers("PRIYA", 10)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "Priya Deshpande", members[0].Name)

	// by city
	members, err = fs.SearchMembers("san jose", 10)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "Anand Kulkarni", members[0].Name)

	// by email
	members, err = fs.SearchMembers("sneha@example.com", 10)
	require.NoError(t, err)
	require.Len(t, members, 1)

	// by role
	members, err = fs.SearchMembers("2", 10)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	// no match
	members, err = fs.SearchMembers("doesnotexist", 10)
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestSearchMembersLimit(t *testing.T) {
	fs := OpenFile(writeSnapshot(t, sampleSnapshot))

	// empty query matches everything, limit caps the result
	members, err := fs.SearchMembers("", 2)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	// zero limit falls back to the default
	members, err = fs.SearchMembers("", 0)
	require.NoError(t, err)
	assert.Len(t, members, 3)
}

func TestSearchJobs(t *testing.T) {
	fs := OpenFile(writeSnapshot(t, sampleSnapshot))

	jobs, err := fs.SearchJobs("pune", 10)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Backend Engineer", jobs[0].Designation)

	// matches on description text too
	jobs, err = fs.SearchJobs("postgres", 10)
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	// empty query returns all
	jobs, err = fs.SearchJobs("", 10)
	require.NoError(t, err)
	assert.Len(t, jobs, 2)
}

func TestStats(t *testing.T) {
	fs := OpenFile(writeSnapshot(t, sampleSnapshot))

	stats, err := fs.Stats()
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalMembers)
	assert.Equal(t, 2, stats.TotalJobs)
	assert.Equal(t, 1, stats.MembersWithPhotos)
	assert.Equal(t, 1, stats.MembersWithExperience)
}
