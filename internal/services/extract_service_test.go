package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/garjemarathi/community-agent/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeAlmaShines serves a paginated dataset the way the real API does:
// form-encoded requests, "data" payloads for users, "jobs" for jobs.
func fakeAlmaShines(t *testing.T, userCount, jobCount int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "test-key", r.Form.Get("apikey"))
		assert.Equal(t, "test-secret", r.Form.Get("apisecret"))

		stream, _ := strconv.Atoi(r.Form.Get("stream"))
		limit, _ := strconv.Atoi(r.Form.Get("limit"))
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/listUsers":
			page := pageOf(userCount, stream, limit, func(i int) string {
				return fmt.Sprintf(`{"unique_profile_id":"u-%03d","name":"Member %d","primary_email":"m%d@example.com","work_experiences":[{}]}`, i, i, i)
			})
			fmt.Fprintf(w, `{"success":1,"data":[%s]}`, page)
		case "/listJobs":
			page := pageOf(jobCount, stream, limit, func(i int) string {
				return fmt.Sprintf(`{"designation":"Role %d","company":"Co %d","location":"Pune","job_type":"Full-time"}`, i, i)
			})
			fmt.Fprintf(w, `{"success":1,"jobs":[%s]}`, page)
		case "/listRecentlyUpdatedUsers":
			fmt.Fprint(w, `{"success":1,"data":[]}`)
		case "/getFormDetails":
			fmt.Fprint(w, `{"success":1,"data":{"title":"Feedback"}}`)
		case "/listFormResponses":
			page := pageOf(3, stream, limit, func(i int) string {
				return fmt.Sprintf(`{"answer":"resp %d"}`, i)
			})
			fmt.Fprintf(w, `{"success":1,"data":[%s]}`, page)
		default:
			t.Errorf("unexpected endpoint %s", r.URL.Path)
		}
	}))
}

func pageOf(total, stream, limit int, record func(int) string) string {
	start := (stream - 1) * limit
	out := ""
	for i := start; i < total && i < start+limit; i++ {
		if out != "" {
			out += ","
		}
		out += record(i)
	}
	return out
}

func newTestExtractor(db *gorm.DB, baseURL string) *ExtractService {
	s := NewExtractService(db, baseURL, "test-key", "test-secret")
	// no need to be polite to httptest
	s.Limiter = rate.NewLimiter(rate.Inf, 1)
	return s
}

func TestExtractAllUsersPaginates(t *testing.T) {
	srv := fakeAlmaShines(t, 250, 0)
	defer srv.Close()

	users, err := newTestExtractor(nil, srv.URL).ExtractAllUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 250) // one full page of 200 + a short page of 50
}

func TestExtractAllJobs(t *testing.T) {
	srv := fakeAlmaShines(t, 0, 60)
	defer srv.Close()

	jobs, err := newTestExtractor(nil, srv.URL).ExtractAllJobs(context.Background())
	require.NoError(t, err)
	assert.Len(t, jobs, 60)
}

func TestExtractFormData(t *testing.T) {
	srv := fakeAlmaShines(t, 0, 0)
	defer srv.Close()

	form, err := newTestExtractor(nil, srv.URL).ExtractFormData(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 7, form.FormID)
	assert.Equal(t, 3, form.ResponseCount)
	assert.Contains(t, string(form.Details), "Feedback")
}

func TestSaveSnapshot(t *testing.T) {
	srv := fakeAlmaShines(t, 5, 2)
	defer srv.Close()

	ex := newTestExtractor(nil, srv.URL)
	require.NoError(t, ex.ExtractAll(context.Background(), nil))

	path := filepath.Join(t.TempDir(), "almashines_data.json")
	require.NoError(t, ex.SaveSnapshot(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var snap struct {
		Users []json.RawMessage `json:"users"`
		Jobs  []json.RawMessage `json:"jobs"`
	}
	require.NoError(t, json.Unmarshal(raw, &snap))
	assert.Len(t, snap.Users, 5)
	assert.Len(t, snap.Jobs, 2)
}

func TestPersist(t *testing.T) {
	srv := fakeAlmaShines(t, 5, 2)
	defer srv.Close()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Member{}, &models.JobPosting{}, &models.SyncState{}))

	ex := newTestExtractor(db, srv.URL)
	require.NoError(t, ex.ExtractAll(context.Background(), nil))
	require.NoError(t, ex.Persist())

	var memberCount, jobCount int64
	db.Model(&models.Member{}).Count(&memberCount)
	db.Model(&models.JobPosting{}).Count(&jobCount)
	assert.EqualValues(t, 5, memberCount)
	assert.EqualValues(t, 2, jobCount)

	var member models.Member
	require.NoError(t, db.Where("profile_id = ?", "u-000").First(&member).Error)
	assert.Equal(t, "Member 0", member.Name)
	assert.Equal(t, 1, member.WorkExperienceCount)

	// a second run upserts instead of duplicating
	require.NoError(t, ex.Persist())
	db.Model(&models.Member{}).Count(&memberCount)
	assert.EqualValues(t, 5, memberCount)

	var syncs int64
	db.Model(&models.SyncState{}).Count(&syncs)
	assert.EqualValues(t, 2, syncs)
}

func TestMakeRequestRetriesThenFails(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	ex := newTestExtractor(nil, srv.URL)
	_, err := ex.makeRequest(context.Background(), "listUsers", nil)
	assert.Error(t, err)
	assert.Equal(t, 3, attempts)
}
