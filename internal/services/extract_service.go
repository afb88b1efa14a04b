package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/garjemarathi/community-agent/internal/models"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	userPageSize = 200 // max the API allows
	jobPageSize  = 50
	formPageSize = 100
)

// ExtractService pulls the community dataset out of the AlmaShines API.
// Results are kept in memory until SaveSnapshot writes the JSON file the
// agent consumes; Persist additionally mirrors them into the database.
type ExtractService struct {
	DB         *gorm.DB // may be nil for snapshot-only runs
	BaseURL    string
	APIKey     string
	APISecret  string
	HTTPClient *http.Client

	// The API is shared community infrastructure, be polite to it
	Limiter *rate.Limiter

	users []json.RawMessage
	jobs  []json.RawMessage
	forms []FormData
}

// FormData bundles a form definition with all its responses.
type FormData struct {
	FormID        int               `json:"form_id"`
	Details       json.RawMessage   `json:"details"`
	Responses     []json.RawMessage `json:"responses"`
	ResponseCount int               `json:"response_count"`
}

type almaShinesResponse struct {
	Success int             `json:"success"`
	Data    json.RawMessage `json:"data"`
	Jobs    json.RawMessage `json:"jobs"`
	Error   string          `json:"error"`
}

func NewExtractService(db *gorm.DB, baseURL, apiKey, apiSecret string) *ExtractService {
	return &ExtractService{
		DB:         db,
		BaseURL:    baseURL,
		APIKey:     apiKey,
		APISecret:  apiSecret,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		Limiter:    rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
	}
}

// makeRequest posts a form-encoded call to one API endpoint, with the
// credentials folded in. Retries with backoff before giving up.
func (s *ExtractService) makeRequest(ctx context.Context, endpoint string, params map[string]string) (almaShinesResponse, error) {
	if err := s.Limiter.Wait(ctx); err != nil {
		return almaShinesResponse{}, err
	}

	form := url.Values{}
	form.Set("apikey", s.APIKey)
	form.Set("apisecret", s.APISecret)
	for k, v := range params {
		form.Set(k, v)
	}

	var parsed almaShinesResponse
	err := retry(3, 1*time.Second, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			s.BaseURL+"/"+endpoint, strings.NewReader(form.Encode()))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := s.HTTPClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("%s returned status %d", endpoint, resp.StatusCode)
		}
		return json.NewDecoder(resp.Body).Decode(&parsed)
	})
	if err != nil {
		return almaShinesResponse{}, fmt.Errorf("calling %s: %w", endpoint, err)
	}
	return parsed, nil
}

// ExtractAllUsers pages through listUsers until a short page comes back.
func (s *ExtractService) ExtractAllUsers(ctx context.Context) ([]json.RawMessage, error) {
	log.Println("🔄 Extracting users...")
	users, err := s.extractPaged(ctx, "listUsers", userPageSize, nil)
	if err != nil {
		return nil, err
	}
	s.users = users
	log.Printf("✅ Total users extracted: %d", len(users))
	return users, nil
}

// ExtractAllJobs pages through listJobs. The jobs endpoint puts its payload
// under "jobs" instead of "data".
func (s *ExtractService) ExtractAllJobs(ctx context.Context) ([]json.RawMessage, error) {
	log.Println("🔄 Extracting jobs...")
	var jobs []json.RawMessage
	for stream := 1; ; stream++ {
		resp, err := s.makeRequest(ctx, "listJobs", map[string]string{
			"stream": strconv.Itoa(stream),
			"limit":  strconv.Itoa(jobPageSize),
		})
		if err != nil {
			// Keep whatever pages we already have, same as the original tool
			log.Printf("   ✗ Error: %v", err)
			break
		}
		if resp.Success != 1 || len(resp.Jobs) == 0 {
			if resp.Error != "" {
				log.Printf("   ✗ Error: %s", resp.Error)
			}
			break
		}

		var page []json.RawMessage
		if err := json.Unmarshal(resp.Jobs, &page); err != nil {
			return nil, fmt.Errorf("decode jobs page %d: %w", stream, err)
		}
		jobs = append(jobs, page...)
		log.Printf("   ✓ Fetched %d jobs (stream %d)", len(page), stream)

		if len(page) < jobPageSize {
			break
		}
	}
	s.jobs = jobs
	log.Printf("✅ Total jobs extracted: %d", len(jobs))
	return jobs, nil
}

// ExtractRecentlyUpdatedUsers asks for profiles touched in the last N hours.
func (s *ExtractService) ExtractRecentlyUpdatedUsers(ctx context.Context, hours int) ([]json.RawMessage, error) {
	log.Printf("🔄 Extracting recently updated users (last %d hours)...", hours)
	resp, err := s.makeRequest(ctx, "listRecentlyUpdatedUsers", map[string]string{
		"stream":              "1",
		"limit":               strconv.Itoa(userPageSize),
		"updatedInLastXHours": strconv.Itoa(hours),
	})
	if err != nil {
		return nil, err
	}

	var users []json.RawMessage
	if resp.Success == 1 && len(resp.Data) > 0 {
		if err := json.Unmarshal(resp.Data, &users); err != nil {
			return nil, fmt.Errorf("decode recently updated users: %w", err)
		}
	}
	log.Printf("✅ Recently updated users: %d", len(users))
	return users, nil
}

// ExtractFormData fetches a form definition plus every response page.
func (s *ExtractService) ExtractFormData(ctx context.Context, formID int) (FormData, error) {
	log.Printf("🔄 Extracting form %d...", formID)

	details, err := s.makeRequest(ctx, "getFormDetails", map[string]string{
		"form_id": strconv.Itoa(formID),
	})
	if err != nil {
		return FormData{}, err
	}
	if details.Success != 1 {
		return FormData{}, fmt.Errorf("failed to get details for form %d", formID)
	}

	responses, err := s.extractPaged(ctx, "listFormResponses", formPageSize, map[string]string{
		"form_id": strconv.Itoa(formID),
	})
	if err != nil {
		return FormData{}, err
	}

	log.Printf("✅ Form %d: %d responses", formID, len(responses))
	return FormData{
		FormID:        formID,
		Details:       details.Data,
		Responses:     responses,
		ResponseCount: len(responses),
	}, nil
}

// extractPaged walks a "data"-keyed endpoint with the stream counter until a
// short page signals the end.
func (s *ExtractService) extractPaged(ctx context.Context, endpoint string, pageSize int, extra map[string]string) ([]json.RawMessage, error) {
	var all []json.RawMessage
	for stream := 1; ; stream++ {
		params := map[string]string{
			"stream": strconv.Itoa(stream),
			"limit":  strconv.Itoa(pageSize),
		}
		for k, v := range extra {
			params[k] = v
		}

		resp, err := s.makeRequest(ctx, endpoint, params)
		if err != nil {
			log.Printf("   ✗ Error: %v", err)
			break
		}
		if resp.Success != 1 || len(resp.Data) == 0 {
			if resp.Error != "" {
				log.Printf("   ✗ Error: %s", resp.Error)
			}
			break
		}

		var page []json.RawMessage
		if err := json.Unmarshal(resp.Data, &page); err != nil {
			return nil, fmt.Errorf("decode %s page %d: %w", endpoint, stream, err)
		}
		all = append(all, page...)
		log.Printf("   ✓ Fetched %d records (stream %d)", len(page), stream)

		if len(page) < pageSize {
			break
		}
	}
	return all, nil
}

// ExtractAll runs the full pipeline: users, jobs, recently updated, and any
// requested forms.
func (s *ExtractService) ExtractAll(ctx context.Context, formIDs []int) error {
	log.Println("🚀 Starting AlmaShines Data Extraction")

	if _, err := s.ExtractAllUsers(ctx); err != nil {
		return err
	}
	if _, err := s.ExtractAllJobs(ctx); err != nil {
		return err
	}
	if _, err := s.ExtractRecentlyUpdatedUsers(ctx, 720); err != nil {
		log.Printf("⚠️ Recently updated users fetch failed: %v", err)
	}

	s.forms = nil
	for _, id := range formIDs {
		form, err := s.ExtractFormData(ctx, id)
		if err != nil {
			log.Printf("⚠️ Skipping form %d: %v", id, err)
			continue
		}
		s.forms = append(s.forms, form)
	}

	log.Println("✅ Extraction Complete!")
	return nil
}

// memberRecord decodes a raw user plus the work experience list we only need
// to count.
type memberRecord struct {
	models.Member
	WorkExperiences []json.RawMessage `json:"work_experiences"`
}

// Persist mirrors the extracted users and jobs into the database. Members are
// upserted by profile id; jobs have no stable key, so the table is replaced.
func (s *ExtractService) Persist() error {
	if s.DB == nil {
		return fmt.Errorf("no database configured")
	}

	var members []models.Member
	for _, raw := range s.users {
		var rec memberRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			log.Printf("⚠️ Skipping unparseable user record: %v", err)
			continue
		}
		if rec.ProfileID == "" {
			continue
		}
		m := rec.Member
		m.WorkExperienceCount = len(rec.WorkExperiences)
		members = append(members, m)
	}

	if len(members) > 0 {
		err := s.DB.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "profile_id"}},
			UpdateAll: true,
		}).CreateInBatches(members, 100).Error
		if err != nil {
			return fmt.Errorf("upsert members: %w", err)
		}
	}

	var jobs []models.JobPosting
	for _, raw := range s.jobs {
		var j models.JobPosting
		if err := json.Unmarshal(raw, &j); err != nil {
			log.Printf("⚠️ Skipping unparseable job record: %v", err)
			continue
		}
		jobs = append(jobs, j)
	}

	if err := s.DB.Where("1 = 1").Delete(&models.JobPosting{}).Error; err != nil {
		return fmt.Errorf("clear jobs: %w", err)
	}
	if len(jobs) > 0 {
		if err := s.DB.CreateInBatches(jobs, 100).Error; err != nil {
			return fmt.Errorf("insert jobs: %w", err)
		}
	}

	state := models.SyncState{
		MemberCount: len(members),
		JobCount:    len(jobs),
		Source:      s.BaseURL,
	}
	if err := s.DB.Create(&state).Error; err != nil {
		return fmt.Errorf("record sync state: %w", err)
	}

	log.Printf("💾 Persisted %d members and %d jobs", len(members), len(jobs))
	return nil
}

// SaveSnapshot writes the JSON file the agent reads.
func (s *ExtractService) SaveSnapshot(path string) error {
	out := map[string]any{
		"users": rawOrEmpty(s.users),
		"jobs":  rawOrEmpty(s.jobs),
	}
	if len(s.forms) > 0 {
		out["forms"] = s.forms
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	log.Printf("💾 Data saved to %s", path)
	return nil
}

func rawOrEmpty(raw []json.RawMessage) []json.RawMessage {
	if raw == nil {
		return []json.RawMessage{}
	}
	return raw
}

// retry executes a function with exponential backoff
func retry(attempts int, sleep time.Duration, f func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = f(); err == nil {
			return nil
		}
		if i < attempts-1 {
			log.Printf("⚠️ API Error: %v. Retrying in %v...", err, sleep)
			time.Sleep(sleep)
			sleep *= 2
		}
	}
	return fmt.Errorf("failed after %d attempts: %w", attempts, err)
}
