package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/garjemarathi/community-agent/internal/models"
	"github.com/garjemarathi/community-agent/internal/store"
)

// Responder is the slice of LLMService the agent needs. Kept as an interface
// so tests can plug in a fake model.
type Responder interface {
	Generate(ctx context.Context, prompt, model string) (string, error)
}

// AgentService answers chat messages. Structured questions (member search,
// job search, stats, community info) are answered straight from the data
// store; everything else goes to the LLM.
type AgentService struct {
	Store     store.Store
	LLM       Responder
	Community CommunityInfo
}

func NewAgentService(st store.Store, llm Responder, community CommunityInfo) *AgentService {
	return &AgentService{Store: st, LLM: llm, Community: community}
}

// Intent trigger phrases. Detection is substring based, same rule cascade
// idea as matching an email to a company: first rule that fires wins.
var (
	memberSearchPhrases = []string{
		"search for member", "look for member", "find member",
		"search member", "find user", "search user",
	}
	jobSearchPhrases = []string{
		"search for job", "show me jobs", "find job",
		"search job", "show job", "list jobs",
		"job opening", "job opportunity",
	}
	// Only the explicit search verbs get stripped from the query; "job
	// opening" style phrases are detection-only.
	jobStripPhrases = []string{
		"search for job", "show me jobs", "find job",
		"search job", "show job", "list jobs",
	}
	statsPhrases = []string{
		"how many", "total", "statistics", "stats", "count",
		"number of members", "member count",
	}
	aboutPhrases = []string{
		"about community", "about garje", "what is garje",
		"community info", "community details", "who are we",
	}
)

// Answer handles one user message and always returns something readable.
func (a *AgentService) Answer(ctx context.Context, message, model string) string {
	msg := strings.ToLower(strings.TrimSpace(message))

	// --- RULE 1: MEMBER SEARCH ---
	if containsAny(msg, memberSearchPhrases) {
		query := stripPhrases(msg, memberSearchPhrases)
		if query == "" {
			return "Please provide a name, email, or role to search for members."
		}
		members, err := a.Store.SearchMembers(query, store.DefaultSearchLimit)
		if err != nil {
			log.Printf("❌ Member search failed: %v", err)
			return "Sorry, I couldn't search the member data right now."
		}
		return FormatMembers(members)
	}

	// --- RULE 2: JOB SEARCH ---
	if containsAny(msg, jobSearchPhrases) {
		query := stripPhrases(msg, jobStripPhrases)
		// Empty query lists everything (up to the cap)
		jobs, err := a.Store.SearchJobs(query, store.DefaultSearchLimit)
		if err != nil {
			log.Printf("❌ Job search failed: %v", err)
			return "Sorry, I couldn't search the job data right now."
		}
		return FormatJobs(jobs)
	}

	// --- RULE 3: STATS ---
	if containsAny(msg, statsPhrases) {
		stats, err := a.Store.Stats()
		if err != nil {
			log.Printf("❌ Stats lookup failed: %v", err)
			return "Sorry, I couldn't load the community statistics right now."
		}
		return FormatStats(stats)
	}

	// --- RULE 4: ABOUT THE COMMUNITY ---
	if containsAny(msg, aboutPhrases) {
		return fmt.Sprintf(`**%s**

%s

This is a global community platform for Marathi professionals and enthusiasts. We connect members through networking, job opportunities, and community events.

For more information, visit: https://www.garjemarathi.com`,
			a.Community.Name, a.Community.Description)
	}

	// --- FALLBACK: ASK THE LLM ---
	stats, err := a.Store.Stats()
	if err != nil {
		stats = store.Stats{}
	}
	prompt := fmt.Sprintf(`User asked: %q

Available data:
- %d community members
- %d job opportunities

Please provide a helpful response based on this context.`,
		message, stats.TotalMembers, stats.TotalJobs)

	answer, err := a.LLM.Generate(ctx, prompt, model)
	if err != nil {
		log.Printf("❌ LLM call failed: %v", err)
		return "I'm having trouble connecting to the AI service. Please try again later."
	}
	return answer
}

func containsAny(msg string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

func stripPhrases(msg string, phrases []string) string {
	for _, p := range phrases {
		msg = strings.ReplaceAll(msg, p, "")
	}
	return strings.TrimSpace(msg)
}

// FormatMembers renders search results as a markdown block.
func FormatMembers(members []models.Member) string {
	if len(members) == 0 {
		return "No members found matching your search."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d member(s):\n\n", len(members))
	for _, m := range members {
		fmt.Fprintf(&sb, "**%s**\n", m.Name)
		fmt.Fprintf(&sb, "- 📧 %s\n", m.Email)
		if m.Phone != "" {
			fmt.Fprintf(&sb, "- 📱 %s\n", m.Phone)
		}
		if m.LinkedIn != "" {
			fmt.Fprintf(&sb, "- 🔗 %s\n", m.LinkedIn)
		}
		if m.Designation != "" && m.Company != "" {
			fmt.Fprintf(&sb, "- 💼 %s at %s\n", m.Designation, m.Company)
		}
		if loc := joinLocation(m.City, m.State, m.Country); loc != "" {
			fmt.Fprintf(&sb, "- 📍 %s\n", loc)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// FormatJobs renders job results as a markdown block.
func FormatJobs(jobs []models.JobPosting) string {
	if len(jobs) == 0 {
		return "No job opportunities found matching your search."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d job opportunity/ies:\n\n", len(jobs))
	for _, j := range jobs {
		fmt.Fprintf(&sb, "**%s** at %s\n", j.Designation, j.Company)
		fmt.Fprintf(&sb, "- 📍 %s\n", j.Location)
		fmt.Fprintf(&sb, "- 📋 Type: %s\n", j.JobType)
		if j.Description != "" {
			fmt.Fprintf(&sb, "- 📝 %s...\n", truncateRunes(j.Description, 200))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// FormatStats renders the community summary block.
func FormatStats(stats store.Stats) string {
	return fmt.Sprintf(`**Community Statistics:**

- 👥 Total Members: %d
- 💼 Job Opportunities: %d
- 📸 Profiles with Photos: %d
- 💼 Members with Work Experience: %d`,
		stats.TotalMembers, stats.TotalJobs,
		stats.MembersWithPhotos, stats.MembersWithExperience)
}

// truncateRunes cuts s to at most n characters. Descriptions are often
// Devanagari, so slicing by bytes would split a rune mid-sequence.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func joinLocation(parts ...string) string {
	var present []string
	for _, p := range parts {
		if p != "" {
			present = append(present, p)
		}
	}
	return strings.Join(present, ", ")
}
