package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/garjemarathi/community-agent/internal/config"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"
)

// ValidModels is what the chat API accepts in the "model" field.
var ValidModels = []string{"mistral", "glm-4.7-flash"}

func IsValidModel(name string) bool {
	for _, m := range ValidModels {
		if m == name {
			return true
		}
	}
	return false
}

type LLMService struct {
	// Hold the client here so we don't recreate it on every request
	Client llms.Model
	Model  string

	systemPrompt string
	ollamaURL    string
	httpClient   *http.Client
}

// NewLLMService initializes the configured provider. For Ollama it first asks
// the local server which models are actually installed and picks the best one.
func NewLLMService(cfg config.Config, community CommunityInfo) (*LLMService, error) {
	ctx := context.Background()

	s := &LLMService{
		systemPrompt: buildSystemPrompt(community),
		ollamaURL:    cfg.OllamaURL,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
	}

	switch cfg.LLMProvider {
	case "ollama":
		s.Model = s.AvailableModel(ctx, cfg.OllamaModel)
		llm, err := ollama.New(
			ollama.WithServerURL(cfg.OllamaURL),
			ollama.WithModel(s.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama client: %w", err)
		}
		s.Client = llm

	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is empty, did you load the .env file?")
		}
		llm, err := googleai.New(ctx,
			googleai.WithAPIKey(cfg.GeminiAPIKey),
			googleai.WithDefaultModel("gemini-2.5-flash"),
		)
		if err != nil {
			return nil, fmt.Errorf("create gemini client: %w", err)
		}
		s.Client = llm
		s.Model = "gemini-2.5-flash"

	default:
		return nil, fmt.Errorf("unknown LLM provider %q (want ollama or gemini)", cfg.LLMProvider)
	}

	log.Printf("🤖 LLM ready: provider=%s model=%s", cfg.LLMProvider, s.Model)
	return s, nil
}

// Generate runs one system+user round trip and returns the trimmed answer.
// model overrides the default for this one call when non-empty.
func (s *LLMService) Generate(ctx context.Context, userPrompt, model string) (string, error) {
	msgs := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, s.systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userPrompt),
	}

	opts := []llms.CallOption{llms.WithTemperature(0.7)}
	if model != "" && model != s.Model {
		opts = append(opts, llms.WithModel(model))
	}

	resp, err := s.Client.GenerateContent(ctx, msgs, opts...)
	if err != nil {
		return "", fmt.Errorf("llm call: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Content) == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return strings.TrimSpace(resp.Choices[0].Content), nil
}

type ollamaTagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// AvailableModel asks Ollama what is installed and prefers mistral, then
// glm-4.7-flash, then whatever came back first. Falls back to preferred when
// the server can't be reached (the actual call will surface the error later).
func (s *LLMService) AvailableModel(ctx context.Context, preferred string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.ollamaURL+"/api/tags", nil)
	if err != nil {
		return preferred
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		log.Printf("⚠️ Failed to list Ollama models: %v", err)
		return preferred
	}
	defer resp.Body.Close()

	var tags ollamaTagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		log.Printf("⚠️ Failed to decode Ollama model list: %v", err)
		return preferred
	}

	var available []string
	for _, m := range tags.Models {
		// "mistral:latest" -> "mistral"
		available = append(available, strings.SplitN(m.Name, ":", 2)[0])
	}

	for _, want := range ValidModels {
		for _, have := range available {
			if have == want {
				return want
			}
		}
	}

	if len(available) > 0 {
		log.Printf("⚠️ No preferred model installed. Available: %v", available)
		return available[0]
	}
	return preferred
}

func buildSystemPrompt(community CommunityInfo) string {
	contact := community.ContactEmail
	if contact == "" {
		contact = "Not available"
	}

	return fmt.Sprintf(`You are a helpful AI assistant for the %s community.

Community Information:
- Name: %s
- Description: %s
- Contact Email: %s

Your Role:
1. Answer questions about the community based on the data
2. Help users find other members
3. Help users find job opportunities
4. Provide community statistics
5. Be friendly, professional, and helpful

Data Sources:
- Member information from almashines_data.json
- Job postings from almashines_data.json
- Community info from garjemarathi.com

When responding:
- Be concise and to the point
- Use bullet points for lists
- Include relevant details like names, locations, and roles
- If you don't know something, say so honestly
- Don't make up information

Format your responses in markdown for better readability.`,
		community.Name, community.Name, community.Description, contact)
}
