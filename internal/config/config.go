package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds everything the server and extractor read from the environment.
// Defaults are tuned for local dev; secrets have no default on purpose.
type Config struct {
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8080"`

	// LLM backend. "ollama" talks to a local Ollama server, "gemini" uses
	// the Google AI API instead.
	LLMProvider  string `env:"LLM_PROVIDER" envDefault:"ollama"`
	OllamaURL    string `env:"OLLAMA_URL" envDefault:"http://localhost:11434"`
	OllamaModel  string `env:"OLLAMA_MODEL" envDefault:"mistral"`
	GeminiAPIKey string `env:"GEMINI_API_KEY"`

	// Community data. "file" reads the extracted JSON snapshot, "postgres"
	// queries the database the extractor fills.
	StoreBackend string `env:"STORE_BACKEND" envDefault:"file"`
	DataFile     string `env:"DATA_FILE" envDefault:"almashines_data.json"`
	DatabaseDSN  string `env:"DATABASE_DSN" envDefault:"host=localhost user=postgres password=password dbname=garjemarathi port=5432 sslmode=disable"`

	CommunityURL string `env:"COMMUNITY_URL" envDefault:"https://www.garjemarathi.com"`

	// Login gate.
	JWTSecret  string        `env:"JWT_SECRET"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	AccessCode string        `env:"COMMUNITY_ACCESS_CODE"`

	// AlmaShines extraction credentials (only needed by cmd/extract).
	AlmaShinesURL    string `env:"ALMASHINES_BASE_URL" envDefault:"https://www.almashines.com/data/api"`
	AlmaShinesKey    string `env:"ALMASHINES_API_KEY"`
	AlmaShinesSecret string `env:"ALMASHINES_API_SECRET"`
}

// Load reads .env (if present) and parses the environment into a Config.
func Load() (Config, error) {
	// Missing .env is fine in production, the variables come from the host.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
