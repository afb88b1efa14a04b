package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "ollama", cfg.LLMProvider)
	assert.Equal(t, "http://localhost:11434", cfg.OllamaURL)
	assert.Equal(t, "mistral", cfg.OllamaModel)
	assert.Equal(t, "file", cfg.StoreBackend)
	assert.Equal(t, "almashines_data.json", cfg.DataFile)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "https://www.almashines.com/data/api", cfg.AlmaShinesURL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9999")
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("STORE_BACKEND", "postgres")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.ListenAddr)
	assert.Equal(t, "gemini", cfg.LLMProvider)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "postgres", cfg.StoreBackend)
}
