package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "ollama")
	t.Setenv("ROUTER_SELECTION_WEIGHT", "not-a-number")

	cfg := Load()

	assert.Equal(t, "3000", cfg.App.Port)
	assert.Equal(t, 2, cfg.Router.SelectionWeight)
	assert.Equal(t, time.Hour, cfg.Router.ConversationTTL)
	assert.Equal(t, "http://localhost:11434", cfg.Ai.LLMBaseURL)
	assert.False(t, cfg.Ai.ExtractNewPTKB)
	assert.False(t, cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("LLM_BASE_URL", "")
	t.Setenv("GOOGLE_GEMINI_API_KEY", "g-key")
	t.Setenv("ROUTER_SELECTION_WEIGHT", "3")
	t.Setenv("CONVERSATION_TTL", "15m")
	t.Setenv("CHAT_EXTRACT_PTKB", "true")
	t.Setenv("GO_ENV", "production")

	cfg := Load()

	assert.Equal(t, 3, cfg.Router.SelectionWeight)
	assert.Equal(t, 15*time.Minute, cfg.Router.ConversationTTL)
	assert.True(t, cfg.Ai.ExtractNewPTKB)
	assert.Equal(t, "g-key", cfg.APIKey())
	assert.Empty(t, cfg.Ai.LLMBaseURL)
	assert.True(t, cfg.IsProduction())
}
