package llm

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyOptions(t *testing.T) {
	got := Apply(Options{Temperature: 0.7, MaxTokens: 500},
		WithModel("gemma3"),
		WithSystemPrompt("be brief"),
		WithMaxTokens(64),
	)

	assert.Equal(t, Options{Temperature: 0.7, MaxTokens: 64, Model: "gemma3", SystemPrompt: "be brief"}, got)
}

func TestErrorCategories(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantQuota  bool
		wantSafety bool
	}{
		{"nil", nil, false, false},
		{"wrapped quota sentinel", fmt.Errorf("gemini: %w", ErrQuotaExceeded), true, false},
		{"status text 429", errors.New("status 429 too many requests"), true, false},
		{"chinese quota text", errors.New("API 配額已用盡"), true, false},
		{"wrapped safety sentinel", fmt.Errorf("gemini: %w", ErrContentBlocked), false, true},
		{"finish reason text", errors.New("response blocked: SAFETY"), false, true},
		{"generic", errors.New("connection refused"), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantQuota, IsQuotaError(tt.err))
			assert.Equal(t, tt.wantSafety, IsSafetyError(tt.err))
		})
	}
}
