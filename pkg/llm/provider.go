package llm

import (
	"context"
	"errors"
	"strings"
)

// Roles understood by every provider
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

var (
	// ErrQuotaExceeded is returned when the backend rejects the call for rate or quota reasons
	ErrQuotaExceeded = errors.New("llm quota exceeded")
	// ErrContentBlocked is returned when the backend's safety filter refused the prompt or answer
	ErrContentBlocked = errors.New("llm content blocked by safety filter")
	// ErrEmptyResponse is returned when the backend answered without any text
	ErrEmptyResponse = errors.New("llm returned an empty response")
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature  float64
	MaxTokens    int
	Model        string // Override default model
	SystemPrompt string
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithSystemPrompt(prompt string) Option {
	return func(o *Options) {
		o.SystemPrompt = prompt
	}
}

// Apply folds opts over defaults
func Apply(defaults Options, opts ...Option) Options {
	for _, o := range opts {
		o(&defaults)
	}
	return defaults
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	// Chat sends a chat history to the model and returns the response
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// Generate sends a single prompt to the model (convenience method)
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}

// IsQuotaError reports whether err is, or reads like, a quota/rate-limit failure.
// Text matching covers providers that only surface a status string.
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrQuotaExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"quota", "429", "rate limit", "resource_exhausted", "配額"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// IsSafetyError reports whether err is, or reads like, a safety-filter block
func IsSafetyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrContentBlocked) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"safety", "blocked", "安全過濾"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
