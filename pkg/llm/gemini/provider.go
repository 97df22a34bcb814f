package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ragify-be/pkg/llm"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-2.5-flash"
	MaxRetry       = 3
)

type GeminiProvider struct {
	apiKey    string
	baseURL   string
	model     string
	client    *http.Client
	maxRetry  int
	retryWait func(attempt int) time.Duration
}

var _ llm.LLMProvider = &GeminiProvider{}

func NewGeminiProvider(apiKey, baseURL, model string) *GeminiProvider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &GeminiProvider{
		apiKey:   apiKey,
		baseURL:  strings.TrimRight(baseURL, "/"),
		model:    model,
		client:   &http.Client{Timeout: 120 * time.Second},
		maxRetry: MaxRetry,
		retryWait: func(attempt int) time.Duration {
			return time.Duration(1<<attempt) * time.Second
		},
	}
}

// WithRetry overrides the attempt count and the wait between attempts
func (p *GeminiProvider) WithRetry(attempts int, wait func(attempt int) time.Duration) *GeminiProvider {
	if attempts < 1 {
		attempts = 1
	}
	p.maxRetry = attempts
	p.retryWait = wait
	return p
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type generateRequest struct {
	Contents          []content        `json:"contents"`
	SystemInstruction *content         `json:"systemInstruction,omitempty"`
	GenerationConfig  generationConfig `json:"generationConfig"`
	SafetySettings    []safetySetting  `json:"safetySettings,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

var relaxedSafety = []safetySetting{
	{Category: "HARM_CATEGORY_HARASSMENT", Threshold: "BLOCK_NONE"},
	{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: "BLOCK_NONE"},
	{Category: "HARM_CATEGORY_SEXUALLY_EXPLICIT", Threshold: "BLOCK_NONE"},
	{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: "BLOCK_NONE"},
}

func (p *GeminiProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := llm.Apply(llm.Options{Temperature: 0, MaxTokens: 500, Model: p.model}, opts...)

	payload := generateRequest{
		Contents: make([]content, 0, len(history)),
		GenerationConfig: generationConfig{
			Temperature:     options.Temperature,
			MaxOutputTokens: options.MaxTokens,
		},
		SafetySettings: relaxedSafety,
	}
	if options.SystemPrompt != "" {
		payload.SystemInstruction = &content{Parts: []part{{Text: options.SystemPrompt}}}
	}
	for _, msg := range history {
		role := "user"
		if msg.Role == llm.RoleAssistant || msg.Role == "model" {
			role = "model"
		}
		payload.Contents = append(payload.Contents, content{Role: role, Parts: []part{{Text: msg.Content}}})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < p.maxRetry; attempt++ {
		text, err := p.do(ctx, options.Model, body)
		if err == nil {
			return text, nil
		}
		lastErr = err

		// Same input gets blocked again
		if errors.Is(err, llm.ErrContentBlocked) || ctx.Err() != nil {
			return "", err
		}
		if attempt < p.maxRetry-1 && p.retryWait != nil {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(p.retryWait(attempt)):
			}
		}
	}
	return "", lastErr
}

func (p *GeminiProvider) do(ctx context.Context, model string, body []byte) (string, error) {
	url := fmt.Sprintf("%s/models/%s:generateContent", p.baseURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-goog-api-key", p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if res.StatusCode == http.StatusTooManyRequests {
		return "", fmt.Errorf("gemini: %w: %s", llm.ErrQuotaExceeded, string(resBody))
	}
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini: status %d, body: %s", res.StatusCode, string(resBody))
	}

	var out generateResponse
	if err := json.Unmarshal(resBody, &out); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if out.PromptFeedback != nil && out.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("gemini: %w: prompt %s", llm.ErrContentBlocked, out.PromptFeedback.BlockReason)
	}
	if len(out.Candidates) == 0 {
		return "", fmt.Errorf("gemini: %w: no candidates returned", llm.ErrContentBlocked)
	}

	candidate := out.Candidates[0]
	switch candidate.FinishReason {
	case "SAFETY", "RECITATION", "PROHIBITED_CONTENT", "BLOCKLIST":
		return "", fmt.Errorf("gemini: %w: finish reason %s", llm.ErrContentBlocked, candidate.FinishReason)
	}

	var sb strings.Builder
	for _, pt := range candidate.Content.Parts {
		sb.WriteString(pt.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("gemini: %w", llm.ErrEmptyResponse)
	}
	return text, nil
}

func (p *GeminiProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}
