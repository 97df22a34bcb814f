package factory

import (
	"fmt"

	"ragify-be/pkg/llm"
	"ragify-be/pkg/llm/gemini"
	"ragify-be/pkg/llm/huggingface"
	"ragify-be/pkg/llm/ollama"
)

type Params struct {
	Provider string // "ollama", "gemini" or "huggingface"
	Model    string
	BaseURL  string
	APIKey   string
}

func NewLLMProvider(p Params) (llm.LLMProvider, error) {
	switch p.Provider {
	case "ollama":
		return ollama.NewOllamaProvider(p.BaseURL, p.Model), nil
	case "gemini":
		if p.APIKey == "" {
			return nil, fmt.Errorf("gemini provider requires an API key")
		}
		return gemini.NewGeminiProvider(p.APIKey, p.BaseURL, p.Model), nil
	case "huggingface":
		return huggingface.NewHuggingFaceProvider(p.APIKey, p.BaseURL, p.Model), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", p.Provider)
	}
}
