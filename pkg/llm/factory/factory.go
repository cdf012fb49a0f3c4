package factory

import (
	"context"
	"fmt"
	"time"

	"brdgenius-be/pkg/llm"
	"brdgenius-be/pkg/llm/claude"
	"brdgenius-be/pkg/llm/gemini"
	"brdgenius-be/pkg/llm/gpt"
	"brdgenius-be/pkg/llm/huggingface"
	"brdgenius-be/pkg/llm/ollama"
)

type Config struct {
	Provider string
	Model    string
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
}

var defaultModels = map[string]string{
	"gemini":      "gemini-2.0-flash",
	"openai":      "gpt-4o-mini",
	"anthropic":   "claude-sonnet-4-5",
	"ollama":      "llama3.1",
	"huggingface": "meta-llama/Llama-3.1-8B-Instruct",
}

func NewLLMProvider(ctx context.Context, cfg Config) (llm.LLMProvider, error) {
	model := cfg.Model
	if model == "" {
		model = defaultModels[cfg.Provider]
	}

	switch cfg.Provider {
	case "gemini":
		return gemini.NewGeminiProvider(ctx, cfg.APIKey, model, cfg.BaseURL)
	case "openai":
		return gpt.NewOpenAIProvider(cfg.APIKey, model)
	case "anthropic":
		return claude.NewAnthropicProvider(cfg.APIKey, model)
	case "ollama":
		return ollama.NewOllamaProvider(cfg.BaseURL, model, cfg.Timeout), nil
	case "huggingface":
		return huggingface.NewHuggingFaceProvider(cfg.APIKey, cfg.BaseURL, model, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
