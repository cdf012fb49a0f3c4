package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"brdgenius-be/pkg/llm"

	"google.golang.org/genai"
)

type GeminiProvider struct {
	client *genai.Client
	model  string
}

var _ llm.LLMProvider = &GeminiProvider{}

// NewGeminiProvider talks to the Gemini API. baseURL is only set in tests.
func NewGeminiProvider(ctx context.Context, apiKey, model, baseURL string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: API key is required")
	}
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiProvider{client: client, model: model}, nil
}

func (g *GeminiProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	opts := llm.Apply(llm.Options{Model: g.model, Temperature: 0.7, MaxTokens: 8192}, options...)

	system, rest := llm.SplitSystem(history)
	contents := make([]*genai.Content, 0, len(rest))
	for _, msg := range rest {
		role := "user"
		if msg.Role == llm.RoleAssistant || msg.Role == "model" {
			role = "model"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: msg.Content}},
		})
	}

	temperature := float32(opts.Temperature)
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: int32(opts.MaxTokens),
	}
	if system != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}
	if opts.JSONResponse {
		config.ResponseMIMEType = "application/json"
	}

	result, err := g.client.Models.GenerateContent(ctx, opts.Model, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini API call failed: %w", err)
	}
	if result == nil || strings.TrimSpace(result.Text()) == "" {
		return "", llm.ErrEmptyResponse
	}
	return result.Text(), nil
}

func (g *GeminiProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return g.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, options...)
}
