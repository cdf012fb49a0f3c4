package claude

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"brdgenius-be/pkg/llm"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type AnthropicProvider struct {
	client anthropic.Client
	model  anthropic.Model
}

var _ llm.LLMProvider = &AnthropicProvider{}

func NewAnthropicProvider(apiKey, model string, opts ...option.RequestOption) (*AnthropicProvider, error) {
	if apiKey == "" {
		return nil, errors.New("anthropic: API key is required")
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &AnthropicProvider{
		client: anthropic.NewClient(opts...),
		model:  anthropic.Model(model),
	}, nil
}

func (a *AnthropicProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	opts := llm.Apply(llm.Options{Model: string(a.model), Temperature: 0.7, MaxTokens: 8192}, options...)

	system, rest := llm.SplitSystem(history)
	if opts.JSONResponse {
		system = strings.TrimSpace(system + "\n\nRespond with a single JSON document and nothing else.")
	}

	messages := make([]anthropic.MessageParam, 0, len(rest))
	for _, msg := range rest {
		block := anthropic.NewTextBlock(msg.Content)
		if msg.Role == llm.RoleAssistant || msg.Role == "model" {
			messages = append(messages, anthropic.NewAssistantMessage(block))
			continue
		}
		messages = append(messages, anthropic.NewUserMessage(block))
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(opts.Model),
		Messages:    messages,
		MaxTokens:   int64(opts.MaxTokens),
		Temperature: anthropic.Float(opts.Temperature),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic API call failed: %w", err)
	}

	var out strings.Builder
	for i := range resp.Content {
		block := &resp.Content[i]
		if block.Type == "text" {
			out.WriteString(block.AsText().Text)
		}
	}
	if strings.TrimSpace(out.String()) == "" {
		return "", llm.ErrEmptyResponse
	}
	return out.String(), nil
}

func (a *AnthropicProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return a.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, options...)
}
