package gpt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"brdgenius-be/pkg/llm"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

// OpenAIProvider uses the Responses API of the official SDK.
type OpenAIProvider struct {
	client openai.Client
	model  string
}

var _ llm.LLMProvider = &OpenAIProvider{}

func NewOpenAIProvider(apiKey, model string, opts ...option.RequestOption) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, errors.New("openai: API key is required")
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &OpenAIProvider{
		client: openai.NewClient(opts...),
		model:  model,
	}, nil
}

func (o *OpenAIProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	opts := llm.Apply(llm.Options{Model: o.model, MaxTokens: 8192}, options...)

	system, rest := llm.SplitSystem(history)
	if opts.JSONResponse {
		system = strings.TrimSpace(system + "\n\nRespond with a single JSON document.")
	}

	params := responses.ResponseNewParams{
		Model:           opts.Model,
		MaxOutputTokens: openai.Int(int64(opts.MaxTokens)),
		Input:           responses.ResponseNewParamsInputUnion{OfString: openai.String(flatten(rest))},
	}
	if system != "" {
		params.Instructions = openai.String(system)
	}
	if opts.Temperature > 0 {
		params.Temperature = openai.Float(opts.Temperature)
	}

	resp, err := o.client.Responses.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai API call failed: %w", err)
	}
	out := resp.OutputText()
	if strings.TrimSpace(out) == "" {
		return "", llm.ErrEmptyResponse
	}
	return out, nil
}

func (o *OpenAIProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return o.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, options...)
}

// flatten renders a conversation as plain input text. A lone user message is sent as is.
func flatten(history []llm.Message) string {
	if len(history) == 1 {
		return history[0].Content
	}
	var b strings.Builder
	for i, msg := range history {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if msg.Role != "" {
			b.WriteString(strings.ToUpper(msg.Role[:1]) + msg.Role[1:])
			b.WriteString(": ")
		}
		b.WriteString(msg.Content)
	}
	return b.String()
}
