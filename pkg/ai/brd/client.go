package brd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"brdgenius-be/pkg/llm"

	"github.com/go-playground/validator/v10"
)

// ErrMalformedOutput is returned when the model answer does not match the expected shape.
var ErrMalformedOutput = errors.New("malformed model output")

// SolutionSuggester proposes candidate solutions for a problem statement.
type SolutionSuggester interface {
	Suggest(ctx context.Context, problemStatement string) ([]string, error)
}

// DocumentGenerator writes the BRD body in Markdown.
type DocumentGenerator interface {
	Generate(ctx context.Context, in GenerateInput) (string, error)
}

type GenerateInput struct {
	ProblemStatement string `validate:"required"`
	ChosenSolution   string `validate:"required"`
	FrontendStack    string `validate:"required"`
	BackendStack     string
	DatabaseStack    string
	// Template is optional. When empty the built-in outline is used.
	Template string
}

type suggestOutput struct {
	Solutions []string `json:"solutions" validate:"required"`
}

type generateOutput struct {
	Document string `json:"document" validate:"required"`
}

type stackLine struct {
	Label string
	Value string
}

// Client implements both BRD operations on top of any llm.LLMProvider.
// Each call is a single attempt.
type Client struct {
	provider llm.LLMProvider
	prompts  *Prompts
	validate *validator.Validate
}

var (
	_ SolutionSuggester = (*Client)(nil)
	_ DocumentGenerator = (*Client)(nil)
)

func NewClient(provider llm.LLMProvider, prompts *Prompts) *Client {
	return &Client{
		provider: provider,
		prompts:  prompts,
		validate: validator.New(),
	}
}

func (c *Client) Suggest(ctx context.Context, problemStatement string) ([]string, error) {
	problemStatement = strings.TrimSpace(problemStatement)
	if problemStatement == "" {
		return nil, errors.New("suggest solutions: problem statement is empty")
	}

	user, err := render(c.prompts.suggestUser, struct{ ProblemStatement string }{problemStatement})
	if err != nil {
		return nil, err
	}

	raw, err := c.provider.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: c.prompts.suggest.System},
		{Role: llm.RoleUser, Content: user},
	},
		llm.WithJSONResponse(),
		llm.WithTemperature(c.prompts.suggest.Temperature),
		llm.WithMaxTokens(c.prompts.suggest.MaxTokens),
	)
	if err != nil {
		return nil, fmt.Errorf("suggest solutions: %w", err)
	}

	out, err := parseSuggestions(raw)
	if err != nil {
		return nil, fmt.Errorf("suggest solutions: %w", err)
	}
	if err := c.validate.Struct(out); err != nil {
		return nil, fmt.Errorf("suggest solutions: %w: %v", ErrMalformedOutput, err)
	}

	solutions := make([]string, 0, len(out.Solutions))
	for _, s := range out.Solutions {
		if s = strings.TrimSpace(s); s != "" {
			solutions = append(solutions, s)
		}
	}
	return solutions, nil
}

func (c *Client) Generate(ctx context.Context, in GenerateInput) (string, error) {
	if err := c.validate.Struct(in); err != nil {
		return "", fmt.Errorf("generate document: invalid input: %w", err)
	}

	data := struct {
		ProblemStatement string
		ChosenSolution   string
		Stack            []stackLine
		Template         string
	}{
		ProblemStatement: in.ProblemStatement,
		ChosenSolution:   in.ChosenSolution,
		Stack:            stackLines(in),
	}

	tpl := c.prompts.outline
	if strings.TrimSpace(in.Template) != "" {
		tpl = c.prompts.withTemplate
		data.Template = FillKnownPlaceholders(in.Template, in)
	}
	user, err := render(tpl, data)
	if err != nil {
		return "", err
	}

	raw, err := c.provider.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: c.prompts.generate.System},
		{Role: llm.RoleUser, Content: user},
	},
		llm.WithJSONResponse(),
		llm.WithTemperature(c.prompts.generate.Temperature),
		llm.WithMaxTokens(c.prompts.generate.MaxTokens),
	)
	if err != nil {
		return "", fmt.Errorf("generate document: %w", err)
	}

	doc, err := c.parseDocument(raw)
	if err != nil {
		return "", fmt.Errorf("generate document: %w", err)
	}
	return doc, nil
}

func stackLines(in GenerateInput) []stackLine {
	if in.BackendStack == "" && in.DatabaseStack == "" {
		return []stackLine{{Label: "Technology Stack", Value: in.FrontendStack}}
	}
	return []stackLine{
		{Label: "Frontend Stack", Value: orNA(in.FrontendStack)},
		{Label: "Backend Stack", Value: orNA(in.BackendStack)},
		{Label: "Database Stack", Value: orNA(in.DatabaseStack)},
	}
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Not Applicable (N/A)"
	}
	return s
}

// FillKnownPlaceholders substitutes the triple-brace placeholders whose values
// are already known. {{projectName}} and free-form instructions are left for the model.
func FillKnownPlaceholders(tpl string, in GenerateInput) string {
	return strings.NewReplacer(
		"{{{problemStatement}}}", in.ProblemStatement,
		"{{{chosenSolution}}}", in.ChosenSolution,
		"{{{frontendStack}}}", orNA(in.FrontendStack),
		"{{{backendStack}}}", orNA(in.BackendStack),
		"{{{databaseStack}}}", orNA(in.DatabaseStack),
	).Replace(tpl)
}

func parseSuggestions(raw string) (suggestOutput, error) {
	body := stripFences(raw)
	start := strings.IndexAny(body, "{[")
	if start < 0 {
		return suggestOutput{}, fmt.Errorf("%w: no JSON found", ErrMalformedOutput)
	}
	body = body[start:]

	// a bare array is accepted as well
	if body[0] == '[' {
		var list []string
		if err := json.NewDecoder(strings.NewReader(body)).Decode(&list); err != nil {
			return suggestOutput{}, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
		}
		if list == nil {
			list = []string{}
		}
		return suggestOutput{Solutions: list}, nil
	}

	var out suggestOutput
	if err := json.NewDecoder(strings.NewReader(body)).Decode(&out); err != nil {
		return suggestOutput{}, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	return out, nil
}

// parseDocument prefers {"document": "..."} and falls back to treating the
// whole reply as Markdown.
func (c *Client) parseDocument(raw string) (string, error) {
	body := stripFences(raw)
	if body == "" {
		return "", llm.ErrEmptyResponse
	}
	if !strings.HasPrefix(body, "{") {
		return body, nil
	}

	var out generateOutput
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		return body, nil
	}
	out.Document = strings.TrimSpace(out.Document)
	if err := c.validate.Struct(out); err != nil {
		return "", fmt.Errorf("%w: document is empty", ErrMalformedOutput)
	}
	return out.Document, nil
}

// stripFences removes a surrounding ``` block, with or without a language tag.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = ""
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
