package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyOptions(t *testing.T) {
	opts := Apply(Options{Temperature: 0.7, MaxTokens: 500},
		WithTemperature(0.2),
		WithModel("gemini-2.0-flash"),
		WithJSONResponse(),
	)

	assert.Equal(t, 0.2, opts.Temperature)
	assert.Equal(t, 500, opts.MaxTokens)
	assert.Equal(t, "gemini-2.0-flash", opts.Model)
	assert.True(t, opts.JSONResponse)
}

func TestSplitSystem(t *testing.T) {
	system, rest := SplitSystem([]Message{
		{Role: RoleSystem, Content: "Be brief."},
		{Role: RoleUser, Content: "Hello"},
		{Role: RoleSystem, Content: "Answer in JSON."},
		{Role: RoleAssistant, Content: "Hi"},
	})

	assert.Equal(t, "Be brief.\n\nAnswer in JSON.", system)
	assert.Equal(t, []Message{
		{Role: RoleUser, Content: "Hello"},
		{Role: RoleAssistant, Content: "Hi"},
	}, rest)
}
