package gpt

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"brdgenius-be/pkg/llm"

	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenAIProviderRequiresKey(t *testing.T) {
	_, err := NewOpenAIProvider("", "gpt-4o-mini")
	assert.Error(t, err)
}

func TestChat(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/responses"), r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "resp_1",
			"object": "response",
			"status": "completed",
			"output": [{
				"type": "message",
				"id": "msg_1",
				"role": "assistant",
				"status": "completed",
				"content": [{"type": "output_text", "text": "# Business Requirements", "annotations": []}]
			}]
		}`))
	}))
	defer srv.Close()

	p, err := NewOpenAIProvider("sk-test", "gpt-4o-mini", option.WithBaseURL(srv.URL+"/"), option.WithMaxRetries(0))
	require.NoError(t, err)

	out, err := p.Chat(context.Background(), []llm.Message{
		{Role: llm.RoleSystem, Content: "You write BRDs."},
		{Role: llm.RoleUser, Content: "Write one."},
	})
	require.NoError(t, err)
	assert.Equal(t, "# Business Requirements", out)
	assert.Equal(t, "gpt-4o-mini", body["model"])
	assert.Equal(t, "You write BRDs.", body["instructions"])
	assert.Equal(t, "Write one.", body["input"])
}

func TestFlatten(t *testing.T) {
	assert.Equal(t, "only", flatten([]llm.Message{{Role: "user", Content: "only"}}))
	assert.Equal(t, "User: a\n\nAssistant: b", flatten([]llm.Message{
		{Role: "user", Content: "a"},
		{Role: "assistant", Content: "b"},
	}))
}
