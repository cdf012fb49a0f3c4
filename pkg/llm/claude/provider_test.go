package claude

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"brdgenius-be/pkg/llm"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, reply string, capture *map[string]any) *AnthropicProvider {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/v1/messages"), r.URL.Path)
		if capture != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(capture))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)

	p, err := NewAnthropicProvider("key", "claude-sonnet-4-5", option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
	require.NoError(t, err)
	return p
}

func TestChat(t *testing.T) {
	var body map[string]any
	p := newTestProvider(t, `{
		"id": "msg_1", "type": "message", "role": "assistant", "model": "claude-sonnet-4-5",
		"content": [{"type": "text", "text": "{\"solutions\":"}, {"type": "text", "text": "[]}"}],
		"stop_reason": "end_turn",
		"usage": {"input_tokens": 3, "output_tokens": 4}
	}`, &body)

	out, err := p.Chat(context.Background(), []llm.Message{
		{Role: llm.RoleSystem, Content: "Be concise."},
		{Role: llm.RoleUser, Content: "Suggest."},
	}, llm.WithJSONResponse(), llm.WithMaxTokens(256))

	require.NoError(t, err)
	assert.Equal(t, `{"solutions":[]}`, out)
	assert.Equal(t, float64(256), body["max_tokens"])
	system, ok := body["system"].([]any)
	require.True(t, ok)
	require.Len(t, system, 1)
	assert.Contains(t, system[0].(map[string]any)["text"], "Be concise.")
}

func TestChatEmpty(t *testing.T) {
	p := newTestProvider(t, `{
		"id": "msg_1", "type": "message", "role": "assistant", "model": "claude-sonnet-4-5",
		"content": [], "stop_reason": "end_turn",
		"usage": {"input_tokens": 3, "output_tokens": 0}
	}`, nil)

	_, err := p.Generate(context.Background(), "hi")
	assert.True(t, errors.Is(err, llm.ErrEmptyResponse))
}
