package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"naturenarrated/pkg/config"
	"naturenarrated/pkg/llm"
	"naturenarrated/pkg/request"
	"naturenarrated/pkg/tracker"
)

func newTestClient(t *testing.T, url, key string, tr *tracker.Tracker) *Client {
	t.Helper()
	cfg := config.DefaultConfig().LLM
	cfg.Key = key
	cfg.BaseURL = url
	hist := llm.NewHistory(filepath.Join(t.TempDir(), "llm.log"))
	return NewClient(cfg, hist, request.New(tr), tr)
}

func TestComplete_Success(t *testing.T) {
	var got map[string]any
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))

		_, _ = w.Write([]byte(`{
			"type": "message",
			"model": "claude-sonnet-4-20250514",
			"stop_reason": "end_turn",
			"content": [
				{"type": "server_tool_use", "id": "srvtoolu_1", "name": "web_search"},
				{"type": "text", "text": "<story>Along Rock Creek"},
				{"type": "text", "text": ", wood thrushes sing.</story>"}
			],
			"usage": {"input_tokens": 1234, "output_tokens": 56}
		}`))
	}))
	defer svr.Close()

	tr := tracker.New()
	c := newTestClient(t, svr.URL, "test-key", tr)

	resp, err := c.Complete(context.Background(), llm.Request{
		Name:      "story",
		System:    "You are a trail narrator.",
		Messages:  llm.UserText("Tell me a story."),
		MaxTokens: 4000,
		WebSearch: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "<story>Along Rock Creek, wood thrushes sing.</story>", resp.Text())
	assert.Equal(t, llm.Usage{InputTokens: 1234, OutputTokens: 56}, resp.Usage)
	assert.Equal(t, "end_turn", resp.StopReason)
	assert.Len(t, resp.Blocks, 3)

	// Request shape
	assert.Equal(t, "claude-sonnet-4-20250514", got["model"])
	assert.Equal(t, float64(4000), got["max_tokens"])
	assert.Equal(t, "You are a trail narrator.", got["system"])
	msgs := got["messages"].([]any)
	require.Len(t, msgs, 1)
	assert.Equal(t, "user", msgs[0].(map[string]any)["role"])

	tools := got["tools"].([]any)
	require.Len(t, tools, 1)
	tool := tools[0].(map[string]any)
	assert.Equal(t, "web_search_20250305", tool["type"])
	assert.Equal(t, "web_search", tool["name"])
	assert.Equal(t, float64(5), tool["max_uses"])

	temp, ok := got["temperature"].(float64)
	require.True(t, ok, "story intent should carry a sampled temperature")
	assert.LessOrEqual(t, temp, 1.0)

	stats := tr.Snapshot()["anthropic"]
	assert.Equal(t, int64(1234), stats.InputTokens)
	assert.Equal(t, int64(56), stats.OutputTokens)
}

func TestComplete_AssessmentUsesProfileAndNoTools(t *testing.T) {
	var got map[string]any
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"YES"}],"usage":{"input_tokens":80,"output_tokens":1}}`))
	}))
	defer svr.Close()

	c := newTestClient(t, svr.URL, "k", nil)
	resp, err := c.Complete(context.Background(), llm.Request{
		Name:      "assessment",
		Messages:  llm.UserText("YES or NO?"),
		MaxTokens: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, "YES", resp.Text())

	assert.Equal(t, "claude-3-5-haiku-20241022", got["model"])
	assert.Equal(t, float64(10), got["max_tokens"])
	_, hasTools := got["tools"]
	assert.False(t, hasTools)
	_, hasTemp := got["temperature"]
	assert.False(t, hasTemp)
	_, hasSystem := got["system"]
	assert.False(t, hasSystem)
}

func TestComplete_StatusError(t *testing.T) {
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"slow"}}`))
	}))
	defer svr.Close()

	c := newTestClient(t, svr.URL, "k", nil)
	_, err := c.Complete(context.Background(), llm.Request{Name: "story", Messages: llm.UserText("x"), MaxTokens: 10})
	require.Error(t, err)

	var se *request.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusTooManyRequests, se.StatusCode)
}

func TestComplete_MalformedBody(t *testing.T) {
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer svr.Close()

	c := newTestClient(t, svr.URL, "k", nil)
	_, err := c.Complete(context.Background(), llm.Request{Name: "story", Messages: llm.UserText("x"), MaxTokens: 10})
	assert.ErrorContains(t, err, "parsing response")
}

func TestComplete_EmptyContent(t *testing.T) {
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"model":"m","stop_reason":"max_tokens","content":[],"usage":{"input_tokens":120,"output_tokens":10}}`))
	}))
	defer svr.Close()

	c := newTestClient(t, svr.URL, "k", nil)
	resp, err := c.Complete(context.Background(), llm.Request{Name: "assessment", Messages: llm.UserText("x"), MaxTokens: 10})
	require.NoError(t, err)
	assert.Empty(t, resp.Text())
	assert.Equal(t, "max_tokens", resp.StopReason)
	assert.Equal(t, 120, resp.Usage.InputTokens)
}

func TestNotConfigured(t *testing.T) {
	called := false
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer svr.Close()

	c := newTestClient(t, svr.URL, "", nil)
	assert.ErrorIs(t, c.HealthCheck(context.Background()), ErrNotConfigured)

	_, err := c.Complete(context.Background(), llm.Request{Name: "story"})
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.False(t, called, "no request may be sent without a key")
}

func TestResolveModel(t *testing.T) {
	c := &Client{modelName: "default-model", profiles: map[string]string{"assessment": "small", "empty": ""}}

	assert.Equal(t, "small", c.resolveModel("assessment"))
	assert.Equal(t, "default-model", c.resolveModel("story"))
	assert.Equal(t, "default-model", c.resolveModel("empty"))
}
