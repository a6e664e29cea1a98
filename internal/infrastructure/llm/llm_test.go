package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DailyBrief/internal/config"
)

func TestChatGPTComplete(t *testing.T) {
	t.Parallel()

	requests := make(chan chatRequest, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		var req chatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		requests <- req
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"overall_sentiment\":\"positive\"}"}}]}`))
	}))
	defer srv.Close()

	client := NewChatGPTClient(config.AnalysisConfig{
		Provider: config.ProviderOpenAI,
		Endpoint: srv.URL,
		Model:    "gpt-test",
		APIKey:   "sk-test",
	})

	reply, err := client.Complete(context.Background(), "analyze")
	require.NoError(t, err)
	assert.Equal(t, `{"overall_sentiment":"positive"}`, reply)
	assert.Equal(t, "gpt-test", client.Model())

	req := <-requests
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "system", req.Messages[0].Role)
	assert.Equal(t, DefaultSystemPrompt, req.Messages[0].Content)
	assert.Equal(t, "analyze", req.Messages[1].Content)
}

func TestChatGPTCompleteErrors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/fail":
			http.Error(w, "quota exceeded", http.StatusTooManyRequests)
		default:
			_, _ = w.Write([]byte(`{"choices":[]}`))
		}
	}))
	defer srv.Close()

	cfg := config.AnalysisConfig{Endpoint: srv.URL + "/fail", Model: "m", APIKey: "k"}
	_, err := NewChatGPTClient(cfg).Complete(context.Background(), "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")

	cfg.Endpoint = srv.URL + "/empty"
	_, err = NewChatGPTClient(cfg).Complete(context.Background(), "p")
	require.Error(t, err)

	_, err = NewChatGPTClient(config.AnalysisConfig{}).Complete(context.Background(), "p")
	require.Error(t, err)
}

func TestClaudeComplete(t *testing.T) {
	t.Parallel()

	paths := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths <- r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_01",
			"type": "message",
			"role": "assistant",
			"model": "claude-test",
			"content": [{"type": "text", "text": "{\"overall_sentiment\":\"neutral\"}"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 5}
		}`))
	}))
	defer srv.Close()

	client := NewClaudeClient(config.AnalysisConfig{
		Provider: config.ProviderClaude,
		Endpoint: srv.URL,
		Model:    "claude-test",
		APIKey:   "key",
	})

	reply, err := client.Complete(context.Background(), "analyze")
	require.NoError(t, err)
	assert.Equal(t, `{"overall_sentiment":"neutral"}`, reply)
	assert.Equal(t, "/v1/messages", <-paths)
}

func TestNewSelectsProvider(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	c, err := New(ctx, config.AnalysisConfig{Provider: config.ProviderClaude, APIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &ClaudeClient{}, c)
	assert.Equal(t, DefaultClaudeModel, c.Model())

	c, err = New(ctx, config.AnalysisConfig{Provider: config.ProviderOpenAI, APIKey: "k", Endpoint: "http://x", Model: "gpt"})
	require.NoError(t, err)
	assert.IsType(t, &ChatGPTClient{}, c)

	c, err = New(ctx, config.AnalysisConfig{Provider: config.ProviderGemini, APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, DefaultGeminiModel, c.Model())

	_, err = New(ctx, config.AnalysisConfig{Provider: "mystery"})
	require.Error(t, err)
}
