package llm

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"rillshop/internal/config"
	"rillshop/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOpenAIClient_Complete(t *testing.T) {
	var got struct {
		Model       string  `json:"model"`
		Temperature float32 `json:"temperature"`
		MaxTokens   int     `json:"max_tokens"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "finish_reason": "stop",
				"message": {"role": "assistant", "content": "Готово!"}}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 2, "total_tokens": 12}
		}`)
	}))
	defer srv.Close()

	c := NewOpenAIClient(discard(), config.OpenAI{APIKey: "sk-test", Model: "gpt-4o-mini", BaseURL: srv.URL + "/v1"})

	reply, err := c.Complete(context.Background(), []models.ChatMessage{
		{Role: "system", Content: "prompt"},
		{Role: "user", Content: "Привет"},
	}, Params{Temperature: 0.7, MaxTokens: 600})
	require.NoError(t, err)

	assert.Equal(t, "Готово!", reply)
	assert.Equal(t, "gpt-4o-mini", got.Model)
	assert.InDelta(t, 0.7, got.Temperature, 0.001)
	assert.Equal(t, 600, got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "Привет", got.Messages[1].Content)
}

func TestOpenAIClient_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id": "x", "object": "chat.completion", "choices": []}`)
	}))
	defer srv.Close()

	c := NewOpenAIClient(discard(), config.OpenAI{APIKey: "k", Model: "m", BaseURL: srv.URL + "/v1"})

	_, err := c.Complete(context.Background(), []models.ChatMessage{{Role: "user", Content: "x"}}, Params{})
	assert.ErrorIs(t, err, ErrNoChoices)
}

func TestOpenAIClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error": {"message": "Incorrect API key provided", "type": "invalid_request_error"}}`)
	}))
	defer srv.Close()

	c := NewOpenAIClient(discard(), config.OpenAI{APIKey: "bad", Model: "m", BaseURL: srv.URL + "/v1"})

	_, err := c.Complete(context.Background(), []models.ChatMessage{{Role: "user", Content: "x"}}, Params{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Incorrect API key provided")
}
