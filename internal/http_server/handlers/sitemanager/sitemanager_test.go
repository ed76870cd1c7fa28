package sitemanager

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"rillshop/internal/assistant"
	"rillshop/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSiteManager struct {
	reply    assistant.SiteManagerReply
	err      error
	request  string
	history  []models.ChatMessage
	deadline bool
}

func (f *fakeSiteManager) Reply(ctx context.Context, request string, history []models.ChatMessage) (assistant.SiteManagerReply, error) {
	f.request = request
	f.history = history
	_, f.deadline = ctx.Deadline()

	return f.reply, f.err
}

func newHandler(sm SiteManager) http.HandlerFunc {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)), validator.New(), sm, time.Minute)
}

func TestNew_Success(t *testing.T) {
	sm := &fakeSiteManager{reply: assistant.SiteManagerReply{Response: "Готово", Actions: []string{"a", "b"}}}

	rec := httptest.NewRecorder()
	newHandler(sm).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/ai/site-manager",
		strings.NewReader(`{"userRequest":"сделай красиво","messages":[{"role":"assistant","content":"ок"}]}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"response":"Готово","actions":["a","b"],"updates":{}}`, rec.Body.String())
	assert.Equal(t, "сделай красиво", sm.request)
	assert.Equal(t, []models.ChatMessage{{Role: "assistant", Content: "ок"}}, sm.history)
	assert.True(t, sm.deadline)
}

func TestNew_AIError(t *testing.T) {
	sm := &fakeSiteManager{err: errors.New("upstream unavailable")}

	rec := httptest.NewRecorder()
	newHandler(sm).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/ai/site-manager",
		strings.NewReader(`{"userRequest":"цвет"}`)))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "AI service error: upstream unavailable", body["error"])
}

func TestNew_MethodNotAllowed(t *testing.T) {
	sm := &fakeSiteManager{}

	rec := httptest.NewRecorder()
	newHandler(sm).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ai/site-manager", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.JSONEq(t, `{"error":"Method not allowed"}`, rec.Body.String())
	assert.Empty(t, sm.request)
}
