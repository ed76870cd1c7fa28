package chathistory

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"rillshop/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSaver struct {
	mu      sync.Mutex
	saved   [][]models.ChatHistoryEntry
	err     error
	block   chan struct{}
	sawDone bool
}

func (f *fakeSaver) SaveChatHistory(ctx context.Context, entries []models.ChatHistoryEntry) error {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			f.mu.Lock()
			f.sawDone = true
			f.mu.Unlock()
			return ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, entries)

	return f.err
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var turn = []models.ChatHistoryEntry{
	{UserEmail: "Anna", ChatType: models.ChatTypeSupport, Message: "Привет", Role: models.ChatRoleUser},
	{UserEmail: "Anna", ChatType: models.ChatTypeSupport, Message: "Здравствуйте!", Role: models.ChatRoleAssistant},
}

func TestRecorder_Saves(t *testing.T) {
	saver := &fakeSaver{}
	r := NewRecorder(discard(), saver, time.Second)

	r.Record(context.Background(), turn)
	r.Wait()

	require.Len(t, saver.saved, 1)
	assert.Equal(t, turn, saver.saved[0])
}

func TestRecorder_SurvivesRequestCancel(t *testing.T) {
	saver := &fakeSaver{block: make(chan struct{})}
	r := NewRecorder(discard(), saver, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	r.Record(ctx, turn)
	cancel()
	close(saver.block)
	r.Wait()

	assert.Len(t, saver.saved, 1)
	assert.False(t, saver.sawDone)
}

func TestRecorder_Timeout(t *testing.T) {
	saver := &fakeSaver{block: make(chan struct{})}
	r := NewRecorder(discard(), saver, 20*time.Millisecond)

	r.Record(context.Background(), turn)
	r.Wait()

	assert.True(t, saver.sawDone)
	assert.Empty(t, saver.saved)
}

func TestRecorder_ErrorIsSwallowed(t *testing.T) {
	saver := &fakeSaver{err: errors.New("db down")}
	r := NewRecorder(discard(), saver, time.Second)

	r.Record(context.Background(), turn)
	r.Wait()

	assert.Len(t, saver.saved, 1)
}

func TestRecorder_Empty(t *testing.T) {
	saver := &fakeSaver{}
	r := NewRecorder(discard(), saver, time.Second)

	r.Record(context.Background(), nil)
	r.Wait()

	assert.Empty(t, saver.saved)
}
