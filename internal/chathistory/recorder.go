// Package chathistory stores support conversations off the request path.
package chathistory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	sl "rillshop/internal/lib/logger/sl"
	"rillshop/internal/models"
	"rillshop/internal/observability/metrics"
)

type Saver interface {
	SaveChatHistory(ctx context.Context, entries []models.ChatHistoryEntry) error
}

// Recorder writes chat turns in the background. A slow or unavailable
// database never delays the reply; failures are logged and counted.
type Recorder struct {
	log     *slog.Logger
	saver   Saver
	timeout time.Duration

	wg sync.WaitGroup
}

func NewRecorder(log *slog.Logger, saver Saver, timeout time.Duration) *Recorder {
	return &Recorder{
		log:     log,
		saver:   saver,
		timeout: timeout,
	}
}

// Record schedules entries for writing. The write outlives ctx's
// cancellation but keeps its values, and is bounded by the recorder timeout.
func (r *Recorder) Record(ctx context.Context, entries []models.ChatHistoryEntry) {
	if len(entries) == 0 {
		return
	}

	ctx = context.WithoutCancel(ctx)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		r.save(ctx, entries)
	}()
}

func (r *Recorder) save(ctx context.Context, entries []models.ChatHistoryEntry) {
	const op = "chathistory.Recorder.save"

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := r.saver.SaveChatHistory(ctx, entries); err != nil {
		metrics.ChatHistoryWritesTotal.WithLabelValues(metrics.ResultError).Inc()
		r.log.Warn("failed to save chat history",
			slog.String("op", op),
			slog.Int("entries", len(entries)),
			sl.Err(err),
		)

		return
	}

	metrics.ChatHistoryWritesTotal.WithLabelValues(metrics.ResultOK).Inc()
}

// Wait blocks until every scheduled write has finished.
func (r *Recorder) Wait() {
	r.wg.Wait()
}
