package assistant

import (
	"context"
	"fmt"
	"log/slog"

	"rillshop/internal/llm"
	"rillshop/internal/models"
	"rillshop/internal/observability/metrics"
)

const DefaultUserName = "Пользователь"

var supportReplyParams = llm.Params{Temperature: 0.7, MaxTokens: 500}

type HistoryRecorder interface {
	Record(ctx context.Context, entries []models.ChatHistoryEntry)
}

type Support struct {
	log      *slog.Logger
	llm      llm.Completer
	recorder HistoryRecorder
}

// NewSupport returns the support bot. A nil completer selects the canned
// answers; a nil recorder disables chat history.
func NewSupport(log *slog.Logger, completer llm.Completer, recorder HistoryRecorder) *Support {
	return &Support{
		log:      log,
		llm:      completer,
		recorder: recorder,
	}
}

func (s *Support) Reply(ctx context.Context, userName, message string, history []models.ChatMessage) (string, error) {
	const op = "assistant.Support.Reply"

	if userName == "" {
		userName = DefaultUserName
	}

	if s.llm == nil {
		metrics.AssistantRepliesTotal.WithLabelValues("support", modeCanned, metrics.ResultOK).Inc()

		return cannedSupportAnswerFor(userName, message), nil
	}

	reply, err := s.llm.Complete(ctx, conversation(supportSystemPrompt, history, message), supportReplyParams)
	if err != nil {
		metrics.AssistantRepliesTotal.WithLabelValues("support", modeAI, metrics.ResultError).Inc()
		return "", fmt.Errorf("%s: %w", op, err)
	}

	metrics.AssistantRepliesTotal.WithLabelValues("support", modeAI, metrics.ResultOK).Inc()
	s.log.Debug("support reply generated", slog.String("op", op), slog.Int("history", len(history)))

	if s.recorder != nil {
		// The storefront sends the display name here; that is what the
		// history has always been keyed by.
		s.recorder.Record(ctx, []models.ChatHistoryEntry{
			{UserEmail: userName, ChatType: models.ChatTypeSupport, Message: message, Role: models.ChatRoleUser},
			{UserEmail: userName, ChatType: models.ChatTypeSupport, Message: reply, Role: models.ChatRoleAssistant},
		})
	}

	return reply, nil
}
