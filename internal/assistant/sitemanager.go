package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	sl "rillshop/internal/lib/logger/sl"
	"rillshop/internal/llm"
	"rillshop/internal/models"
	"rillshop/internal/observability/metrics"
)

var (
	siteReplyParams   = llm.Params{Temperature: 0.7, MaxTokens: 600}
	siteActionsParams = llm.Params{Temperature: 0.5, MaxTokens: 200}
)

var errEmptyActions = errors.New("empty actions list")

var fallbackActions = []string{"Обработал запрос", "Внес изменения на сайт"}

type SiteManagerReply struct {
	Response string
	Actions  []string
}

type SiteManager struct {
	log *slog.Logger
	llm llm.Completer
}

// NewSiteManager returns a site manager backed by completer, or by the
// canned table when completer is nil.
func NewSiteManager(log *slog.Logger, completer llm.Completer) *SiteManager {
	return &SiteManager{
		log: log,
		llm: completer,
	}
}

func (s *SiteManager) Reply(ctx context.Context, request string, history []models.ChatMessage) (SiteManagerReply, error) {
	const op = "assistant.SiteManager.Reply"

	if s.llm == nil {
		r := cannedSiteReplyFor(request)
		metrics.AssistantRepliesTotal.WithLabelValues("site_manager", modeCanned, metrics.ResultOK).Inc()

		return SiteManagerReply{
			Response: r.response,
			Actions:  append([]string(nil), r.actions...),
		}, nil
	}

	log := s.log.With(slog.String("op", op))

	reply, err := s.llm.Complete(ctx, conversation(siteManagerSystemPrompt, history, request), siteReplyParams)
	if err != nil {
		metrics.AssistantRepliesTotal.WithLabelValues("site_manager", modeAI, metrics.ResultError).Inc()
		return SiteManagerReply{}, fmt.Errorf("%s: %w", op, err)
	}

	raw, err := s.llm.Complete(ctx, []models.ChatMessage{
		{Role: "user", Content: actionsPrompt(request, reply)},
	}, siteActionsParams)
	if err != nil {
		metrics.AssistantRepliesTotal.WithLabelValues("site_manager", modeAI, metrics.ResultError).Inc()
		return SiteManagerReply{}, fmt.Errorf("%s: %w", op, err)
	}

	actions, err := parseActions(raw)
	if err != nil {
		log.Warn("model returned unparsable actions, using fallback", sl.Err(err))
		actions = append([]string(nil), fallbackActions...)
	}

	metrics.AssistantRepliesTotal.WithLabelValues("site_manager", modeAI, metrics.ResultOK).Inc()

	return SiteManagerReply{
		Response: reply,
		Actions:  actions,
	}, nil
}

// parseActions reads the JSON array of strings the model was asked for.
// Models like to wrap it in a markdown code fence, which is tolerated.
func parseActions(raw string) ([]string, error) {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}

	var actions []string
	if err := json.Unmarshal([]byte(s), &actions); err != nil {
		return nil, err
	}

	if len(actions) == 0 {
		return nil, errEmptyActions
	}

	return actions, nil
}
