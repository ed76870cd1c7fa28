// Package llm talks to the chat-completion model behind both assistants.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"rillshop/internal/config"
	sl "rillshop/internal/lib/logger/sl"
	"rillshop/internal/models"

	"github.com/sashabaranov/go-openai"
)

var ErrNoChoices = errors.New("model returned no choices")

// Params are fixed per call site.
type Params struct {
	Temperature float32
	MaxTokens   int
}

// Completer returns the model's reply to a conversation.
type Completer interface {
	Complete(ctx context.Context, messages []models.ChatMessage, params Params) (string, error)
}

type OpenAIClient struct {
	log    *slog.Logger
	client *openai.Client
	model  string
}

func NewOpenAIClient(log *slog.Logger, cfg config.OpenAI) *OpenAIClient {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	log.Info("initializing openai client", slog.String("model", cfg.Model))

	return &OpenAIClient{
		log:    log,
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, messages []models.ChatMessage, params Params) (string, error) {
	const op = "llm.OpenAIClient.Complete"

	log := c.log.With(slog.String("op", op), slog.String("model", c.model))

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    make([]openai.ChatCompletionMessage, 0, len(messages)),
		Temperature: params.Temperature,
		MaxTokens:   params.MaxTokens,
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		log.Error("chat completion failed", sl.Err(err))

		return "", fmt.Errorf("%s: %w", op, err)
	}

	if len(resp.Choices) == 0 {
		log.Warn("model returned no choices")

		return "", fmt.Errorf("%s: %w", op, ErrNoChoices)
	}

	log.Debug("chat completion received",
		slog.String("finish_reason", string(resp.Choices[0].FinishReason)),
		slog.Int("total_tokens", resp.Usage.TotalTokens),
	)

	return resp.Choices[0].Message.Content, nil
}
