// Package assistant holds the two shop assistants: the site manager used by
// administrators and the customer support bot. Both answer from a fixed
// table when no model is configured.
package assistant

import "rillshop/internal/models"

// historyLimit is how many previous turns are sent to the model.
const historyLimit = 10

const (
	modeCanned = "canned"
	modeAI     = "ai"
)

func lastTurns(history []models.ChatMessage, n int) []models.ChatMessage {
	if len(history) <= n {
		return history
	}

	return history[len(history)-n:]
}

func conversation(systemPrompt string, history []models.ChatMessage, userMessage string) []models.ChatMessage {
	history = lastTurns(history, historyLimit)

	msgs := make([]models.ChatMessage, 0, len(history)+2)
	msgs = append(msgs, models.ChatMessage{Role: "system", Content: systemPrompt})
	msgs = append(msgs, history...)
	msgs = append(msgs, models.ChatMessage{Role: "user", Content: userMessage})

	return msgs
}
