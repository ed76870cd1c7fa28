package support

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	resp "rillshop/internal/lib/api/response"
	sl "rillshop/internal/lib/logger/sl"
	"rillshop/internal/models"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	UserMessage string               `json:"userMessage"`
	UserName    string               `json:"userName"`
	Messages    []models.ChatMessage `json:"messages" validate:"dive"`
}

type Response struct {
	Response string `json:"response"`
}

type Bot interface {
	Reply(ctx context.Context, userName, message string, history []models.ChatMessage) (string, error)
}

// New godoc
// @Summary      Чат поддержки
// @Description  Отвечает на вопрос покупателя о заказе, оплате, доставке и возврате.
// @Router       /api/ai/support [post]
func New(
	log *slog.Logger,
	validate *validator.Validate,
	bot Bot,
	aiTimeout time.Duration,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.support.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if r.Method != http.MethodPost {
			render.Status(r, http.StatusMethodNotAllowed)
			render.JSON(w, r, resp.Error("Method not allowed"))

			return
		}

		var req Request

		err := render.DecodeJSON(r.Body, &req)
		if err != nil && !errors.Is(err, io.EOF) {
			log.Error("Failed to decode request body", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Failed to decode request"))

			return
		}

		if req.UserMessage == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("User message required"))

			return
		}

		if err := validate.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Error("Invalid request", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), aiTimeout)
		defer cancel()

		answer, err := bot.Reply(ctx, req.UserName, req.UserMessage, req.Messages)
		if err != nil {
			log.Error("support bot failed", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("AI service error: "+err.Error()))

			return
		}

		log.Info("support answered")

		render.JSON(w, r, Response{Response: answer})
	}
}
