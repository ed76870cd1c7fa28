package sitemanager

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"rillshop/internal/assistant"
	resp "rillshop/internal/lib/api/response"
	sl "rillshop/internal/lib/logger/sl"
	"rillshop/internal/models"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	UserRequest string               `json:"userRequest"`
	Messages    []models.ChatMessage `json:"messages" validate:"dive"`
}

type Response struct {
	Response string         `json:"response"`
	Actions  []string       `json:"actions"`
	Updates  map[string]any `json:"updates"`
}

type SiteManager interface {
	Reply(ctx context.Context, request string, history []models.ChatMessage) (assistant.SiteManagerReply, error)
}

// New godoc
// @Summary      Ассистент управления сайтом
// @Description  Принимает запрос администратора и историю диалога, возвращает
// @Description  описание выполненных действий. Сайт не изменяется.
// @Router       /api/ai/site-manager [post]
func New(
	log *slog.Logger,
	validate *validator.Validate,
	siteManager SiteManager,
	aiTimeout time.Duration,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.sitemanager.New"

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

		if req.UserRequest == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("User request required"))

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

		reply, err := siteManager.Reply(ctx, req.UserRequest, req.Messages)
		if err != nil {
			log.Error("site manager failed", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("AI service error: "+err.Error()))

			return
		}

		log.Info("site manager replied", slog.Int("actions", len(reply.Actions)))

		render.JSON(w, r, Response{
			Response: reply.Response,
			Actions:  reply.Actions,
			Updates:  map[string]any{},
		})
	}
}
