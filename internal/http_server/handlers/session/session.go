package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"rillshop/internal/auth"
	resp "rillshop/internal/lib/api/response"
	sl "rillshop/internal/lib/logger/sl"
	"rillshop/internal/models"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type Response struct {
	resp.Response
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type Resolver interface {
	Session(ctx context.Context, tok string) (models.Session, error)
}

// New tells the storefront who a login token belongs to.
func New(
	log *slog.Logger,
	resolver Resolver,
) func(http.ResponseWriter, *http.Request, models.AuthRequest) {
	return func(w http.ResponseWriter, r *http.Request, body models.AuthRequest) {
		const op = "handlers.session.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if body.Token == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Token required"))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		s, err := resolver.Session(ctx, body.Token)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidSession) {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, resp.Error("Invalid or expired session"))

				return
			}

			log.Error("failed to resolve session", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		render.JSON(w, r, Response{
			Response: resp.OK(),
			Name:     s.Name,
			Email:    s.Email,
			Role:     s.Role,
		})
	}
}
