package login

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
	"github.com/go-playground/validator/v10"
)

type Request struct {
	Email string `validate:"required"`
	Pass  string `validate:"required"`
}

type Response struct {
	resp.Response
	Token string `json:"token"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type Authenticator interface {
	Login(ctx context.Context, email, pass string) (auth.LoginResult, error)
}

func New(
	log *slog.Logger,
	validate *validator.Validate,
	authenticator Authenticator,
) func(http.ResponseWriter, *http.Request, models.AuthRequest) {
	return func(w http.ResponseWriter, r *http.Request, body models.AuthRequest) {
		const op = "handlers.login.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		req := Request{
			Email: auth.NormalizeEmail(body.Email),
			Pass:  body.Password,
		}

		if err := validate.Struct(req); err != nil {
			log.Info("Invalid request", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Email and password required"))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		res, err := authenticator.Login(ctx, req.Email, req.Pass)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, resp.Error("Invalid email or password"))

				return
			}
			if errors.Is(err, auth.ErrUserBanned) {
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, resp.Error("Account is banned"))

				return
			}

			log.Error("failed to login user", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		log.Info("User logged in successfully", slog.Int64("uid", res.User.ID))

		ResponseOK(w, r, res)
	}
}

func ResponseOK(w http.ResponseWriter, r *http.Request, res auth.LoginResult) {
	render.JSON(w, r, Response{
		Response: resp.OK(),
		Token:    res.Token,
		Name:     res.User.Name,
		Email:    res.User.Email,
		Role:     res.User.Role,
	})
}
