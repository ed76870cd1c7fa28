package register

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"rillshop/internal/auth"
	resp "rillshop/internal/lib/api/response"
	sl "rillshop/internal/lib/logger/sl"
	"rillshop/internal/lib/verification"
	"rillshop/internal/models"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

const successMessage = "Registration successful. Check your email for verification."

type Request struct {
	Email string `validate:"required"`
	Name  string `validate:"required"`
	Pass  string `validate:"required,min=6"`
}

type Registrar interface {
	RegisterNewUser(ctx context.Context, email, name, pass string) (int64, string, error)
}

// New registers an unverified user and queues the verification e-mail.
// msgSender may be nil. The response never carries the verification token.
func New(
	log *slog.Logger,
	validate *validator.Validate,
	registrar Registrar,
	msgSender verification.Publisher,
	publicURL string,
) func(http.ResponseWriter, *http.Request, models.AuthRequest) {
	return func(w http.ResponseWriter, r *http.Request, body models.AuthRequest) {
		const op = "handlers.register.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		req := Request{
			Email: auth.NormalizeEmail(body.Email),
			Name:  strings.TrimSpace(body.Name),
			Pass:  body.Password,
		}

		if err := validate.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Info("Invalid request", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error(validationMessage(validateErr)))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		userID, verificationToken, err := registrar.RegisterNewUser(ctx, req.Email, req.Name, req.Pass)
		if err != nil {
			if errors.Is(err, auth.ErrUserExists) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error("Email already registered"))

				return
			}

			log.Error("failed to register user", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		log.Info("User registered", slog.Int64("id", userID))

		verification.SendVerificationEmail(ctx, log, msgSender, publicURL, req.Email, verificationToken)

		render.JSON(w, r, resp.OKWithMessage(successMessage))
	}
}

// * Пустые поля проверяются раньше длины пароля
func validationMessage(errs validator.ValidationErrors) string {
	for _, err := range errs {
		if err.Tag() == "required" {
			return "All fields required"
		}
	}

	return "Password must be at least 6 characters"
}
