package verify

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

type Verifier interface {
	VerifyUser(ctx context.Context, verificationToken string) (int64, error)
}

// New confirms an e-mail address. The token comes from the body or, for the
// link in the e-mail, from the query string.
func New(
	log *slog.Logger,
	verifier Verifier,
) func(http.ResponseWriter, *http.Request, models.AuthRequest) {
	return func(w http.ResponseWriter, r *http.Request, body models.AuthRequest) {
		const op = "handlers.verify.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		token := body.Token
		if token == "" {
			token = r.URL.Query().Get("token")
		}
		if token == "" {
			log.Info("missing verification token")

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Verification token required"))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		userID, err := verifier.VerifyUser(ctx, token)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidToken) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error("Invalid or expired token"))

				return
			}

			log.Error("failed to mark user as verified", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		log.Info("email verified successfully", slog.Int64("uid", userID))

		render.JSON(w, r, resp.OKWithMessage("Email verified successfully"))
	}
}
