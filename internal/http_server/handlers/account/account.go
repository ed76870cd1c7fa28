// Package account routes the auth endpoint's actions.
package account

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	resp "rillshop/internal/lib/api/response"
	sl "rillshop/internal/lib/logger/sl"
	"rillshop/internal/models"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

const (
	ActionRegister = "register"
	ActionLogin    = "login"
	ActionVerify   = "verify"
	ActionSession  = "session"
	ActionLogout   = "logout"
)

// Action handles one auth action once the shared body is decoded.
type Action = func(w http.ResponseWriter, r *http.Request, req models.AuthRequest)

// Limit runs action behind an http middleware such as a rate limiter. mw is
// applied per call, so it must be built once, outside the request path.
func Limit(mw func(http.Handler) http.Handler, action Action) Action {
	return func(w http.ResponseWriter, r *http.Request, req models.AuthRequest) {
		mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			action(w, r, req)
		})).ServeHTTP(w, r)
	}
}

type Actions struct {
	Register Action
	Login    Action
	Verify   Action
	Session  Action
	Logout   Action
}

// New returns the auth endpoint. actions is nil when no database is
// configured; every request then fails with 500.
func New(log *slog.Logger, actions *Actions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.account.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if actions == nil {
			log.Error("auth request without database")

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Database not configured"))

			return
		}

		var req models.AuthRequest

		err := render.DecodeJSON(r.Body, &req)
		if err != nil && !errors.Is(err, io.EOF) {
			log.Error("Failed to decode request body", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Failed to decode request"))

			return
		}

		if req.Action == "" {
			req.Action = chi.URLParam(r, "action")
		}

		post := r.Method == http.MethodPost

		switch {
		case req.Action == ActionRegister && post:
			actions.Register(w, r, req)
		case req.Action == ActionLogin && post:
			actions.Login(w, r, req)
		case req.Action == ActionVerify:
			actions.Verify(w, r, req)
		case req.Action == ActionSession && post:
			actions.Session(w, r, req)
		case req.Action == ActionLogout && post:
			actions.Logout(w, r, req)
		default:
			log.Info("unknown auth endpoint", slog.String("action", req.Action), slog.String("method", r.Method))

			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, resp.Error("Endpoint not found"))
		}
	}
}
