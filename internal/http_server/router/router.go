// Package router mounts the RillShop API on a chi router.
package router

import (
	"log/slog"
	"net/http"
	"time"

	"rillshop/internal/auth"
	"rillshop/internal/http_server/handlers/account"
	"rillshop/internal/http_server/handlers/login"
	"rillshop/internal/http_server/handlers/logout"
	"rillshop/internal/http_server/handlers/register"
	"rillshop/internal/http_server/handlers/session"
	"rillshop/internal/http_server/handlers/sitemanager"
	"rillshop/internal/http_server/handlers/support"
	"rillshop/internal/http_server/handlers/verify"
	"rillshop/internal/lib/verification"
	"rillshop/internal/middleware/cors"
	rateLimit "rillshop/internal/middleware/ratelimit"
	obsmw "rillshop/internal/observability/middleware"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Deps struct {
	SiteManager sitemanager.SiteManager
	Support     support.Bot
	// Auth is nil when no database is configured.
	Auth      *auth.Auth
	Publisher verification.Publisher
	PublicURL string
	AITimeout time.Duration
}

func New(log *slog.Logger, deps Deps) *chi.Mux {
	validate := validator.New()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(obsmw.WithMetrics)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.PlainText(w, r, "ok")
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/ai", func(r chi.Router) {
		r.Use(cors.Headers(cors.MethodsAssistant))
		r.Use(rateLimit.Assistant())

		r.HandleFunc("/site-manager", sitemanager.New(log, validate, deps.SiteManager, deps.AITimeout))
		r.HandleFunc("/support", support.New(log, validate, deps.Support, deps.AITimeout))
	})

	authHandler := account.New(log, authActions(log, validate, deps))

	r.Route("/api/auth", func(r chi.Router) {
		r.Use(cors.Headers(cors.MethodsAuth))
		r.Use(rateLimit.Auth())

		r.HandleFunc("/", authHandler)
		r.HandleFunc("/{action}", authHandler)
	})

	return r
}

func authActions(log *slog.Logger, validate *validator.Validate, deps Deps) *account.Actions {
	if deps.Auth == nil {
		return nil
	}

	return &account.Actions{
		Register: account.Limit(rateLimit.Register(), register.New(log, validate, deps.Auth, deps.Publisher, deps.PublicURL)),
		Login:    account.Limit(rateLimit.Login(), login.New(log, validate, deps.Auth)),
		Verify:   account.Limit(rateLimit.Verify(), verify.New(log, deps.Auth)),
		Session:  account.Limit(rateLimit.Session(), session.New(log, deps.Auth)),
		Logout:   account.Limit(rateLimit.Logout(), logout.New(log, validate, deps.Auth)),
	}
}
