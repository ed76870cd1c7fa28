package rateLimit

import (
	"net/http"
	"time"

	resp "rillshop/internal/lib/api/response"

	"github.com/go-chi/httprate"
	"github.com/go-chi/render"
)

// Assistant limits the model-backed endpoints; every call may cost two
// completions.
func Assistant() func(http.Handler) http.Handler {
	return limitByIP(30, time.Minute)
}

// Auth caps the whole auth endpoint, unknown actions included. The actions
// below are limited again on their own.
func Auth() func(http.Handler) http.Handler {
	return limitByIP(20, time.Minute)
}

func Register() func(http.Handler) http.Handler {
	return limitByIP(5, time.Hour)
}

func Login() func(http.Handler) http.Handler {
	return limitByIP(10, 5*time.Minute)
}

func Verify() func(http.Handler) http.Handler {
	return limitByIP(10, 10*time.Minute)
}

func Session() func(http.Handler) http.Handler {
	return limitByIP(30, 10*time.Minute)
}

func Logout() func(http.Handler) http.Handler {
	return limitByIP(20, 10*time.Minute)
}

func limitByIP(limit int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(limit, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			render.Status(r, http.StatusTooManyRequests)
			render.JSON(w, r, resp.Error("Too many requests"))
		}),
	)
}
