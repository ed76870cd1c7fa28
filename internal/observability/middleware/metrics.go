package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"rillshop/internal/observability/metrics"

	"github.com/go-chi/chi"
	chimw "github.com/go-chi/chi/middleware"
)

// WithMetrics counts requests by the matched chi route pattern, so
// /api/auth/{action} stays one series however many actions are called.
func WithMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				// mounted routers leave "/*/" between the joined patterns
				route = strings.ReplaceAll(p, "/*/", "/")
			}
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		metrics.HTTPRequestDurationSeconds.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
