package cors

import "net/http"

const (
	MethodsAssistant = "POST, OPTIONS"
	MethodsAuth      = "GET, POST, OPTIONS"

	allowHeaders = "Content-Type, X-User-Id, X-Auth-Token"
	maxAge       = "86400"
)

// Headers puts the fixed CORS headers on every response and answers
// preflight requests itself with 200 and an empty body.
//
// Every response carries the headers, with or without an Origin, and a
// preflight needs no Access-Control-Request-Method. github.com/go-chi/cors
// does neither.
func Headers(methods string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Content-Type", "application/json")
			h.Set("Access-Control-Allow-Origin", "*")
			h.Set("Access-Control-Allow-Methods", methods)
			h.Set("Access-Control-Allow-Headers", allowHeaders)
			h.Set("Access-Control-Max-Age", maxAge)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
