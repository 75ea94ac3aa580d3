package middleware

import (
	"net/http"
)

// Cors applies the same permissive header set on every route, so that the
// single-page app (and local dev setups) can call any endpoint. Preflight
// requests are answered directly.
func Cors(allowedOrigins []string) func(next http.Handler) http.Handler {
	originsSet := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		originsSet[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowOrigin := "*"
			if origin := r.Header.Get("Origin"); originsSet[origin] {
				allowOrigin = origin
			}

			w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
			w.Header().Set("Access-Control-Allow-Headers",
				"Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, X-FITBOT-TOKEN, Stripe-Signature",
			)
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, PATCH, DELETE")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
