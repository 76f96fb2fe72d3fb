package middleware

import (
	"net/http"

	"promptdeck/internal/cache"
)

// RequestMemo attaches a fresh per-request memo to the context so
// repeated catalog reads within one request collapse to a single fetch.
func RequestMemo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(cache.WithMemo(r.Context())))
	})
}
