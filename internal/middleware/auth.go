// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"net/http"

	"promptdeck/internal/session"
)

type contextKey string

// SessionKey is the context key the loaded session lives under.
const SessionKey contextKey = "session"

// LoadSession resolves the session cookie against Valkey and attaches
// the session data to the request context. It never blocks a request:
// missing cookies and store errors both pass through as anonymous.
// Enforcement is left to RequireAuth and friends.
func LoadSession(store *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data, err := store.Get(r.Context(), r)
			if err == nil && data != nil {
				r = r.WithContext(context.WithValue(r.Context(), SessionKey, data))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth answers 401 for anonymous requests. Apply after
// LoadSession.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if SessionFromCtx(r.Context()) == nil {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Require2FA answers 403 for admin sessions that have not completed a
// TOTP challenge yet. Non-admin sessions pass through untouched. Apply
// after RequireAuth.
func Require2FA(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := SessionFromCtx(r.Context())
		if sess != nil && sess.Role == "admin" && !sess.TwoFADone {
			writeError(w, http.StatusForbidden, "two-factor verification required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin answers 403 unless the session carries the admin role.
// Apply after RequireAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := SessionFromCtx(r.Context())
		if sess == nil || sess.Role != "admin" {
			writeError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SessionFromCtx returns the loaded session, or nil for anonymous
// requests.
func SessionFromCtx(ctx context.Context) *session.Data {
	data, _ := ctx.Value(SessionKey).(*session.Data)
	return data
}
