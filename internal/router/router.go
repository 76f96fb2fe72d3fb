// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// marketplace API. Routes are organized into public, authenticated, and
// admin groups with appropriate middleware stacks.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"promptdeck/internal/handlers"
	"promptdeck/internal/middleware"
	"promptdeck/internal/session"
)

// Deps are the wired handler groups and shared middleware state.
type Deps struct {
	Sessions     *session.Store
	RateLimiter  *middleware.RateLimiter
	Public       *handlers.Public
	Auth         *handlers.Auth
	Interactions *handlers.Interactions
	Admin        *handlers.Admin
	Media        *handlers.Media
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, outermost first: recover before anything else
	// so a panic in the logger itself still produces a response.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	if d.RateLimiter != nil {
		r.Use(d.RateLimiter.Middleware)
	}
	r.Use(middleware.LoadSession(d.Sessions))
	r.Use(methodNotAllowedJSON)

	// Health check, no CSRF and no rate-limit exemption needed; probes
	// are well under the per-IP budget.
	r.Get("/healthz", d.Public.Health)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.CSRF)

		// CSRF bootstrap for API clients.
		r.Get("/csrf", d.Public.CSRFToken)

		// Public catalog reads. The request memo dedupes repeated
		// queries within one request.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequestMemo)
			r.Get("/posts", d.Public.ListPosts)
			r.Get("/posts/popular", d.Public.PopularPosts)
			r.Get("/posts/{slug}", d.Public.GetPost)
			r.Get("/posts/{slug}/related", d.Public.RelatedPosts)
			r.Get("/categories", d.Public.ListCategories)
		})

		// Auth flow.
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", d.Auth.Register)
			r.Post("/login", d.Auth.Login)
			r.Post("/logout", d.Auth.Logout)

			// 2FA needs a session but not a completed verification.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Post("/2fa/setup", d.Auth.TwoFASetup)
				r.Post("/2fa/verify", d.Auth.TwoFAVerify)
			})
		})

		// Authenticated user surface.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/me", d.Auth.Me)
			r.Get("/me/bookmarks", d.Interactions.MyBookmarks)
			r.Get("/me/favorites", d.Interactions.MyFavorites)
			r.Post("/posts/{id}/bookmark", d.Interactions.ToggleBookmark)
			r.Post("/posts/{id}/favorite", d.Interactions.ToggleFavorite)
		})

		// Admin area: authenticated, 2FA-verified, admin role.
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.Require2FA)
			r.Use(middleware.RequireAdmin)

			r.Route("/posts", func(r chi.Router) {
				r.Get("/", d.Admin.ListPosts)
				r.Post("/", d.Admin.CreatePost)
				r.Post("/import", d.Admin.ImportPosts)
				r.Get("/{id}", d.Admin.GetPost)
				r.Put("/{id}", d.Admin.UpdatePost)
				r.Patch("/{id}/status", d.Admin.UpdatePostStatus)
				r.Delete("/{id}", d.Admin.DeletePost)
			})

			r.Route("/categories", func(r chi.Router) {
				r.Post("/", d.Admin.CreateCategory)
				r.Put("/{id}", d.Admin.UpdateCategory)
				r.Delete("/{id}", d.Admin.DeleteCategory)
			})

			r.Route("/tags", func(r chi.Router) {
				r.Get("/", d.Admin.ListTags)
				r.Post("/", d.Admin.CreateTag)
				r.Delete("/{id}", d.Admin.DeleteTag)
			})

			r.Get("/users", d.Admin.ListUsers)

			if d.Media != nil {
				r.Post("/media", d.Media.Upload)
				r.Delete("/media/{id}", d.Media.Delete)
			}
		})
	})

	return r
}

// methodNotAllowedJSON rewrites chi's bare 405 responses into the API
// error envelope. Chi's own responder stays in place because it is the
// one that knows the route's allowed methods and stamps the Allow
// header; a custom MethodNotAllowed handler would lose that.
func methodNotAllowedJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(&notAllowedWriter{ResponseWriter: w}, r)
	})
}

type notAllowedWriter struct {
	http.ResponseWriter
	intercepted bool
}

func (w *notAllowedWriter) WriteHeader(code int) {
	if code == http.StatusMethodNotAllowed {
		w.intercepted = true
		w.Header().Set("Content-Type", "application/json")
		w.ResponseWriter.WriteHeader(code)
		w.ResponseWriter.Write([]byte(`{"success":false,"error":"method not allowed"}`))
		return
	}
	w.ResponseWriter.WriteHeader(code)
}

// Write drops the original body once the envelope has been written.
func (w *notAllowedWriter) Write(b []byte) (int, error) {
	if w.intercepted {
		return len(b), nil
	}
	return w.ResponseWriter.Write(b)
}
