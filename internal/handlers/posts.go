// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"promptdeck/internal/catalog"
	"promptdeck/internal/middleware"
	"promptdeck/internal/query"
)

// Public groups the unauthenticated marketplace read endpoints. All of
// them go through the catalog service, which owns filtering, caching,
// and interaction annotation.
type Public struct {
	catalog *catalog.Service
}

// NewPublic creates the public handler group.
func NewPublic(cat *catalog.Service) *Public {
	return &Public{catalog: cat}
}

// viewerID returns the authenticated user's ID, or nil for anonymous.
func viewerID(r *http.Request) *uuid.UUID {
	sess := sessionFrom(r)
	if sess == nil {
		return nil
	}
	id := sess.UserID
	return &id
}

// ListPosts handles GET /api/posts with search, category, premium-tier,
// sort, and pagination parameters.
func (p *Public) ListPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	listing, err := p.catalog.ListPosts(r.Context(), catalog.ListParams{
		Q:           q.Get("q"),
		Category:    q.Get("category"),
		Subcategory: q.Get("subcategory"),
		Premium:     q.Get("premium"),
		SortBy:      q.Get("sortBy"),
		Page:        page,
		Limit:       limit,
	}, viewerID(r))
	if err != nil {
		var verr *query.ValidationError
		if errors.As(err, &verr) {
			respondValidationError(w, verr.Fields)
			return
		}
		respondInternalError(w, "list posts failed", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"posts":      listing.Posts,
		"pagination": listing.PageInfo,
	})
}

// GetPost handles GET /api/posts/{slug}. Premium bodies are withheld
// from free-tier viewers; drafts are visible only to author and admins.
func (p *Public) GetPost(w http.ResponseWriter, r *http.Request) {
	slugParam := chi.URLParam(r, "slug")

	viewer := viewerFromSession(sessionFrom(r))
	post, err := p.catalog.GetPostBySlug(r.Context(), slugParam, viewer)
	if err != nil {
		respondInternalError(w, "get post failed", err)
		return
	}
	if post == nil {
		respondError(w, http.StatusNotFound, "post not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"post": post})
}

// RelatedPosts handles GET /api/posts/{slug}/related.
func (p *Public) RelatedPosts(w http.ResponseWriter, r *http.Request) {
	slugParam := chi.URLParam(r, "slug")

	post, err := p.catalog.PeekPostBySlug(r.Context(), slugParam)
	if err != nil {
		respondInternalError(w, "get post failed", err)
		return
	}
	if post == nil {
		respondError(w, http.StatusNotFound, "post not found")
		return
	}

	related, err := p.catalog.RelatedPosts(r.Context(), post, viewerID(r))
	if err != nil {
		respondInternalError(w, "related posts failed", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"posts": related})
}

// PopularPosts handles GET /api/posts/popular.
func (p *Public) PopularPosts(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	posts, err := p.catalog.PopularPosts(r.Context(), limit, viewerID(r))
	if err != nil {
		respondInternalError(w, "popular posts failed", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"posts": posts})
}

// ListCategories handles GET /api/categories with the one-level tree.
func (p *Public) ListCategories(w http.ResponseWriter, r *http.Request) {
	tree, err := p.catalog.Categories(r.Context())
	if err != nil {
		respondInternalError(w, "list categories failed", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"categories": tree})
}

// CSRFToken handles GET /api/csrf: it echoes the token for SPA
// bootstrap. On a first visit the cookie was set by the middleware on
// this very response, so fall back to the pending Set-Cookie header.
func (p *Public) CSRFToken(w http.ResponseWriter, r *http.Request) {
	token := middleware.GetCSRFToken(r)
	if token == "" {
		for _, sc := range w.Header().Values("Set-Cookie") {
			if strings.HasPrefix(sc, middleware.CSRFCookieName+"=") {
				rest := strings.TrimPrefix(sc, middleware.CSRFCookieName+"=")
				if idx := strings.IndexByte(rest, ';'); idx != -1 {
					rest = rest[:idx]
				}
				token = rest
				break
			}
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{"token": token})
}

// Health handles GET /healthz.
func (p *Public) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}
