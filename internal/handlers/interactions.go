// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"promptdeck/internal/models"
	"promptdeck/internal/query"
	"promptdeck/internal/store"
)

// Interactions groups the authenticated bookmark/favorite endpoints.
// Both kinds share toggle semantics; only the store and the response
// field name differ.
type Interactions struct {
	bookmarks *store.InteractionStore
	favorites *store.InteractionStore
	posts     *store.PostStore
}

// NewInteractions creates the interactions handler group.
func NewInteractions(bookmarks, favorites *store.InteractionStore, posts *store.PostStore) *Interactions {
	return &Interactions{
		bookmarks: bookmarks,
		favorites: favorites,
		posts:     posts,
	}
}

// ToggleBookmark handles POST /api/posts/{id}/bookmark.
func (h *Interactions) ToggleBookmark(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.bookmarks, "bookmarked")
}

// ToggleFavorite handles POST /api/posts/{id}/favorite.
func (h *Interactions) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.favorites, "favorited")
}

// toggle flips the saved state for the authenticated user and reports
// the new state under the given field name.
func (h *Interactions) toggle(w http.ResponseWriter, r *http.Request, st *store.InteractionStore, field string) {
	sess := sessionFrom(r)
	if sess == nil {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	postID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondValidationError(w, map[string]string{"id": "must be a valid post id"})
		return
	}

	// Toggles only apply to posts that exist and are publicly visible.
	post, err := h.posts.FindByID(postID)
	if err != nil {
		respondInternalError(w, "post lookup failed", err)
		return
	}
	if post == nil || !post.IsPublic() {
		respondError(w, http.StatusNotFound, "post not found")
		return
	}

	state, err := st.Toggle(sess.UserID, postID)
	if err != nil {
		respondInternalError(w, "toggle failed", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{field: state})
}

// MyBookmarks handles GET /api/me/bookmarks.
func (h *Interactions) MyBookmarks(w http.ResponseWriter, r *http.Request) {
	h.saved(w, r, h.bookmarks)
}

// MyFavorites handles GET /api/me/favorites.
func (h *Interactions) MyFavorites(w http.ResponseWriter, r *http.Request) {
	h.saved(w, r, h.favorites)
}

// saved returns one page of the user's saved posts, newest save first.
// Per-user pages are never cached cross-request.
func (h *Interactions) saved(w http.ResponseWriter, r *http.Request, st *store.InteractionStore) {
	sess := sessionFrom(r)
	if sess == nil {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	pageReq := query.NewPageRequest(page, limit)

	posts, total, err := st.PostsForUser(sess.UserID, pageReq.Limit, pageReq.Offset())
	if err != nil {
		respondInternalError(w, "saved posts failed", err)
		return
	}
	if posts == nil {
		posts = []models.Post{}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"posts":      posts,
		"pagination": query.NewPageInfo(pageReq, total),
	})
}
