// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"promptdeck/internal/catalog"
	"promptdeck/internal/models"
	"promptdeck/internal/query"
	"promptdeck/internal/slug"
	"promptdeck/internal/store"
)

// Admin groups the moderation and content-management handlers. Admin
// reads always hit the database live; admin writes invalidate the
// affected cache tags before the response is sent, so a follow-up read
// never sees the pre-write state served from cache.
type Admin struct {
	posts      *store.PostStore
	categories *store.CategoryStore
	tags       *store.TagStore
	users      *store.UserStore
	catalog    *catalog.Service
}

// NewAdmin creates a new Admin handler group.
func NewAdmin(posts *store.PostStore, categories *store.CategoryStore, tags *store.TagStore, users *store.UserStore, cat *catalog.Service) *Admin {
	return &Admin{
		posts:      posts,
		categories: categories,
		tags:       tags,
		users:      users,
		catalog:    cat,
	}
}

// postInput is the JSON body for post create/update.
type postInput struct {
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Description string     `json:"description"`
	Content     string     `json:"content"`
	CategoryID  *uuid.UUID `json:"category_id"`
	MediaID     *uuid.UUID `json:"media_id"`
	Premium     bool       `json:"premium"`
	Published   bool       `json:"published"`
	Status      string     `json:"status"`
	Tags        []string   `json:"tags"`
}

// ListPosts handles GET /api/admin/posts: every status, straight from
// the database.
func (a *Admin) ListPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	pageReq := query.NewPageRequest(page, limit)

	// Admin listings see every status; the optional status parameter
	// narrows to one moderation state.
	filter := query.And{}
	if status := models.PostStatus(q.Get("status")); status != "" {
		if !models.ValidPostStatus(status) {
			respondValidationError(w, map[string]string{"status": "unknown status"})
			return
		}
		filter.Filters = append(filter.Filters, query.StatusMatch{Status: status})
	}
	compiled := query.Compile(filter)

	posts, err := a.posts.List(compiled, query.SortLatest.OrderBy(), pageReq.Limit, pageReq.Offset())
	if err != nil {
		respondInternalError(w, "admin list posts failed", err)
		return
	}
	total, err := a.posts.Count(compiled)
	if err != nil {
		respondInternalError(w, "admin count posts failed", err)
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

// GetPost handles GET /api/admin/posts/{id}.
func (a *Admin) GetPost(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondValidationError(w, map[string]string{"id": "must be a valid post id"})
		return
	}

	post, err := a.posts.FindByID(id)
	if err != nil {
		respondInternalError(w, "admin get post failed", err)
		return
	}
	if post == nil {
		respondError(w, http.StatusNotFound, "post not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"post": post})
}

// CreatePost handles POST /api/admin/posts.
func (a *Admin) CreatePost(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	var in postInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if fields := validatePost(in.Title, in.Slug, in.Description, in.Content, in.Tags); fields != nil {
		respondValidationError(w, fields)
		return
	}

	status := models.PostStatus(in.Status)
	if in.Status == "" {
		status = models.PostStatusDraft
	}
	if !models.ValidPostStatus(status) {
		respondValidationError(w, map[string]string{"status": "unknown status"})
		return
	}

	postSlug, err := a.uniquePostSlug(in.Slug, in.Title, uuid.Nil)
	if err != nil {
		respondInternalError(w, "slug resolution failed", err)
		return
	}

	post := &models.Post{
		Title:       strings.TrimSpace(in.Title),
		Slug:        postSlug,
		Description: in.Description,
		Content:     in.Content,
		MediaID:     in.MediaID,
		Premium:     in.Premium,
		Published:   in.Published,
		Status:      status,
		AuthorID:    sess.UserID,
		CategoryID:  in.CategoryID,
	}

	created, err := a.posts.Create(post)
	if err != nil {
		respondInternalError(w, "create post failed", err)
		return
	}

	if err := a.applyTags(created.ID, in.Tags); err != nil {
		respondInternalError(w, "apply tags failed", err)
		return
	}

	a.catalog.InvalidatePost(r.Context(), created.ID, created.Slug)
	respondJSON(w, http.StatusCreated, map[string]any{"post": created})
}

// UpdatePost handles PUT /api/admin/posts/{id}.
func (a *Admin) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondValidationError(w, map[string]string{"id": "must be a valid post id"})
		return
	}

	existing, err := a.posts.FindByID(id)
	if err != nil {
		respondInternalError(w, "admin get post failed", err)
		return
	}
	if existing == nil {
		respondError(w, http.StatusNotFound, "post not found")
		return
	}

	var in postInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if fields := validatePost(in.Title, in.Slug, in.Description, in.Content, in.Tags); fields != nil {
		respondValidationError(w, fields)
		return
	}

	status := models.PostStatus(in.Status)
	if in.Status == "" {
		status = existing.Status
	}
	if !models.ValidPostStatus(status) {
		respondValidationError(w, map[string]string{"status": "unknown status"})
		return
	}

	postSlug := existing.Slug
	if in.Slug != "" && in.Slug != existing.Slug {
		postSlug, err = a.uniquePostSlug(in.Slug, in.Title, id)
		if err != nil {
			respondInternalError(w, "slug resolution failed", err)
			return
		}
	}

	oldSlug := existing.Slug
	existing.Title = strings.TrimSpace(in.Title)
	existing.Slug = postSlug
	existing.Description = in.Description
	existing.Content = in.Content
	existing.MediaID = in.MediaID
	existing.Premium = in.Premium
	existing.Published = in.Published
	existing.Status = status
	existing.CategoryID = in.CategoryID

	if err := a.posts.Update(existing); err != nil {
		respondInternalError(w, "update post failed", err)
		return
	}
	if err := a.applyTags(id, in.Tags); err != nil {
		respondInternalError(w, "apply tags failed", err)
		return
	}

	// Invalidate under the old slug too in case it changed.
	a.catalog.InvalidatePost(r.Context(), id, existing.Slug)
	if oldSlug != existing.Slug {
		a.catalog.InvalidatePost(r.Context(), id, oldSlug)
	}
	respondJSON(w, http.StatusOK, map[string]any{"post": existing})
}

// UpdatePostStatus handles PATCH /api/admin/posts/{id}/status, the
// moderation workflow endpoint.
func (a *Admin) UpdatePostStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondValidationError(w, map[string]string{"id": "must be a valid post id"})
		return
	}

	var in struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	status := models.PostStatus(in.Status)
	if !models.ValidPostStatus(status) {
		respondValidationError(w, map[string]string{"status": "unknown status"})
		return
	}

	post, err := a.posts.FindByID(id)
	if err != nil {
		respondInternalError(w, "admin get post failed", err)
		return
	}
	if post == nil {
		respondError(w, http.StatusNotFound, "post not found")
		return
	}

	if err := a.posts.UpdateStatus(id, status); err != nil {
		respondInternalError(w, "update status failed", err)
		return
	}

	a.catalog.InvalidatePost(r.Context(), id, post.Slug)
	respondJSON(w, http.StatusOK, nil)
}

// DeletePost handles DELETE /api/admin/posts/{id}.
func (a *Admin) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondValidationError(w, map[string]string{"id": "must be a valid post id"})
		return
	}

	post, err := a.posts.FindByID(id)
	if err != nil {
		respondInternalError(w, "admin get post failed", err)
		return
	}
	if post == nil {
		respondError(w, http.StatusNotFound, "post not found")
		return
	}

	if err := a.posts.Delete(id); err != nil {
		respondInternalError(w, "delete post failed", err)
		return
	}

	a.catalog.InvalidatePost(r.Context(), id, post.Slug)
	respondJSON(w, http.StatusOK, nil)
}

// uniquePostSlug resolves the final slug for a post: the explicit slug
// if given, otherwise generated from the title, de-duplicated with a
// numeric suffix. selfID excludes the post itself on update.
func (a *Admin) uniquePostSlug(explicit, title string, selfID uuid.UUID) (string, error) {
	base := explicit
	if base == "" {
		base = slug.Generate(title)
	}
	if base == "" {
		base = "post"
	}

	candidate := base
	for n := 2; ; n++ {
		existing, err := a.posts.FindBySlug(candidate)
		if err != nil {
			return "", err
		}
		if existing == nil || existing.ID == selfID {
			return candidate, nil
		}
		candidate = slug.WithSuffix(base, n)
	}
}

// applyTags upserts the named tags and sets them as the post's full tag
// list. An empty list clears the post's tags.
func (a *Admin) applyTags(postID uuid.UUID, names []string) error {
	tagIDs := make([]uuid.UUID, 0, len(names))
	seen := map[string]bool{}
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		tagSlug := slug.Generate(name)
		if tagSlug == "" || seen[tagSlug] {
			continue
		}
		seen[tagSlug] = true

		tag, err := a.tags.Ensure(name, tagSlug)
		if err != nil {
			return err
		}
		tagIDs = append(tagIDs, tag.ID)
	}
	return a.posts.ReplaceTags(postID, tagIDs)
}

// --- users ---

// ListUsers handles GET /api/admin/users.
func (a *Admin) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := a.users.List()
	if err != nil {
		respondInternalError(w, "list users failed", err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"users": users})
}

// --- categories ---

// categoryInput is the JSON body for category create/update.
type categoryInput struct {
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description string     `json:"description"`
	ParentID    *uuid.UUID `json:"parent_id"`
}

// CreateCategory handles POST /api/admin/categories.
func (a *Admin) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var in categoryInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if fields := validateCategory(in.Name, in.Slug); fields != nil {
		respondValidationError(w, fields)
		return
	}

	catSlug := in.Slug
	if catSlug == "" {
		catSlug = slug.Generate(in.Name)
	}

	created, err := a.categories.Create(&models.Category{
		Name:        strings.TrimSpace(in.Name),
		Slug:        catSlug,
		Description: in.Description,
		ParentID:    in.ParentID,
	})
	if errors.Is(err, store.ErrInvalidParent) {
		respondValidationError(w, map[string]string{"parent_id": "parent must be an existing root category"})
		return
	}
	if err != nil {
		respondInternalError(w, "create category failed", err)
		return
	}

	a.catalog.InvalidateCategories(r.Context())
	respondJSON(w, http.StatusCreated, map[string]any{"category": created})
}

// UpdateCategory handles PUT /api/admin/categories/{id}.
func (a *Admin) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondValidationError(w, map[string]string{"id": "must be a valid category id"})
		return
	}

	existing, err := a.categories.FindByID(id)
	if err != nil {
		respondInternalError(w, "get category failed", err)
		return
	}
	if existing == nil {
		respondError(w, http.StatusNotFound, "category not found")
		return
	}

	var in categoryInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if fields := validateCategory(in.Name, in.Slug); fields != nil {
		respondValidationError(w, fields)
		return
	}

	existing.Name = strings.TrimSpace(in.Name)
	if in.Slug != "" {
		existing.Slug = in.Slug
	}
	existing.Description = in.Description
	existing.ParentID = in.ParentID

	err = a.categories.Update(existing)
	if errors.Is(err, store.ErrInvalidParent) {
		respondValidationError(w, map[string]string{"parent_id": "parent must be an existing root category"})
		return
	}
	if err != nil {
		respondInternalError(w, "update category failed", err)
		return
	}

	a.catalog.InvalidateCategories(r.Context())
	respondJSON(w, http.StatusOK, map[string]any{"category": existing})
}

// DeleteCategory handles DELETE /api/admin/categories/{id}. Posts in
// the category keep existing with a null category.
func (a *Admin) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondValidationError(w, map[string]string{"id": "must be a valid category id"})
		return
	}

	if err := a.categories.Delete(id); err != nil {
		respondInternalError(w, "delete category failed", err)
		return
	}

	a.catalog.InvalidateCategories(r.Context())
	respondJSON(w, http.StatusOK, nil)
}

// --- tags ---

// ListTags handles GET /api/admin/tags.
func (a *Admin) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := a.tags.List()
	if err != nil {
		respondInternalError(w, "list tags failed", err)
		return
	}
	if tags == nil {
		tags = []models.Tag{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"tags": tags})
}

// CreateTag handles POST /api/admin/tags.
func (a *Admin) CreateTag(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		respondValidationError(w, map[string]string{"name": "name is required"})
		return
	}
	tagSlug := slug.Generate(name)
	if tagSlug == "" {
		respondValidationError(w, map[string]string{"name": "name must contain letters or digits"})
		return
	}

	tag, err := a.tags.Ensure(name, tagSlug)
	if err != nil {
		respondInternalError(w, "create tag failed", err)
		return
	}

	a.catalog.InvalidateTags(r.Context())
	respondJSON(w, http.StatusCreated, map[string]any{"tag": tag})
}

// DeleteTag handles DELETE /api/admin/tags/{id}.
func (a *Admin) DeleteTag(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondValidationError(w, map[string]string{"id": "must be a valid tag id"})
		return
	}

	if err := a.tags.Delete(id); err != nil {
		respondInternalError(w, "delete tag failed", err)
		return
	}

	a.catalog.InvalidateTags(r.Context())
	respondJSON(w, http.StatusOK, nil)
}
