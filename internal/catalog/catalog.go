// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package catalog orchestrates the read path for the public marketplace:
// it parses listing parameters into a filter, resolves pages through the
// request memo and the tagged Valkey cache, and attaches per-viewer
// interaction flags after the cached base query. Cached entries are
// always viewer-agnostic; anything per-user happens after the cache.
package catalog

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"promptdeck/internal/cache"
	"promptdeck/internal/markdown"
	"promptdeck/internal/models"
	"promptdeck/internal/query"
)

// relatedLimit caps the size of the related-posts strip on a detail page.
const relatedLimit = 4

// PostReader is the post store surface the catalog needs.
type PostReader interface {
	List(f query.Compiled, orderBy string, limit, offset int) ([]models.Post, error)
	Count(f query.Compiled) (int, error)
	FindBySlug(slug string) (*models.Post, error)
	FindByID(id uuid.UUID) (*models.Post, error)
	Related(categoryID uuid.UUID, exclude uuid.UUID, limit int) ([]models.Post, error)
	IncrementViews(id uuid.UUID) error
}

// CategoryReader supplies the category tree for the slug-resolver snapshot.
type CategoryReader interface {
	Tree() ([]models.Category, error)
}

// InteractionReader answers batch per-user membership queries.
type InteractionReader interface {
	FilterByUser(userID uuid.UUID, postIDs []uuid.UUID) (map[uuid.UUID]bool, error)
}

// Service is the catalog read service. A nil cache degrades to live
// queries with request-scoped memoization only.
type Service struct {
	posts      PostReader
	categories CategoryReader
	bookmarks  InteractionReader
	favorites  InteractionReader
	cache      *cache.TaggedCache
	logger     *slog.Logger
}

// NewService wires the catalog service.
func NewService(posts PostReader, categories CategoryReader, bookmarks, favorites InteractionReader, tc *cache.TaggedCache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		posts:      posts,
		categories: categories,
		bookmarks:  bookmarks,
		favorites:  favorites,
		cache:      tc,
		logger:     logger,
	}
}

// ListParams are the raw listing inputs from the query string.
type ListParams struct {
	Q           string
	Category    string
	Subcategory string
	Premium     string
	SortBy      string
	Page        int
	Limit       int
}

// Listing is one page of posts plus its pagination metadata.
type Listing struct {
	Posts    []models.Post  `json:"posts"`
	PageInfo query.PageInfo `json:"pagination"`
}

// listPage is the cached shape of a listing: viewer-agnostic posts and
// the raw total, before page metadata and interaction flags.
type listPage struct {
	Posts []models.Post `json:"posts"`
	Total int           `json:"total"`
}

// ListPosts runs the full listing pipeline: parse and validate the
// filter, clamp pagination, resolve rows and count through the cache,
// then annotate with the viewer's bookmarks and favorites. viewerID is
// nil for anonymous callers, whose flags are always false.
func (s *Service) ListPosts(ctx context.Context, p ListParams, viewerID *uuid.UUID) (*Listing, error) {
	snap, err := s.categorySnapshot(ctx)
	if err != nil {
		return nil, err
	}

	built, err := query.ParseFilter(query.Params{
		Q:           p.Q,
		Category:    p.Category,
		Subcategory: p.Subcategory,
		Premium:     p.Premium,
	}, snap)
	if err != nil {
		return nil, err
	}

	sort := query.ParseSort(p.SortBy, built.HasSearch)
	pageReq := query.NewPageRequest(p.Page, p.Limit)

	// The public listing only ever sees published, approved posts,
	// regardless of what the caller's filters matched.
	compiled := query.Compile(query.And{Filters: []query.Filter{
		built.Filter,
		query.PublicOnly{},
	}})

	key := cache.Key("posts:list", map[string]any{
		"q":           p.Q,
		"category":    p.Category,
		"subcategory": p.Subcategory,
		"premium":     p.Premium,
		"sort":        string(sort),
		"page":        pageReq.Page,
		"limit":       pageReq.Limit,
	})

	ttl := cache.ListingTTL
	tags := []string{cache.TagPosts}
	if built.HasSearch {
		ttl = cache.SearchTTL
		tags = append(tags, cache.TagSearchResults)
	}

	page, err := cache.GetOrFetch(ctx, s.cache, key, ttl, tags, func(ctx context.Context) (listPage, error) {
		posts, err := s.posts.List(compiled, sort.OrderBy(), pageReq.Limit, pageReq.Offset())
		if err != nil {
			return listPage{}, err
		}
		total, err := s.posts.Count(compiled)
		if err != nil {
			return listPage{}, err
		}
		return listPage{Posts: posts, Total: total}, nil
	})
	if err != nil {
		return nil, err
	}

	s.annotate(page.Posts, viewerID)

	return &Listing{
		Posts:    page.Posts,
		PageInfo: query.NewPageInfo(pageReq, page.Total),
	}, nil
}

// SearchPosts is a listing with the search term forced on. Results pick
// up the shorter search TTL and the search-results cache tag.
func (s *Service) SearchPosts(ctx context.Context, term string, p ListParams, viewerID *uuid.UUID) (*Listing, error) {
	p.Q = term
	return s.ListPosts(ctx, p, viewerID)
}

// GetPostBySlug resolves a post detail through the cache, bumps its view
// counter, annotates the viewer's flags, and gates premium content.
// Returns nil when the post does not exist or is not publicly visible to
// this viewer.
func (s *Service) GetPostBySlug(ctx context.Context, slug string, viewer *models.User) (*models.Post, error) {
	key := cache.Key("posts:detail", map[string]any{"slug": slug})
	tags := []string{cache.TagPosts, cache.TagPostBySlug(slug)}

	post, err := cache.GetOrFetch(ctx, s.cache, key, cache.DetailTTL, tags, s.fetchDetail(slug))
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, nil
	}

	// Drafts and unapproved posts are visible only to their author and
	// to admins.
	if !post.IsPublic() {
		if viewer == nil || (!viewer.IsAdmin() && viewer.ID != post.AuthorID) {
			return nil, nil
		}
	}

	// The counter bump is fire-and-forget: a failed increment must not
	// take down the detail page.
	if err := s.posts.IncrementViews(post.ID); err != nil {
		s.logger.Warn("view count increment failed", "post", post.ID, "error", err)
	}

	// Work on a copy so the memoized entry stays ungated for the rest
	// of the request.
	out := *post
	if viewer != nil {
		single := []models.Post{out}
		viewerID := viewer.ID
		s.annotate(single, &viewerID)
		out = single[0]
	}
	out.GateContent(viewer)

	return &out, nil
}

// PeekPostBySlug resolves a public post through the cache without
// bumping the view counter or gating content. Used where the post is an
// anchor for another query rather than the page being read.
func (s *Service) PeekPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	key := cache.Key("posts:detail", map[string]any{"slug": slug})
	tags := []string{cache.TagPosts, cache.TagPostBySlug(slug)}

	post, err := cache.GetOrFetch(ctx, s.cache, key, cache.DetailTTL, tags, s.fetchDetail(slug))
	if err != nil {
		return nil, err
	}
	if post == nil || !post.IsPublic() {
		return nil, nil
	}
	return post, nil
}

// fetchDetail loads a post and renders its Markdown body. The rendered
// HTML lives in the cached entry, so conversion cost is paid once per
// detail TTL rather than per request.
func (s *Service) fetchDetail(slug string) func(context.Context) (*models.Post, error) {
	return func(context.Context) (*models.Post, error) {
		post, err := s.posts.FindBySlug(slug)
		if err != nil || post == nil {
			return post, err
		}
		html, err := markdown.ToHTML(post.Content)
		if err != nil {
			s.logger.Warn("markdown render failed", "post", post.ID, "error", err)
		} else {
			post.ContentHTML = html
		}
		return post, nil
	}
}

// PopularPosts returns the most-viewed public posts for the front page.
func (s *Service) PopularPosts(ctx context.Context, limit int, viewerID *uuid.UUID) ([]models.Post, error) {
	if limit < 1 || limit > query.MaxLimit {
		limit = query.DefaultLimit
	}

	key := cache.Key("posts:popular", map[string]any{"limit": limit})
	tags := []string{cache.TagPosts, cache.TagPopularPosts}
	compiled := query.Compile(query.PublicOnly{})

	posts, err := cache.GetOrFetch(ctx, s.cache, key, cache.ListingTTL, tags, func(ctx context.Context) ([]models.Post, error) {
		return s.posts.List(compiled, query.SortPopular.OrderBy(), limit, 0)
	})
	if err != nil {
		return nil, err
	}

	s.annotate(posts, viewerID)
	return posts, nil
}

// RelatedPosts returns the same-category strip for a detail page.
// Posts without a category have no related strip.
func (s *Service) RelatedPosts(ctx context.Context, post *models.Post, viewerID *uuid.UUID) ([]models.Post, error) {
	if post.CategoryID == nil {
		return nil, nil
	}

	key := cache.Key("posts:related", map[string]any{"id": post.ID.String()})
	tags := []string{cache.TagPosts, cache.TagRelatedPosts, cache.TagPostByID(post.ID)}

	posts, err := cache.GetOrFetch(ctx, s.cache, key, cache.ListingTTL, tags, func(ctx context.Context) ([]models.Post, error) {
		return s.posts.Related(*post.CategoryID, post.ID, relatedLimit)
	})
	if err != nil {
		return nil, err
	}

	s.annotate(posts, viewerID)
	return posts, nil
}

// Categories returns the cached one-level category tree.
func (s *Service) Categories(ctx context.Context) ([]models.Category, error) {
	key := cache.Key("categories:tree", nil)
	tags := []string{cache.TagCategories}

	return cache.GetOrFetch(ctx, s.cache, key, cache.CategoryTTL, tags, func(ctx context.Context) ([]models.Category, error) {
		return s.categories.Tree()
	})
}

// InvalidatePost drops every cache entry that could contain the given
// post: listings, search results, the popular and related strips, and
// both detail entries. Called by the write path before it returns.
func (s *Service) InvalidatePost(ctx context.Context, id uuid.UUID, slug string) {
	if s.cache == nil {
		return
	}
	s.cache.Invalidate(ctx,
		cache.TagPosts,
		cache.TagSearchResults,
		cache.TagPopularPosts,
		cache.TagRelatedPosts,
		cache.TagPostByID(id),
		cache.TagPostBySlug(slug),
	)
}

// InvalidateCategories drops the category snapshot and every listing,
// since category edits change how filters resolve.
func (s *Service) InvalidateCategories(ctx context.Context) {
	if s.cache == nil {
		return
	}
	s.cache.Invalidate(ctx, cache.TagCategories, cache.TagPosts, cache.TagSearchResults)
}

// InvalidateListings drops every cached listing without touching
// per-post detail entries. Bulk imports use it: no existing detail page
// changes, but every list may now be stale.
func (s *Service) InvalidateListings(ctx context.Context) {
	if s.cache == nil {
		return
	}
	s.cache.Invalidate(ctx,
		cache.TagPosts,
		cache.TagSearchResults,
		cache.TagPopularPosts,
		cache.TagRelatedPosts,
	)
}

// InvalidateTags drops tag-dependent entries after tag mutations.
func (s *Service) InvalidateTags(ctx context.Context) {
	if s.cache == nil {
		return
	}
	s.cache.Invalidate(ctx, cache.TagTags, cache.TagPosts, cache.TagSearchResults)
}
