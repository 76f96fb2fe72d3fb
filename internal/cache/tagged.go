// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// tagged.go provides the cross-request query cache. Entries are JSON
// payloads in Valkey with a per-family TTL, registered under named tags
// (Valkey sets) so a mutation can invalidate every key a changed entity
// could have been cached under. Caching is a pure optimization: every
// failure on the lookup or write path is logged and swallowed so the
// request falls through to a live query.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	entryPrefix = "q:"
	tagPrefix   = "qtag:"

	// tagSetTTL bounds how long a tag's membership set lives without a
	// write. Stale members are harmless, since deleting an expired key is a
	// no-op. This only keeps the sets from growing unbounded.
	tagSetTTL = 24 * time.Hour
)

// TTL profile per query family.
const (
	ListingTTL  = 5 * time.Minute
	DetailTTL   = 30 * time.Minute
	SearchTTL   = 1 * time.Minute
	CategoryTTL = 10 * time.Minute
)

// Invalidation tag vocabulary. A mutation on a Post must invalidate
// every tag that post could have been cached under.
const (
	TagPosts         = "posts"
	TagCategories    = "categories"
	TagTags          = "tags"
	TagSearchResults = "search-results"
	TagPopularPosts  = "popular-posts"
	TagRelatedPosts  = "related-posts"
)

// TagPostByID names the detail-by-id tag for a single post.
func TagPostByID(id uuid.UUID) string {
	return "post-by-id:" + id.String()
}

// TagPostBySlug names the detail-by-slug tag for a single post.
func TagPostBySlug(slug string) string {
	return "post-by-slug:" + slug
}

// TaggedCache is the cross-request query cache. Writes are idempotent
// and last-writer-wins; concurrent writers to the same key are not
// ordered.
type TaggedCache struct {
	client *redis.Client
}

// NewTaggedCache creates a tagged cache backed by the given Valkey client.
func NewTaggedCache(client *redis.Client) *TaggedCache {
	return &TaggedCache{client: client}
}

// Get retrieves and decodes a cached entry into dest. Returns false on
// miss or on any cache failure.
func (tc *TaggedCache) Get(ctx context.Context, key string, dest any) bool {
	payload, err := tc.client.Get(ctx, entryPrefix+key).Bytes()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		slog.Warn("query cache get error", "key", key, "error", err)
		return false
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		slog.Warn("query cache decode error", "key", key, "error", err)
		return false
	}
	return true
}

// Set stores a value under the key with the given TTL and registers the
// key with every tag. Failures are logged and swallowed.
func (tc *TaggedCache) Set(ctx context.Context, key string, value any, ttl time.Duration, tags ...string) {
	payload, err := json.Marshal(value)
	if err != nil {
		slog.Warn("query cache encode error", "key", key, "error", err)
		return
	}

	pipe := tc.client.Pipeline()
	pipe.Set(ctx, entryPrefix+key, payload, ttl)
	for _, tag := range tags {
		pipe.SAdd(ctx, tagPrefix+tag, entryPrefix+key)
		pipe.Expire(ctx, tagPrefix+tag, tagSetTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		slog.Warn("query cache set error", "key", key, "error", err)
	}
}

// Invalidate deletes every entry registered under any of the tags, then
// the tag sets themselves. Called by mutations before they return, so a
// subsequent read misses and refetches.
func (tc *TaggedCache) Invalidate(ctx context.Context, tags ...string) {
	for _, tag := range tags {
		members, err := tc.client.SMembers(ctx, tagPrefix+tag).Result()
		if err != nil {
			slog.Warn("query cache tag scan error", "tag", tag, "error", err)
			continue
		}
		if len(members) > 0 {
			if err := tc.client.Del(ctx, members...).Err(); err != nil {
				slog.Warn("query cache invalidate error", "tag", tag, "error", err)
			}
		}
		tc.client.Del(ctx, tagPrefix+tag)
		slog.Debug("query cache tag invalidated", "tag", tag, "entries", len(members))
	}
}
