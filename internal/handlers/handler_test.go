// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler
// integration tests. Tests are skipped when PostgreSQL or Valkey are
// unavailable.
package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"promptdeck/internal/cache"
	"promptdeck/internal/catalog"
	"promptdeck/internal/database"
	"promptdeck/internal/middleware"
	"promptdeck/internal/session"
	"promptdeck/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL, runs migrations,
// and seeds the baseline rows.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "promptdeck")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "promptdeck")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	if err := database.Seed(db); err != nil {
		db.Close()
		t.Fatalf("seed: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkey returns a Redis client for handler tests on DB 15.
func testValkey(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		for _, pattern := range []string{"session:*", "q:*", "qtag:*"} {
			keys, _ := client.Keys(ctx, pattern).Result()
			if len(keys) > 0 {
				client.Del(ctx, keys...)
			}
		}
		client.Close()
	})

	return client
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB            *sql.DB
	Valkey        *redis.Client
	Sessions      *session.Store
	PostStore     *store.PostStore
	CategoryStore *store.CategoryStore
	TagStore      *store.TagStore
	UserStore     *store.UserStore
	Bookmarks     *store.InteractionStore
	Favorites     *store.InteractionStore
	Catalog       *catalog.Service
	Admin         *Admin
	Auth          *Auth
	Public        *Public
	Interactions  *Interactions
}

// newTestEnv creates a complete test environment with all handler
// dependencies. Media handlers are left out; object storage is not
// available in CI.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	vk := testValkey(t)

	sessions := session.NewStore(vk, 0, false)
	posts := store.NewPostStore(db)
	categories := store.NewCategoryStore(db)
	tags := store.NewTagStore(db)
	users := store.NewUserStore(db)
	bookmarks := store.NewBookmarkStore(db)
	favorites := store.NewFavoriteStore(db)

	cat := catalog.NewService(posts, categories, bookmarks, favorites, cache.NewTaggedCache(vk), nil)

	return &testEnv{
		DB:            db,
		Valkey:        vk,
		Sessions:      sessions,
		PostStore:     posts,
		CategoryStore: categories,
		TagStore:      tags,
		UserStore:     users,
		Bookmarks:     bookmarks,
		Favorites:     favorites,
		Catalog:       cat,
		Admin:         NewAdmin(posts, categories, tags, users, cat),
		Auth:          NewAuth(sessions, users),
		Public:        NewPublic(cat),
		Interactions:  NewInteractions(bookmarks, favorites, posts),
	}
}

// ctxWithSession adds session data to a context using the middleware key.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, middleware.SessionKey, data)
}

// testSession creates session data for tests.
func testSession(userID uuid.UUID, email, role string) *session.Data {
	return &session.Data{
		UserID:      userID,
		Email:       email,
		DisplayName: "Test User",
		Role:        role,
		Plan:        "free",
		TwoFADone:   true,
	}
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// withChiURLParamAndSession adds both a chi URL param and a session.
func withChiURLParamAndSession(r *http.Request, key, value string, sess *session.Data) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	ctx = context.WithValue(ctx, middleware.SessionKey, sess)
	return r.WithContext(ctx)
}

// adminID returns the seeded admin's user ID.
func adminID(t *testing.T, db *sql.DB) uuid.UUID {
	t.Helper()
	var id uuid.UUID
	if err := db.QueryRow("SELECT id FROM users WHERE role = 'admin' LIMIT 1").Scan(&id); err != nil {
		t.Fatalf("no admin user in database, seed failed: %v", err)
	}
	return id
}

// cleanPosts removes test posts by slug.
func cleanPosts(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	for _, s := range slugs {
		db.Exec("DELETE FROM posts WHERE slug = $1", s)
	}
}

// cleanUsers removes test users by email.
func cleanUsers(t *testing.T, db *sql.DB, emails ...string) {
	t.Helper()
	for _, e := range emails {
		db.Exec("DELETE FROM users WHERE email = $1", e)
	}
}

// cleanCategories removes test categories by slug.
func cleanCategories(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	for _, s := range slugs {
		db.Exec("DELETE FROM categories WHERE slug = $1", s)
	}
}
