// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the marketplace API server. It
// loads configuration, connects to services, sets up routing, and
// starts the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"promptdeck/internal/cache"
	"promptdeck/internal/catalog"
	"promptdeck/internal/config"
	"promptdeck/internal/database"
	"promptdeck/internal/handlers"
	"promptdeck/internal/middleware"
	"promptdeck/internal/router"
	"promptdeck/internal/session"
	"promptdeck/internal/storage"
	"promptdeck/internal/store"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL and run pending migrations.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey (query cache + session store).
	valkeyClient, err := cache.Connect(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword, cfg.ValkeyDB)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// In non-development environments session cookies are HTTPS-only.
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, cfg.SessionTTL, secureCookies)

	// Development mode surfaces error detail on 500 responses.
	handlers.SetDebugErrors(cfg.IsDev())

	// Data stores.
	userStore := store.NewUserStore(db)
	postStore := store.NewPostStore(db)
	categoryStore := store.NewCategoryStore(db)
	tagStore := store.NewTagStore(db)
	mediaStore := store.NewMediaStore(db)
	bookmarkStore := store.NewBookmarkStore(db)
	favoriteStore := store.NewFavoriteStore(db)

	// S3-compatible object storage (optional; nil disables media upload).
	storageClient, err := storage.New(
		cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
		cfg.S3Bucket, cfg.S3PublicURL,
	)
	if err != nil {
		slog.Error("failed to initialize S3 storage", "error", err)
		os.Exit(1)
	}
	if storageClient != nil {
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		slog.Warn("s3 storage not configured, media uploads disabled")
	}

	// Catalog service: the read path behind every public endpoint.
	taggedCache := cache.NewTaggedCache(valkeyClient)
	catalogService := catalog.NewService(postStore, categoryStore, bookmarkStore, favoriteStore, taggedCache, logger)

	// Per-IP rate limiter over a fixed window.
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	defer rateLimiter.Stop()

	// Handler groups.
	deps := router.Deps{
		Sessions:     sessionStore,
		RateLimiter:  rateLimiter,
		Public:       handlers.NewPublic(catalogService),
		Auth:         handlers.NewAuth(sessionStore, userStore),
		Interactions: handlers.NewInteractions(bookmarkStore, favoriteStore, postStore),
		Admin:        handlers.NewAdmin(postStore, categoryStore, tagStore, userStore, catalogService),
		Media:        handlers.NewMedia(mediaStore, storageClient),
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router.New(deps),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
