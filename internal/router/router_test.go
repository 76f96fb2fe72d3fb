// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router tests verify the routing configuration and middleware
// chains without a database: requests stop at the middleware under test.
package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"promptdeck/internal/catalog"
	"promptdeck/internal/handlers"
	"promptdeck/internal/session"
)

// testRouter wires a router with no backing services. Handlers that
// would touch the database must not be reached by these tests.
func testRouter() http.Handler {
	cat := catalog.NewService(nil, nil, nil, nil, nil, nil)
	sessions := session.NewStore(nil, 0, false)
	return New(Deps{
		Sessions:     sessions,
		Public:       handlers.NewPublic(cat),
		Auth:         handlers.NewAuth(sessions, nil),
		Interactions: handlers.NewInteractions(nil, nil, nil),
		Admin:        handlers.NewAdmin(nil, nil, nil, nil, cat),
	})
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	testRouter().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("GET /healthz: got %d, want 200", rec.Code)
	}
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field: got %v, want ok", body["status"])
	}
}

func TestMethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/healthz", nil)
	testRouter().ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("DELETE /healthz: got %d, want 405", rec.Code)
	}
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["success"] != false {
		t.Errorf("405 body should use the error envelope, got %v", body)
	}
	if allow := rec.Header().Get("Allow"); !strings.Contains(allow, http.MethodGet) {
		t.Errorf("Allow = %q, want it to list GET", allow)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
}

func TestAuthenticatedRoutesRejectAnonymous(t *testing.T) {
	routes := []string{"/api/me", "/api/me/bookmarks", "/api/me/favorites"}
	for _, route := range routes {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, route, nil)
		testRouter().ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("GET %s anonymous: got %d, want 401", route, rec.Code)
		}
	}
}

func TestAdminRoutesRejectAnonymous(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/posts/", nil)
	testRouter().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("GET /api/admin/posts anonymous: got %d, want 401", rec.Code)
	}
}

func TestMutationsRequireCSRFToken(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	testRouter().ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("POST without CSRF token: got %d, want 403", rec.Code)
	}
}

func TestCSRFBootstrapIssuesCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/csrf", nil)
	testRouter().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/csrf: got %d, want 200", rec.Code)
	}
	var issued bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == "pd_csrf" && c.Value != "" {
			issued = true
		}
	}
	if !issued {
		t.Error("no CSRF cookie issued on first visit")
	}
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if token, _ := body["token"].(string); token == "" {
		t.Error("bootstrap response carries no token")
	}
}

func TestSecurityHeadersApplied(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	testRouter().ServeHTTP(rec, req)

	if rec.Header().Get("Content-Security-Policy") == "" {
		t.Error("missing Content-Security-Policy header")
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing X-Content-Type-Options header")
	}
}
