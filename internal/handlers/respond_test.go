// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestInternalErrorHidesDetailByDefault(t *testing.T) {
	rec := httptest.NewRecorder()
	respondInternalError(rec, "listing failed", errors.New("pq: connection refused"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("got %d, want 500", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["error"] != "internal server error" {
		t.Errorf("error = %v, want the generic message", body["error"])
	}
}

func TestInternalErrorSurfacesDetailInDevMode(t *testing.T) {
	SetDebugErrors(true)
	t.Cleanup(func() { SetDebugErrors(false) })

	rec := httptest.NewRecorder()
	respondInternalError(rec, "listing failed", errors.New("pq: connection refused"))

	body := decodeBody(t, rec)
	msg, _ := body["error"].(string)
	if !strings.Contains(msg, "pq: connection refused") {
		t.Errorf("error = %q, want the underlying detail in dev mode", msg)
	}
}
