// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handler groups for the marketplace
// API. Every response uses a single JSON envelope: successes carry
// success=true plus the payload, failures carry success=false and an
// error message that never exposes internals.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"promptdeck/internal/middleware"
	"promptdeck/internal/models"
	"promptdeck/internal/session"
)

// respondJSON writes the success envelope with the given payload fields.
func respondJSON(w http.ResponseWriter, status int, payload map[string]any) {
	body := map[string]any{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

// respondError writes the failure envelope. message must be safe for
// clients; internal detail belongs in the log, not the body.
func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   message,
	})
}

// respondValidationError writes a 400 with per-field messages.
func respondValidationError(w http.ResponseWriter, fields map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   "validation failed",
		"fields":  fields,
	})
}

// debugErrors controls whether 500 responses carry the underlying error
// text. On in development only; production responses stay generic.
var debugErrors bool

// SetDebugErrors toggles error detail on 500 responses. Call once at
// startup, before the server accepts traffic.
func SetDebugErrors(on bool) { debugErrors = on }

// respondInternalError logs the real error and returns a 500. The error
// detail reaches the client only in development mode.
func respondInternalError(w http.ResponseWriter, context string, err error) {
	slog.Error(context, "error", err)
	if debugErrors && err != nil {
		respondError(w, http.StatusInternalServerError, "internal server error: "+err.Error())
		return
	}
	respondError(w, http.StatusInternalServerError, "internal server error")
}

// viewerFromSession builds the lightweight viewer identity used for
// gating and annotation. The session snapshot carries role and plan as
// of login; billing-cycle precision is not needed at the read edge.
func viewerFromSession(sess *session.Data) *models.User {
	if sess == nil {
		return nil
	}
	return &models.User{
		ID:          sess.UserID,
		Email:       sess.Email,
		DisplayName: sess.DisplayName,
		Role:        models.Role(sess.Role),
		Plan:        models.Plan(sess.Plan),
	}
}

// sessionFrom is a thin alias so handlers read naturally.
func sessionFrom(r *http.Request) *session.Data {
	return middleware.SessionFromCtx(r.Context())
}
