// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"promptdeck/internal/models"
	"promptdeck/internal/session"
	"promptdeck/internal/store"
)

// totpIssuer is the issuer label shown in authenticator apps.
const totpIssuer = "PromptDeck"

// Auth groups all authentication-related HTTP handlers.
type Auth struct {
	sessions  *session.Store
	userStore *store.UserStore
}

// NewAuth creates a new Auth handler group.
func NewAuth(sessions *session.Store, userStore *store.UserStore) *Auth {
	return &Auth{
		sessions:  sessions,
		userStore: userStore,
	}
}

// Register handles POST /api/auth/register. New accounts always start
// with the user role and the free plan.
func (a *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		Password    string `json:"password"`
		DisplayName string `json:"display_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if fields := validateCredentials(req.Email, req.Password, req.DisplayName); fields != nil {
		respondValidationError(w, fields)
		return
	}

	existing, err := a.userStore.FindByEmail(req.Email)
	if err != nil {
		respondInternalError(w, "register lookup failed", err)
		return
	}
	if existing != nil {
		respondValidationError(w, map[string]string{"email": "an account with this email already exists"})
		return
	}

	user, err := a.userStore.Create(req.Email, req.Password, strings.TrimSpace(req.DisplayName), models.RoleUser)
	if err != nil {
		respondInternalError(w, "register create failed", err)
		return
	}

	if _, err := a.sessions.Create(r.Context(), w, &session.Data{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        string(user.Role),
		Plan:        string(user.Plan),
		TwoFADone:   true, // regular accounts have no second factor
	}); err != nil {
		respondInternalError(w, "session create failed", err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{"user": user})
}

// Login handles POST /api/auth/login. Admin accounts get a session with
// TwoFADone=false and must complete TOTP verification before the admin
// API admits them.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	user, err := a.userStore.FindByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		respondInternalError(w, "login lookup failed", err)
		return
	}

	// One message for both unknown email and bad password.
	if user == nil || !a.userStore.CheckPassword(user, req.Password) {
		respondError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	twoFADone := !user.IsAdmin()
	if _, err := a.sessions.Create(r.Context(), w, &session.Data{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        string(user.Role),
		Plan:        string(user.Plan),
		TwoFADone:   twoFADone,
	}); err != nil {
		respondInternalError(w, "session create failed", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"user":            user,
		"requires_2fa":    user.IsAdmin(),
		"needs_2fa_setup": user.Needs2FASetup(),
	})
}

// Logout handles POST /api/auth/logout.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Warn("session destroy failed", "error", err)
	}
	respondJSON(w, http.StatusOK, nil)
}

// Me handles GET /api/me for the authenticated user's profile.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if sess == nil {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	user, err := a.userStore.FindByID(sess.UserID)
	if err != nil {
		respondInternalError(w, "me lookup failed", err)
		return
	}
	if user == nil {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"user": user})
}

// TwoFASetup handles POST /api/auth/2fa/setup. It generates a fresh
// TOTP secret and returns it with a QR code for authenticator apps.
func (a *Auth) TwoFASetup(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if sess == nil {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: sess.Email,
	})
	if err != nil {
		respondInternalError(w, "totp generate failed", err)
		return
	}

	if err := a.userStore.SetTOTPSecret(sess.UserID, key.Secret()); err != nil {
		respondInternalError(w, "save totp secret failed", err)
		return
	}

	qrPNG, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		respondInternalError(w, "qr code generation failed", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"secret":  key.Secret(),
		"qr_code": base64.StdEncoding.EncodeToString(qrPNG),
	})
}

// TwoFAVerify handles POST /api/auth/2fa/verify. A valid code enables
// TOTP on first-time setup and marks this session verified.
func (a *Auth) TwoFAVerify(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if sess == nil {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	user, err := a.userStore.FindByID(sess.UserID)
	if err != nil || user == nil {
		respondInternalError(w, "user lookup for 2fa failed", err)
		return
	}
	if user.TOTPSecret == nil {
		respondError(w, http.StatusBadRequest, "two-factor setup has not been started")
		return
	}

	if !totp.Validate(req.Code, *user.TOTPSecret) {
		respondError(w, http.StatusUnauthorized, "invalid verification code")
		return
	}

	// First successful verification completes enrollment.
	if !user.TOTPEnabled {
		if err := a.userStore.EnableTOTP(user.ID); err != nil {
			respondInternalError(w, "enable totp failed", err)
			return
		}
	}

	sess.TwoFADone = true
	if err := a.sessions.Update(r.Context(), r, sess); err != nil {
		respondInternalError(w, "session update failed", err)
		return
	}

	respondJSON(w, http.StatusOK, nil)
}
