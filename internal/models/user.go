// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a user's permission level in the system.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Plan represents a user's subscription tier. The plan is set by the
// external billing provider; this service only reads it to gate
// premium content at the presentation layer.
type Plan string

const (
	PlanFree    Plan = "free"
	PlanPremium Plan = "premium"
)

// User represents a marketplace account. Billing fields (customer,
// subscription, period end) are opaque references owned by the payment
// provider and never interpreted here beyond premium gating.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize the hash
	DisplayName  string    `json:"display_name"`
	Role         Role      `json:"role"`
	Plan         Plan      `json:"plan"`
	AuthProvider string    `json:"auth_provider"` // "local", "google", ...

	// Billing references, owned by the external payment provider.
	BillingCustomerID *string    `json:"-"`
	SubscriptionID    *string    `json:"-"`
	PlanPeriodEnd     *time.Time `json:"-"`

	// TOTP two-factor fields. Admin accounts must complete enrollment
	// before reaching the admin API.
	TOTPSecret  *string `json:"-"`
	TOTPEnabled bool    `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsAdmin returns true if the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// HasPremium reports whether the user currently has premium access.
// A premium plan whose billing period has already ended counts as free.
func (u *User) HasPremium() bool {
	if u.Plan != PlanPremium {
		return false
	}
	if u.PlanPeriodEnd != nil && u.PlanPeriodEnd.Before(time.Now()) {
		return false
	}
	return true
}

// Needs2FASetup returns true if an admin has not completed TOTP enrollment.
func (u *User) Needs2FASetup() bool {
	return u.Role == RoleAdmin && !u.TOTPEnabled
}
