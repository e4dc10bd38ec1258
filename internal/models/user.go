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
	RoleOwner  Role = "owner"
	RoleMember Role = "member"
)

// Plan represents a billing plan that limits how many QR designs a user
// may keep saved.
type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
)

// User represents an account holder with authentication and 2FA fields.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize the hash
	DisplayName  string    `json:"display_name"`
	Role         Role      `json:"role"`
	Plan         Plan      `json:"plan"`
	TOTPSecret   *string   `json:"-"` // Nullable; set during 2FA setup
	TOTPEnabled  bool      `json:"totp_enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsOwner returns true if the user has the owner role.
func (u *User) IsOwner() bool {
	return u.Role == RoleOwner
}

// Needs2FASetup returns true if the user has not completed 2FA enrollment.
func (u *User) Needs2FASetup() bool {
	return !u.TOTPEnabled
}

// QRLimit returns the maximum number of saved QR designs for the user's
// plan. freeLimit comes from configuration; the pro plan is unlimited.
func (u *User) QRLimit(freeLimit int) int {
	if u.Plan == PlanPro {
		return -1
	}
	return freeLimit
}
