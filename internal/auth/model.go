// File: internal/auth/model.go
package auth

import (
	"time"

	"microtask_gateway/internal/profile"
	"microtask_gateway/internal/session"
)

// LoginRequest defines the structure for login requests. From carries the
// originally requested path the guard remembered, echoed back as return_to.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	From     string `json:"from,omitempty"`
}

// RegisterRequest defines the structure for sign-up requests. Role is picked
// on the registration form; admin accounts are only created by other admins.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
	PhotoURL string `json:"photo_url,omitempty" binding:"omitempty,url"`
	Role     string `json:"role" binding:"required,oneof=worker buyer"`
}

// SessionResponse is what every successful sign-in path returns.
type SessionResponse struct {
	User      session.Identity `json:"user"`
	Profile   *profile.Profile `json:"profile,omitempty"`
	ExpiresAt time.Time        `json:"expires_at"`
	// ReturnTo is the path the browser should navigate to after sign-in.
	ReturnTo string `json:"return_to,omitempty"`
}
