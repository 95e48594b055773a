// File: internal/identity/model.go
package identity

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"microtask_gateway/internal/session"
)

// AuthResult is what every sign-in/sign-up path produces: who the user is
// plus the freshly minted token pair.
type AuthResult struct {
	Identity     session.Identity
	IDToken      string
	RefreshToken string
	TokenExpiry  time.Time
}

// TokenClaims is the subset of Firebase ID-token claims the gateway reads.
type TokenClaims struct {
	Subject   string
	Email     string
	Name      string
	Picture   string
	ExpiresAt time.Time
}

// DecodeClaims extracts claims from a Firebase ID token without verifying the
// signature. Verification is the admin SDK's job; this is only used to read
// profile fields and expiry out of tokens the toolkit endpoints just issued.
func DecodeClaims(idToken string) (*TokenClaims, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(idToken, claims); err != nil {
		return nil, fmt.Errorf("failed to decode identity token: %w", err)
	}

	out := &TokenClaims{}
	if sub, err := claims.GetSubject(); err == nil {
		out.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	if v, ok := claims["email"].(string); ok {
		out.Email = v
	}
	if v, ok := claims["name"].(string); ok {
		out.Name = v
	}
	if v, ok := claims["picture"].(string); ok {
		out.Picture = v
	}
	return out, nil
}
