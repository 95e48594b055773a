// File: internal/auth/oauth_service.go
package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"microtask_gateway/internal/common"
	"microtask_gateway/internal/config"
	"microtask_gateway/internal/identity"
	"microtask_gateway/internal/session"
)

// GoogleService drives the federated sign-in flow: Google OAuth for the
// consent dance, then the resulting ID token is exchanged with Firebase for
// a session.
type GoogleService interface {
	LoginURL(c *gin.Context) (string, error)
	HandleCallback(c *gin.Context, code, state string) (*session.Session, error)
}

type googleService struct {
	cfg         *config.Config
	identitySvc *identity.Service
	logger      *zap.Logger
}

// NewGoogleService creates the Google federated sign-in service.
func NewGoogleService(cfg *config.Config, identitySvc *identity.Service, logger *zap.Logger) GoogleService {
	return &googleService{
		cfg:         cfg,
		identitySvc: identitySvc,
		logger:      logger.Named("GoogleService"),
	}
}

func (s *googleService) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.cfg.GoogleOAuthClientID,
		ClientSecret: s.cfg.GoogleOAuthClientSecret,
		RedirectURL:  s.cfg.GoogleOAuthRedirectURL,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     google.Endpoint,
	}
}

// LoginURL generates the Google consent URL with a CSRF state cookie.
func (s *googleService) LoginURL(c *gin.Context) (string, error) {
	if s.cfg.GoogleOAuthClientID == "" {
		return "", common.ErrInternalServer.WithDetails("Google sign-in is not configured.")
	}

	state := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.cfg.OAuthStateCookieName, state, s.cfg.OAuthCookieMaxAgeMin*60, "/", "", s.cfg.SessionCookieSecure, true)

	return s.oauthConfig().AuthCodeURL(state), nil
}

// HandleCallback validates state, exchanges the authorization code and signs
// the user into Firebase with the Google ID token.
func (s *googleService) HandleCallback(c *gin.Context, code, state string) (*session.Session, error) {
	storedState, err := c.Cookie(s.cfg.OAuthStateCookieName)
	if err != nil || storedState == "" || state != storedState {
		s.logger.Error("Google OAuth state mismatch",
			zap.String("received_state", state),
			zap.String("stored_state", storedState),
		)
		return nil, common.ErrBadRequest.WithDetails("OAuth state mismatch. Possible CSRF attack.")
	}

	token, err := s.oauthConfig().Exchange(c.Request.Context(), code)
	if err != nil {
		s.logger.Error("Failed to exchange Google auth code for token", zap.Error(err))
		return nil, common.ErrUpstreamDown.WithDetails("Could not exchange Google auth code.")
	}

	googleIDToken, ok := token.Extra("id_token").(string)
	if !ok || googleIDToken == "" {
		s.logger.Error("Google token response missing id_token")
		return nil, common.ErrInternalServer.WithDetails("Google did not return an identity token.")
	}

	return s.identitySvc.SignInWithGoogle(c.Request.Context(), googleIDToken, s.cfg.GoogleOAuthRedirectURL)
}
