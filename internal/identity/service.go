// File: internal/identity/service.go
package identity

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"microtask_gateway/internal/common"
	"microtask_gateway/internal/session"
)

// Service is the identity provider adapter: sign-in, sign-up, sign-out and
// per-request token minting, backed by the Identity Toolkit endpoints and the
// Firebase Admin SDK. Failures surface directly to the caller; there is no
// retry logic at this layer.
type Service struct {
	toolkit  *ToolkitClient
	verifier Verifier
	store    session.Store
	logger   *zap.Logger
}

// NewService creates the identity provider adapter.
func NewService(toolkit *ToolkitClient, verifier Verifier, store session.Store, logger *zap.Logger) *Service {
	return &Service{
		toolkit:  toolkit,
		verifier: verifier,
		store:    store,
		logger:   logger.Named("IdentityService"),
	}
}

// SignIn authenticates email/password credentials and creates a session.
func (s *Service) SignIn(ctx context.Context, email, password string) (*session.Session, error) {
	result, err := s.toolkit.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.establish(ctx, result)
}

// SignUp registers a new account, applies the profile fields from the
// registration form, and creates a session.
func (s *Service) SignUp(ctx context.Context, email, password, displayName, photoURL string) (*session.Session, error) {
	result, err := s.toolkit.SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}

	if displayName != "" || photoURL != "" {
		if err := s.toolkit.UpdateProfile(ctx, result.IDToken, displayName, photoURL); err != nil {
			// The account exists either way; the profile fields are cosmetic.
			s.logger.Warn("Failed to set profile on new account", zap.String("email", email), zap.Error(err))
		}
		result.Identity.DisplayName = displayName
		result.Identity.PhotoURL = photoURL
	}

	return s.establish(ctx, result)
}

// SignInWithGoogle exchanges a Google ID token for a Firebase session
// (federated sign-in).
func (s *Service) SignInWithGoogle(ctx context.Context, googleIDToken, requestURI string) (*session.Session, error) {
	result, err := s.toolkit.SignInWithGoogleIDToken(ctx, googleIDToken, requestURI)
	if err != nil {
		return nil, err
	}
	return s.establish(ctx, result)
}

// SignOut destroys the session and best-effort revokes the account's refresh
// tokens. Revocation failures are swallowed: the session is gone regardless,
// and the identity tokens age out on their own. Returns whether this call was
// the one that actually removed the session.
func (s *Service) SignOut(ctx context.Context, sessionID string) bool {
	sess, ok := s.store.Get(sessionID)
	if !ok {
		return false
	}
	if !s.store.Destroy(sessionID) {
		// A concurrent caller got here first.
		return false
	}

	if err := s.verifier.RevokeRefreshTokens(ctx, sess.Identity.FirebaseUID); err != nil {
		s.logger.Warn("Best-effort token revocation failed during sign-out",
			zap.String("email", sess.Identity.Email),
			zap.Error(err),
		)
	}
	return true
}

// FreshToken re-mints a short-lived identity token for the session. It is
// called before every upstream request; the session's stored token is never
// reused. The store update races freely with concurrent mints (last write
// wins, every written token was valid when written).
func (s *Service) FreshToken(ctx context.Context, sess *session.Session) (string, error) {
	idToken, refreshToken, expiry, err := s.toolkit.Refresh(ctx, sess.RefreshToken)
	if err != nil {
		var apiErr *common.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			// A rejected refresh token never recovers: the account was
			// disabled or its tokens were revoked by a sign-out elsewhere.
			// Tear the session down now so the browser gets sent back to
			// sign-in instead of failing every call until the TTL.
			if s.store.Destroy(sess.ID) {
				s.logger.Warn("Session destroyed after refresh token rejection",
					zap.String("email", sess.Identity.Email),
				)
			}
			return "", apiErr.WithRedirect(common.LoginPath)
		}
		return "", err
	}
	s.store.UpdateTokens(sess.ID, idToken, refreshToken, expiry)
	return idToken, nil
}

// Verify checks an identity token's authenticity via the admin SDK.
func (s *Service) Verify(ctx context.Context, idToken string) (*VerifiedToken, error) {
	return s.verifier.VerifyIDToken(ctx, idToken)
}

// establish verifies the minted token's authenticity before trusting its
// identity, then creates the session.
func (s *Service) establish(ctx context.Context, result *AuthResult) (*session.Session, error) {
	verified, err := s.verifier.VerifyIDToken(ctx, result.IDToken)
	if err != nil {
		return nil, err
	}

	identity := result.Identity
	if identity.FirebaseUID == "" {
		identity.FirebaseUID = verified.UID
	}
	if identity.Email == "" {
		identity.Email = verified.Email
	}

	sess := s.store.Create(identity, result.IDToken, result.RefreshToken, result.TokenExpiry)
	s.logger.Info("Session established", zap.String("email", identity.Email))
	return sess, nil
}
