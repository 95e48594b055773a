// File: internal/identity/firebase.go
package identity

import (
	"context"
	"fmt"
	"path/filepath"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"microtask_gateway/internal/config"
)

// VerifiedToken is the provider-neutral result of ID token verification.
type VerifiedToken struct {
	UID    string
	Email  string
	Claims map[string]interface{}
}

// Verifier is the server-side half of the identity provider: token
// verification and refresh-token revocation. Tests substitute a fake.
type Verifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*VerifiedToken, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

// FirebaseVerifier backs Verifier with the Firebase Admin SDK.
type FirebaseVerifier struct {
	authClient *auth.Client
	logger     *zap.Logger
}

var _ Verifier = (*FirebaseVerifier)(nil)

// NewFirebaseVerifier initializes the Firebase Admin SDK from the configured
// service account key.
func NewFirebaseVerifier(cfg *config.Config, logger *zap.Logger) (*FirebaseVerifier, error) {
	if cfg.FirebaseServiceAccountKeyPath == "" {
		logger.Error("Firebase service account key path is not configured.")
		return nil, fmt.Errorf("firebase service account key path is required")
	}

	cleanPath := filepath.Clean(cfg.FirebaseServiceAccountKeyPath)
	opt := option.WithCredentialsFile(cleanPath)

	var app *firebase.App
	var err error
	if cfg.FirebaseProjectID != "" {
		conf := &firebase.Config{ProjectID: cfg.FirebaseProjectID}
		app, err = firebase.NewApp(context.Background(), conf, opt)
	} else {
		// Let the SDK infer the project from the credentials.
		app, err = firebase.NewApp(context.Background(), nil, opt)
	}
	if err != nil {
		logger.Error("Failed to initialize Firebase Admin SDK app", zap.Error(err), zap.String("keyPath", cleanPath))
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}

	authClient, err := app.Auth(context.Background())
	if err != nil {
		logger.Error("Failed to get Firebase Auth client", zap.Error(err))
		return nil, fmt.Errorf("error getting Firebase Auth client: %w", err)
	}

	logger.Info("Firebase Admin SDK initialized successfully.")
	return &FirebaseVerifier{
		authClient: authClient,
		logger:     logger.Named("FirebaseVerifier"),
	}, nil
}

// VerifyIDToken verifies a Firebase ID token and returns its claims.
func (v *FirebaseVerifier) VerifyIDToken(ctx context.Context, idToken string) (*VerifiedToken, error) {
	if idToken == "" {
		return nil, fmt.Errorf("ID token must not be empty")
	}

	token, err := v.authClient.VerifyIDToken(ctx, idToken)
	if err != nil {
		v.logger.Warn("Firebase ID token verification failed", zap.Error(err))
		return nil, fmt.Errorf("failed to verify Firebase ID token: %w", err)
	}

	email, _ := token.Claims["email"].(string)
	return &VerifiedToken{
		UID:    token.UID,
		Email:  email,
		Claims: token.Claims,
	}, nil
}

// RevokeRefreshTokens revokes all refresh tokens for a given user.
func (v *FirebaseVerifier) RevokeRefreshTokens(ctx context.Context, uid string) error {
	if err := v.authClient.RevokeRefreshTokens(ctx, uid); err != nil {
		v.logger.Error("Failed to revoke refresh tokens", zap.Error(err), zap.String("uid", uid))
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}
	v.logger.Info("Successfully revoked refresh tokens for user", zap.String("uid", uid))
	return nil
}
