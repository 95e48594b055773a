// File: internal/identity/toolkit.go
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"microtask_gateway/internal/common"
	"microtask_gateway/internal/config"
	"microtask_gateway/internal/session"
)

// ToolkitClient talks to the Google Identity Toolkit and Secure Token REST
// endpoints with the project's web API key. This is the half of the identity
// provider the browser SDK would normally own: email/password sign-in,
// account creation, federated credential exchange, and token refresh.
type ToolkitClient struct {
	apiKey      string
	toolkitBase string
	secureBase  string
	httpClient  *http.Client
	logger      *zap.Logger
}

// NewToolkitClient creates a toolkit client from configuration.
func NewToolkitClient(cfg *config.Config, logger *zap.Logger) *ToolkitClient {
	return &ToolkitClient{
		apiKey:      cfg.FirebaseWebAPIKey,
		toolkitBase: strings.TrimRight(cfg.IdentityToolkitBaseURL, "/"),
		secureBase:  strings.TrimRight(cfg.SecureTokenBaseURL, "/"),
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		logger:      logger.Named("IdentityToolkit"),
	}
}

type toolkitAuthResponse struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
}

type toolkitErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// SignIn exchanges email/password credentials for a token pair. Wrong
// credentials surface as common.ErrInvalidCredentials; nothing is retried.
func (t *ToolkitClient) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	body := map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}
	resp, err := t.post(ctx, "/v1/accounts:signInWithPassword", body)
	if err != nil {
		return nil, err
	}
	return t.toAuthResult(resp)
}

// SignUp creates an email/password account and returns its first token pair.
func (t *ToolkitClient) SignUp(ctx context.Context, email, password string) (*AuthResult, error) {
	body := map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}
	resp, err := t.post(ctx, "/v1/accounts:signUp", body)
	if err != nil {
		return nil, err
	}
	return t.toAuthResult(resp)
}

// UpdateProfile sets display name and photo URL on the account behind the
// given ID token. Used right after sign-up so the stored identity matches the
// registration form.
func (t *ToolkitClient) UpdateProfile(ctx context.Context, idToken, displayName, photoURL string) error {
	body := map[string]interface{}{
		"idToken":           idToken,
		"displayName":       displayName,
		"photoUrl":          photoURL,
		"returnSecureToken": false,
	}
	_, err := t.post(ctx, "/v1/accounts:update", body)
	return err
}

// SignInWithGoogleIDToken exchanges a Google OAuth ID token for a Firebase
// token pair (the federated sign-in path).
func (t *ToolkitClient) SignInWithGoogleIDToken(ctx context.Context, googleIDToken, requestURI string) (*AuthResult, error) {
	body := map[string]interface{}{
		"postBody":            "id_token=" + url.QueryEscape(googleIDToken) + "&providerId=google.com",
		"requestUri":          requestURI,
		"returnSecureToken":   true,
		"returnIdpCredential": true,
	}
	resp, err := t.post(ctx, "/v1/accounts:signInWithIdp", body)
	if err != nil {
		return nil, err
	}
	return t.toAuthResult(resp)
}

type refreshResponse struct {
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    string `json:"expires_in"`
}

// Refresh mints a fresh short-lived identity token from a refresh token.
// Identity tokens must be re-minted before every upstream request rather
// than reused from the session.
func (t *ToolkitClient) Refresh(ctx context.Context, refreshToken string) (idToken, newRefreshToken string, expiry time.Time, err error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	endpoint := fmt.Sprintf("%s/v1/token?key=%s", t.secureBase, url.QueryEscape(t.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("failed to build refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	httpResp, err := t.httpClient.Do(req)
	if err != nil {
		t.logger.Warn("Secure token refresh failed to send", zap.Error(err))
		return "", "", time.Time{}, common.ErrUpstreamDown.WithDetails("Identity provider unreachable.")
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(httpResp.Body)
		t.logger.Warn("Secure token refresh rejected",
			zap.Int("status", httpResp.StatusCode),
			zap.ByteString("body", raw),
		)
		return "", "", time.Time{}, common.ErrUnauthorized.WithDetails("Identity token refresh was rejected.")
	}

	var parsed refreshResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&parsed); err != nil {
		return "", "", time.Time{}, fmt.Errorf("failed to decode refresh response: %w", err)
	}

	seconds, _ := strconv.Atoi(parsed.ExpiresIn)
	return parsed.IDToken, parsed.RefreshToken, time.Now().Add(time.Duration(seconds) * time.Second), nil
}

func (t *ToolkitClient) post(ctx context.Context, path string, body map[string]interface{}) (*toolkitAuthResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal toolkit request: %w", err)
	}

	endpoint := fmt.Sprintf("%s%s?key=%s", t.toolkitBase, path, url.QueryEscape(t.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build toolkit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := t.httpClient.Do(req)
	if err != nil {
		t.logger.Warn("Identity toolkit request failed to send", zap.String("path", path), zap.Error(err))
		return nil, common.ErrUpstreamDown.WithDetails("Identity provider unreachable.")
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, t.mapError(httpResp, path)
	}

	var parsed toolkitAuthResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode toolkit response: %w", err)
	}
	return &parsed, nil
}

// mapError converts toolkit error payloads to the gateway taxonomy.
func (t *ToolkitClient) mapError(resp *http.Response, path string) error {
	var parsed toolkitErrorResponse
	raw, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(raw, &parsed)
	message := parsed.Error.Message

	t.logger.Warn("Identity toolkit rejected request",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("reason", message),
	)

	switch {
	case strings.HasPrefix(message, "EMAIL_NOT_FOUND"),
		strings.HasPrefix(message, "INVALID_PASSWORD"),
		strings.HasPrefix(message, "INVALID_LOGIN_CREDENTIALS"),
		strings.HasPrefix(message, "USER_DISABLED"):
		return common.ErrInvalidCredentials
	case strings.HasPrefix(message, "EMAIL_EXISTS"):
		return common.ErrConflict.WithDetails("An account with this email already exists.")
	case strings.HasPrefix(message, "WEAK_PASSWORD"):
		return common.NewValidationAPIError(map[string]string{"password": "Password should be at least 6 characters."})
	default:
		return common.ErrInternalServer.WithDetails(fmt.Sprintf("Identity provider error: %s", message))
	}
}

// toAuthResult builds an AuthResult, preferring claims decoded from the ID
// token over the response envelope (the token carries picture and name for
// federated accounts where the envelope does not).
func (t *ToolkitClient) toAuthResult(resp *toolkitAuthResponse) (*AuthResult, error) {
	claims, err := DecodeClaims(resp.IDToken)
	if err != nil {
		return nil, err
	}

	identity := session.Identity{
		FirebaseUID: resp.LocalID,
		Email:       resp.Email,
		DisplayName: resp.DisplayName,
		PhotoURL:    claims.Picture,
	}
	if identity.FirebaseUID == "" {
		identity.FirebaseUID = claims.Subject
	}
	if identity.Email == "" {
		identity.Email = claims.Email
	}
	if identity.DisplayName == "" {
		identity.DisplayName = claims.Name
	}

	expiry := claims.ExpiresAt
	if expiry.IsZero() {
		seconds, _ := strconv.Atoi(resp.ExpiresIn)
		expiry = time.Now().Add(time.Duration(seconds) * time.Second)
	}

	return &AuthResult{
		Identity:     identity,
		IDToken:      resp.IDToken,
		RefreshToken: resp.RefreshToken,
		TokenExpiry:  expiry,
	}, nil
}
