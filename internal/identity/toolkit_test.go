// File: internal/identity/toolkit_test.go
package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"microtask_gateway/internal/common"
	"microtask_gateway/internal/config"
)

func makeIDToken(t *testing.T, email, name string, expiry time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":     "uid-123",
		"email":   email,
		"name":    name,
		"picture": "https://img.test/avatar.png",
		"exp":     expiry.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func newTestToolkit(t *testing.T, handler http.Handler) (*ToolkitClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		FirebaseWebAPIKey:      "test-api-key",
		IdentityToolkitBaseURL: srv.URL,
		SecureTokenBaseURL:     srv.URL,
	}
	return NewToolkitClient(cfg, zap.NewNop()), srv
}

func TestToolkitClient_SignInSuccess(t *testing.T) {
	expiry := time.Now().Add(time.Hour).Truncate(time.Second)
	idToken := makeIDToken(t, "worker@test.com", "Worker One", expiry)

	client, _ := newTestToolkit(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/accounts:signInWithPassword", r.URL.Path)
		assert.Equal(t, "test-api-key", r.URL.Query().Get("key"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "worker@test.com", body["email"])
		assert.Equal(t, true, body["returnSecureToken"])

		json.NewEncoder(w).Encode(map[string]string{
			"idToken":      idToken,
			"refreshToken": "refresh-1",
			"expiresIn":    "3600",
			"localId":      "uid-123",
			"email":        "worker@test.com",
		})
	}))

	result, err := client.SignIn(context.Background(), "worker@test.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "uid-123", result.Identity.FirebaseUID)
	assert.Equal(t, "worker@test.com", result.Identity.Email)
	// Display name and photo come out of the token claims when the envelope
	// leaves them blank.
	assert.Equal(t, "Worker One", result.Identity.DisplayName)
	assert.Equal(t, "https://img.test/avatar.png", result.Identity.PhotoURL)
	assert.Equal(t, "refresh-1", result.RefreshToken)
	assert.WithinDuration(t, expiry, result.TokenExpiry, time.Second)
}

func TestToolkitClient_SignInInvalidCredentials(t *testing.T) {
	client, _ := newTestToolkit(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{"code": 400, "message": "INVALID_LOGIN_CREDENTIALS"},
		})
	}))

	_, err := client.SignIn(context.Background(), "worker@test.com", "wrong")
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, common.ErrInvalidCredentials.Code, apiErr.Code)
}

func TestToolkitClient_SignUpEmailExists(t *testing.T) {
	client, _ := newTestToolkit(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{"code": 400, "message": "EMAIL_EXISTS"},
		})
	}))

	_, err := client.SignUp(context.Background(), "taken@test.com", "password123")
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
}

func TestToolkitClient_Refresh(t *testing.T) {
	client, _ := newTestToolkit(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "refresh-1", r.PostForm.Get("refresh_token"))

		json.NewEncoder(w).Encode(map[string]string{
			"id_token":      "fresh-id-token",
			"refresh_token": "refresh-2",
			"expires_in":    "3600",
		})
	}))

	idToken, refreshToken, expiry, err := client.Refresh(context.Background(), "refresh-1")
	require.NoError(t, err)
	assert.Equal(t, "fresh-id-token", idToken)
	assert.Equal(t, "refresh-2", refreshToken)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiry, 5*time.Second)
}

func TestToolkitClient_RefreshRejected(t *testing.T) {
	client, _ := newTestToolkit(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{"code": 400, "message": "TOKEN_EXPIRED"},
		})
	}))

	_, _, _, err := client.Refresh(context.Background(), "dead-refresh")
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}
