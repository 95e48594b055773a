// File: internal/identity/service_test.go
package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"microtask_gateway/internal/common"
	"microtask_gateway/internal/session"
)

// fakeVerifier trusts every token and counts revocations.
type fakeVerifier struct {
	revocations int32
}

func (f *fakeVerifier) VerifyIDToken(ctx context.Context, idToken string) (*VerifiedToken, error) {
	claims, err := DecodeClaims(idToken)
	if err != nil {
		return nil, err
	}
	return &VerifiedToken{UID: claims.Subject, Email: claims.Email}, nil
}

func (f *fakeVerifier) RevokeRefreshTokens(ctx context.Context, uid string) error {
	atomic.AddInt32(&f.revocations, 1)
	return nil
}

func newTestService(t *testing.T, handler http.Handler) (*Service, session.Store, *fakeVerifier) {
	t.Helper()
	toolkit, _ := newTestToolkit(t, handler)
	store := session.NewMemoryStore(time.Hour, zap.NewNop())
	verifier := &fakeVerifier{}
	return NewService(toolkit, verifier, store, zap.NewNop()), store, verifier
}

func TestService_SignInEstablishesSession(t *testing.T) {
	idToken := makeIDToken(t, "worker@test.com", "Worker One", time.Now().Add(time.Hour))
	svc, store, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"idToken":      idToken,
			"refreshToken": "refresh-1",
			"expiresIn":    "3600",
			"localId":      "uid-123",
			"email":        "worker@test.com",
		})
	}))

	sess, err := svc.SignIn(context.Background(), "worker@test.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "worker@test.com", sess.Identity.Email)
	assert.Equal(t, "uid-123", sess.Identity.FirebaseUID)

	stored, ok := store.Get(sess.ID)
	require.True(t, ok)
	assert.Equal(t, "refresh-1", stored.RefreshToken)
}

func TestService_SignOutWinsExactlyOnce(t *testing.T) {
	idToken := makeIDToken(t, "worker@test.com", "", time.Now().Add(time.Hour))
	svc, store, verifier := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"idToken":      idToken,
			"refreshToken": "refresh-1",
			"expiresIn":    "3600",
			"localId":      "uid-123",
			"email":        "worker@test.com",
		})
	}))

	sess, err := svc.SignIn(context.Background(), "worker@test.com", "password123")
	require.NoError(t, err)

	const callers = 8
	var wg sync.WaitGroup
	var winners int32
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if svc.SignOut(context.Background(), sess.ID) {
				atomic.AddInt32(&winners, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), winners, "only one concurrent sign-out may win")
	assert.Equal(t, int32(1), verifier.revocations, "revocation fires once, from the winner")
	_, ok := store.Get(sess.ID)
	assert.False(t, ok)
}

func TestService_SignOutUnknownSession(t *testing.T) {
	svc, _, verifier := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	assert.False(t, svc.SignOut(context.Background(), "no-such-session"))
	assert.Zero(t, verifier.revocations)
}

func TestService_FreshTokenAlwaysRefreshes(t *testing.T) {
	var refreshes int32
	svc, store, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/token", r.URL.Path)
		n := atomic.AddInt32(&refreshes, 1)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id_token":      "minted-" + string(rune('0'+n)),
			"refresh_token": "refresh-next",
			"expires_in":    "3600",
		})
	}))

	sess := store.Create(session.Identity{Email: "worker@test.com"}, "stale-token", "refresh-1", time.Now())

	token, err := svc.FreshToken(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, "minted-1", token)

	token, err = svc.FreshToken(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, "minted-2", token)
	assert.Equal(t, int32(2), refreshes, "the stored token is never reused")

	stored, ok := store.Get(sess.ID)
	require.True(t, ok)
	assert.Equal(t, "minted-2", stored.IdentityToken)
	assert.Equal(t, "refresh-next", stored.RefreshToken)
}

func TestService_FreshTokenRejectionDestroysSession(t *testing.T) {
	svc, store, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/token", r.URL.Path)
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"message": "TOKEN_EXPIRED"},
		})
	}))

	sess := store.Create(session.Identity{Email: "worker@test.com"}, "stale-token", "revoked-refresh", time.Now())

	_, err := svc.FreshToken(context.Background(), sess)
	require.Error(t, err)

	apiErr, ok := err.(*common.APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, common.LoginPath, apiErr.Redirect, "the browser must be sent back to sign-in")

	_, ok = store.Get(sess.ID)
	assert.False(t, ok, "a session with a dead refresh token must not linger")
}

func TestService_FreshTokenNetworkFailureKeepsSession(t *testing.T) {
	// A closed server makes the refresh fail before it can be sent. An
	// unreachable provider is transient; the session survives.
	toolkit, srv := newTestToolkit(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	store := session.NewMemoryStore(time.Hour, zap.NewNop())
	svc := NewService(toolkit, &fakeVerifier{}, store, zap.NewNop())

	sess := store.Create(session.Identity{Email: "worker@test.com"}, "stale-token", "refresh-1", time.Now())

	_, err := svc.FreshToken(context.Background(), sess)
	require.Error(t, err)

	apiErr, ok := err.(*common.APIError)
	require.True(t, ok)
	assert.Equal(t, common.ErrUpstreamDown.Code, apiErr.Code)
	assert.Empty(t, apiErr.Redirect)

	_, ok = store.Get(sess.ID)
	assert.True(t, ok, "transient provider failures must not cost the session")
}
