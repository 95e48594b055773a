// File: internal/profile/resolver_test.go
package profile

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"microtask_gateway/internal/common"
	"microtask_gateway/internal/config"
	"microtask_gateway/internal/session"
	"microtask_gateway/internal/upstream"
)

type staticMinter struct{}

func (staticMinter) FreshToken(ctx context.Context, sess *session.Session) (string, error) {
	return "test-token", nil
}

type nopEvents struct{}

func (nopEvents) Forbidden(ctx context.Context, sess *session.Session)    {}
func (nopEvents) Unauthorized(ctx context.Context, sess *session.Session) {}

func newTestResolver(t *testing.T, handler http.Handler) (*Resolver, session.Store) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		UpstreamBaseURL:        srv.URL,
		UpstreamRequestTimeout: 5 * time.Second,
	}
	client := upstream.NewClient(cfg, staticMinter{}, nopEvents{}, zap.NewNop())
	store := session.NewMemoryStore(time.Hour, zap.NewNop())
	return NewResolver(client, store, zap.NewNop()), store
}

func testSession() *session.Session {
	return &session.Session{ID: "sess-1", Identity: session.Identity{Email: "buyer@test.com"}}
}

func TestResolver_ResolveCachesByEmail(t *testing.T) {
	var hits int32
	resolver, _ := newTestResolver(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, "/users/buyer@test.com", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"email":        "buyer@test.com",
			"display_name": "Buyer One",
			"role":         "buyer",
			"coin_balance": 50,
		})
	}))

	sess := testSession()
	prof, err := resolver.Resolve(context.Background(), sess, "buyer@test.com")
	require.NoError(t, err)
	assert.Equal(t, common.RoleBuyer, prof.DashboardRole())
	assert.Equal(t, 50, prof.CoinBalance)

	// Second resolve is a cache hit.
	_, err = resolver.Resolve(context.Background(), sess, "buyer@test.com")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestResolver_EmptyEmailNeverReachesTheWire(t *testing.T) {
	resolver, _ := newTestResolver(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request should not have been made")
	}))

	_, err := resolver.Resolve(context.Background(), testSession(), "")
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}

func TestResolver_MissingProfileYieldsSentinelRole(t *testing.T) {
	resolver, _ := newTestResolver(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	prof, err := resolver.Resolve(context.Background(), testSession(), "ghost@test.com")
	require.NoError(t, err)
	assert.Equal(t, common.RoleSentinelUser, prof.Role)
	assert.Equal(t, common.RoleUnknown, prof.DashboardRole())
	assert.Zero(t, prof.CoinBalance)
}

func TestResolver_AdjustCoinsIsOptimisticAndStale(t *testing.T) {
	resolver, _ := newTestResolver(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"email":        "worker@test.com",
			"role":         "worker",
			"coin_balance": 10,
		})
	}))

	sess := testSession()
	_, err := resolver.Resolve(context.Background(), sess, "worker@test.com")
	require.NoError(t, err)

	balance, ok := resolver.AdjustCoins("worker@test.com", 50)
	require.True(t, ok)
	assert.Equal(t, 60, balance)

	prof, err := resolver.Resolve(context.Background(), sess, "worker@test.com")
	require.NoError(t, err)
	assert.Equal(t, 60, prof.CoinBalance)
	assert.True(t, prof.Stale, "optimistic adjustment must mark the profile stale")

	// A miss is a no-op, not an error.
	_, ok = resolver.AdjustCoins("nobody@test.com", 5)
	assert.False(t, ok)
}

func TestResolver_RefetchReconcilesWithServer(t *testing.T) {
	serverBalance := int32(10)
	resolver, _ := newTestResolver(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"email":        "worker@test.com",
			"role":         "worker",
			"coin_balance": atomic.LoadInt32(&serverBalance),
		})
	}))

	sess := testSession()
	_, err := resolver.Resolve(context.Background(), sess, "worker@test.com")
	require.NoError(t, err)
	resolver.AdjustCoins("worker@test.com", 50)

	// The backend settled on a different number; the refetch wins.
	atomic.StoreInt32(&serverBalance, 35)
	prof, err := resolver.Refetch(context.Background(), sess, "worker@test.com")
	require.NoError(t, err)
	assert.Equal(t, 35, prof.CoinBalance)
	assert.False(t, prof.Stale)
}

func TestResolver_SessionDestroyInvalidatesCache(t *testing.T) {
	var hits int32
	resolver, store := newTestResolver(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"email":        "worker@test.com",
			"role":         "worker",
			"coin_balance": 10,
		})
	}))

	sess := store.Create(session.Identity{Email: "worker@test.com"}, "tok", "ref", time.Now())
	_, err := resolver.Resolve(context.Background(), sess, "worker@test.com")
	require.NoError(t, err)

	store.Destroy(sess.ID)

	_, err = resolver.Resolve(context.Background(), sess, "worker@test.com")
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits), "destroyed session must drop the cached profile")
}
