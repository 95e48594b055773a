// File: internal/payment/service_test.go
package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"microtask_gateway/internal/common"
	"microtask_gateway/internal/config"
	"microtask_gateway/internal/profile"
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

func fixture(t *testing.T, handler func(w http.ResponseWriter, r *http.Request) bool) (*Service, *profile.Resolver, *session.Session, *profile.Profile) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/users/") {
			json.NewEncoder(w).Encode(map[string]interface{}{
				"email":        "buyer@test.com",
				"display_name": "Buyer One",
				"role":         "buyer",
				"coin_balance": 50,
			})
			return
		}
		if handler != nil && handler(w, r) {
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	cfg := &config.Config{UpstreamBaseURL: srv.URL, UpstreamRequestTimeout: 5 * time.Second}
	api := upstream.NewClient(cfg, staticMinter{}, nopEvents{}, zap.NewNop())
	store := session.NewMemoryStore(time.Hour, zap.NewNop())
	resolver := profile.NewResolver(api, store, zap.NewNop())
	svc := NewService(NewClient(api), resolver, zap.NewNop())

	sess := &session.Session{ID: "sess-1", Identity: session.Identity{Email: "buyer@test.com"}}
	prof, err := resolver.Resolve(context.Background(), sess, "buyer@test.com")
	require.NoError(t, err)
	return svc, resolver, sess, prof
}

func TestPackageForCoins(t *testing.T) {
	pkg, ok := PackageForCoins(150)
	require.True(t, ok)
	assert.Equal(t, 10, pkg.Price)

	_, ok = PackageForCoins(151)
	assert.False(t, ok)
}

func TestService_CreateIntentRejectsUnknownPackage(t *testing.T) {
	svc, _, sess, _ := fixture(t, func(w http.ResponseWriter, r *http.Request) bool {
		t.Fatal("the request must not reach the backend")
		return true
	})

	_, err := svc.CreateIntent(context.Background(), sess, &IntentRequest{Coins: 999})
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, common.ErrBadRequest.Code, apiErr.Code)
}

func TestService_CreateIntentUsesCataloguePrice(t *testing.T) {
	svc, _, sess, _ := fixture(t, func(w http.ResponseWriter, r *http.Request) bool {
		if r.Method == http.MethodPost && r.URL.Path == "/create-payment-intent" {
			var body map[string]int
			json.NewDecoder(r.Body).Decode(&body)
			assert.Equal(t, 20, body["price"])
			json.NewEncoder(w).Encode(Intent{ClientSecret: "pi_secret"})
			return true
		}
		return false
	})

	intent, err := svc.CreateIntent(context.Background(), sess, &IntentRequest{Coins: 500})
	require.NoError(t, err)
	assert.Equal(t, "pi_secret", intent.ClientSecret)
}

func TestService_ConfirmCreditsCoins(t *testing.T) {
	svc, resolver, sess, prof := fixture(t, func(w http.ResponseWriter, r *http.Request) bool {
		if r.Method == http.MethodPost && r.URL.Path == "/payment-success" {
			var in Payment
			json.NewDecoder(r.Body).Decode(&in)
			assert.Equal(t, "buyer@test.com", in.BuyerEmail)
			assert.Equal(t, 1000, in.Coins)
			// The price comes from the catalogue, not the browser.
			assert.Equal(t, 35, in.Price)
			in.ID = "pay-1"
			json.NewEncoder(w).Encode(in)
			return true
		}
		return false
	})

	settled, err := svc.Confirm(context.Background(), sess, prof, &ConfirmRequest{
		Coins: 1000, TransactionID: "txn_123",
	})
	require.NoError(t, err)
	assert.Equal(t, "pay-1", settled.ID)

	cached, err := resolver.Resolve(context.Background(), sess, "buyer@test.com")
	require.NoError(t, err)
	assert.Equal(t, 1050, cached.CoinBalance)
	assert.True(t, cached.Stale)
}

func TestService_ConfirmRejectsUnknownPackage(t *testing.T) {
	svc, _, sess, prof := fixture(t, nil)

	_, err := svc.Confirm(context.Background(), sess, prof, &ConfirmRequest{
		Coins: 42, TransactionID: "txn_123",
	})
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, common.ErrBadRequest.Code, apiErr.Code)
}
