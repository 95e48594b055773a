// File: internal/withdrawal/service_test.go
package withdrawal

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

func fixture(t *testing.T, coinBalance int, handler func(w http.ResponseWriter, r *http.Request) bool) (*Service, *profile.Resolver, *session.Session, *profile.Profile) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/users/") {
			json.NewEncoder(w).Encode(map[string]interface{}{
				"email":        "worker@test.com",
				"display_name": "Worker One",
				"role":         "worker",
				"coin_balance": coinBalance,
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

	sess := &session.Session{ID: "sess-1", Identity: session.Identity{Email: "worker@test.com"}}
	prof, err := resolver.Resolve(context.Background(), sess, "worker@test.com")
	require.NoError(t, err)
	return svc, resolver, sess, prof
}

func TestAmountForCoins(t *testing.T) {
	assert.Equal(t, 10.0, AmountForCoins(200))
	assert.Equal(t, 1.0, AmountForCoins(20))
	assert.Equal(t, 0.5, AmountForCoins(10))
}

func TestService_CreateRequiresMinimumBalance(t *testing.T) {
	svc, _, sess, prof := fixture(t, MinWithdrawalCoins-1, func(w http.ResponseWriter, r *http.Request) bool {
		t.Fatal("the request must not reach the backend")
		return true
	})

	_, err := svc.Create(context.Background(), sess, prof, &CreateWithdrawalRequest{
		WithdrawalCoins: 100, PaymentSystem: "bkash", AccountNumber: "0123456789",
	})
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, common.ErrInsufficientCoins.Code, apiErr.Code)
}

func TestService_CreateRejectsOverdraw(t *testing.T) {
	svc, _, sess, prof := fixture(t, 300, nil)

	_, err := svc.Create(context.Background(), sess, prof, &CreateWithdrawalRequest{
		WithdrawalCoins: 400, PaymentSystem: "nagad", AccountNumber: "0123456789",
	})
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, common.ErrInsufficientCoins.Code, apiErr.Code)
}

func TestService_CreateDerivesDollarAmount(t *testing.T) {
	svc, _, sess, prof := fixture(t, 400, func(w http.ResponseWriter, r *http.Request) bool {
		if r.Method == http.MethodPost && r.URL.Path == "/withdrawals" {
			var in Withdrawal
			json.NewDecoder(r.Body).Decode(&in)
			// The amount is computed gateway-side, never taken from the form.
			assert.Equal(t, 15.0, in.WithdrawalAmount)
			assert.Equal(t, StatusPending, in.Status)
			in.ID = "wd-1"
			json.NewEncoder(w).Encode(in)
			return true
		}
		return false
	})

	created, err := svc.Create(context.Background(), sess, prof, &CreateWithdrawalRequest{
		WithdrawalCoins: 300, PaymentSystem: "bkash", AccountNumber: "0123456789",
	})
	require.NoError(t, err)
	assert.Equal(t, "wd-1", created.ID)
	assert.Equal(t, "worker@test.com", created.WorkerEmail)
}

func TestService_ApproveDeductsWorkerCoins(t *testing.T) {
	svc, resolver, sess, _ := fixture(t, 400, func(w http.ResponseWriter, r *http.Request) bool {
		if r.Method == http.MethodPatch && r.URL.Path == "/admin/withdrawals/wd-1/approve" {
			json.NewEncoder(w).Encode(Withdrawal{
				ID: "wd-1", WorkerEmail: "worker@test.com",
				WithdrawalCoins: 300, WithdrawalAmount: 15, Status: StatusApproved,
			})
			return true
		}
		return false
	})

	updated, err := svc.Approve(context.Background(), sess, "wd-1")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, updated.Status)

	cached, err := resolver.Resolve(context.Background(), sess, "worker@test.com")
	require.NoError(t, err)
	assert.Equal(t, 100, cached.CoinBalance)
}
