// File: internal/submission/service_test.go
package submission

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
	"microtask_gateway/internal/task"
	"microtask_gateway/internal/upstream"
)

type staticMinter struct{}

func (staticMinter) FreshToken(ctx context.Context, sess *session.Session) (string, error) {
	return "test-token", nil
}

type nopEvents struct{}

func (nopEvents) Forbidden(ctx context.Context, sess *session.Session)    {}
func (nopEvents) Unauthorized(ctx context.Context, sess *session.Session) {}

// fixture backs the submission service with a fake marketplace API. The
// /users and /tasks endpoints feed the resolver and task client; everything
// else falls through to the per-test handler.
func fixture(t *testing.T, openSlots int, handler func(w http.ResponseWriter, r *http.Request) bool) (*Service, *profile.Resolver, *session.Session, *profile.Profile) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/users/"):
			json.NewEncoder(w).Encode(map[string]interface{}{
				"email":        "worker@test.com",
				"display_name": "Worker One",
				"role":         "worker",
				"coin_balance": 10,
			})
			return
		case r.Method == http.MethodGet && r.URL.Path == "/tasks/task-1":
			json.NewEncoder(w).Encode(task.Task{
				ID:              "task-1",
				TaskTitle:       "Watch a video",
				RequiredWorkers: openSlots,
				PayableAmount:   5,
				BuyerEmail:      "buyer@test.com",
				BuyerName:       "Buyer One",
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
	svc := NewService(NewClient(api), task.NewClient(api), resolver, zap.NewNop())

	sess := &session.Session{ID: "sess-1", Identity: session.Identity{Email: "worker@test.com"}}
	prof, err := resolver.Resolve(context.Background(), sess, "worker@test.com")
	require.NoError(t, err)
	return svc, resolver, sess, prof
}

func TestService_CreateDenormalizesTaskFields(t *testing.T) {
	svc, _, sess, prof := fixture(t, 3, func(w http.ResponseWriter, r *http.Request) bool {
		if r.Method == http.MethodPost && r.URL.Path == "/submissions" {
			var in Submission
			json.NewDecoder(r.Body).Decode(&in)
			assert.Equal(t, "task-1", in.TaskID)
			assert.Equal(t, "Watch a video", in.TaskTitle)
			assert.Equal(t, 5, in.PayableAmount)
			assert.Equal(t, "worker@test.com", in.WorkerEmail)
			assert.Equal(t, "buyer@test.com", in.BuyerEmail)
			assert.Equal(t, StatusPending, in.Status)
			in.ID = "sub-1"
			json.NewEncoder(w).Encode(in)
			return true
		}
		return false
	})

	created, err := svc.Create(context.Background(), sess, prof, &CreateSubmissionRequest{
		TaskID:            "task-1",
		SubmissionDetails: "Watched and commented as user123.",
	})
	require.NoError(t, err)
	assert.Equal(t, "sub-1", created.ID)
}

func TestService_CreateRejectsClosedTask(t *testing.T) {
	svc, _, sess, prof := fixture(t, 0, func(w http.ResponseWriter, r *http.Request) bool {
		if r.URL.Path == "/submissions" {
			t.Fatal("the create request must not reach the backend")
		}
		return false
	})

	_, err := svc.Create(context.Background(), sess, prof, &CreateSubmissionRequest{
		TaskID:            "task-1",
		SubmissionDetails: "Too late.",
	})
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, common.ErrConflict.Code, apiErr.Code)
}

func TestService_ListMinePaginates(t *testing.T) {
	svc, _, sess, _ := fixture(t, 1, func(w http.ResponseWriter, r *http.Request) bool {
		if r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/submissions/worker/") {
			assert.Equal(t, "2", r.URL.Query().Get("page"))
			assert.Equal(t, "10", r.URL.Query().Get("page_size"))
			json.NewEncoder(w).Encode(workerPage{
				Submissions: []Submission{{ID: "sub-11"}, {ID: "sub-12"}},
				TotalCount:  12,
			})
			return true
		}
		return false
	})

	submissions, pagination, err := svc.ListMine(context.Background(), sess, "worker@test.com", 2, 10)
	require.NoError(t, err)
	assert.Len(t, submissions, 2)
	assert.Equal(t, int64(12), pagination.TotalItems)
	assert.Equal(t, 2, pagination.TotalPages)
}

func TestService_ApproveCreditsWorker(t *testing.T) {
	svc, resolver, sess, _ := fixture(t, 1, func(w http.ResponseWriter, r *http.Request) bool {
		if r.Method == http.MethodPatch && r.URL.Path == "/submissions/sub-1" {
			json.NewEncoder(w).Encode(Submission{
				ID: "sub-1", TaskID: "task-1", PayableAmount: 5,
				WorkerEmail: "worker@test.com", BuyerEmail: "buyer@test.com",
				Status: StatusApproved,
			})
			return true
		}
		return false
	})

	updated, err := svc.Approve(context.Background(), sess, "buyer@test.com", "sub-1")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, updated.Status)

	cached, err := resolver.Resolve(context.Background(), sess, "worker@test.com")
	require.NoError(t, err)
	assert.Equal(t, 15, cached.CoinBalance)
	assert.True(t, cached.Stale)
}

func TestService_RejectLeavesBalanceAlone(t *testing.T) {
	svc, resolver, sess, _ := fixture(t, 1, func(w http.ResponseWriter, r *http.Request) bool {
		if r.Method == http.MethodPatch && r.URL.Path == "/submissions/sub-2" {
			var body map[string]Status
			json.NewDecoder(r.Body).Decode(&body)
			assert.Equal(t, StatusRejected, body["status"])
			json.NewEncoder(w).Encode(Submission{
				ID: "sub-2", WorkerEmail: "worker@test.com",
				BuyerEmail: "buyer@test.com", Status: StatusRejected,
			})
			return true
		}
		return false
	})

	updated, err := svc.Reject(context.Background(), sess, "buyer@test.com", "sub-2")
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, updated.Status)

	cached, err := resolver.Resolve(context.Background(), sess, "worker@test.com")
	require.NoError(t, err)
	assert.Equal(t, 10, cached.CoinBalance)
}
