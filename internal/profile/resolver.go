// File: internal/profile/resolver.go
package profile

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"go.uber.org/zap"

	"microtask_gateway/internal/common"
	"microtask_gateway/internal/session"
	"microtask_gateway/internal/upstream"
)

// Resolver fetches the authenticated user's role and coin balance from the
// backend and caches them keyed by email. The cache is a convenience, not a
// source of truth: optimistic coin mutations mark the entry stale and
// Refetch reconciles against the server.
type Resolver struct {
	client *upstream.Client
	logger *zap.Logger

	mu    sync.Mutex
	cache map[string]*Profile
}

// NewResolver creates a role resolver. It subscribes to the session store so
// a destroyed session always drops its cached profile, however the sign-out
// happened.
func NewResolver(client *upstream.Client, store session.Store, logger *zap.Logger) *Resolver {
	r := &Resolver{
		client: client,
		logger: logger.Named("RoleResolver"),
		cache:  make(map[string]*Profile),
	}

	store.Subscribe(func(ev session.Event, s session.Session) {
		if ev == session.EventDestroyed {
			r.Invalidate(s.Identity.Email)
		}
	})

	return r
}

// Resolve returns the profile for an email, from cache when present. An
// empty email never reaches the wire. A backend that holds no record yields
// the "user" sentinel role, not an error.
func (r *Resolver) Resolve(ctx context.Context, sess *session.Session, email string) (*Profile, error) {
	if email == "" {
		return nil, common.ErrBadRequest.WithDetails("Cannot resolve a profile without an email.")
	}

	r.mu.Lock()
	if cached, ok := r.cache[email]; ok {
		copied := *cached
		r.mu.Unlock()
		return &copied, nil
	}
	r.mu.Unlock()

	return r.fetch(ctx, sess, email)
}

// Refetch forces a server round trip, replacing whatever the cache holds and
// clearing any staleness. Callers that need server-confirmed state (dashboard
// mounts, post-approval balances) use this instead of Resolve.
func (r *Resolver) Refetch(ctx context.Context, sess *session.Session, email string) (*Profile, error) {
	if email == "" {
		return nil, common.ErrBadRequest.WithDetails("Cannot resolve a profile without an email.")
	}
	return r.fetch(ctx, sess, email)
}

// AdjustCoins applies an optimistic local delta to the cached balance and
// marks the entry stale. It reports the new local balance. A miss (no cached
// entry) is a no-op; the next Resolve fetches the server's view anyway.
func (r *Resolver) AdjustCoins(email string, delta int) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cached, ok := r.cache[email]
	if !ok {
		return 0, false
	}
	cached.CoinBalance += delta
	cached.Stale = true
	r.logger.Debug("Optimistic coin adjustment",
		zap.String("email", email),
		zap.Int("delta", delta),
		zap.Int("local_balance", cached.CoinBalance),
	)
	return cached.CoinBalance, true
}

// Invalidate drops a cached profile, e.g. on sign-out.
func (r *Resolver) Invalidate(email string) {
	r.mu.Lock()
	delete(r.cache, email)
	r.mu.Unlock()
}

// Ensure upserts the backend profile for a fresh account with the signup
// coin grant for its role. The backend keeps the existing record when one is
// already there (repeat federated sign-ins).
func (r *Resolver) Ensure(ctx context.Context, sess *session.Session, identity session.Identity, role common.Role) (*Profile, error) {
	body := map[string]interface{}{
		"email":        identity.Email,
		"display_name": identity.DisplayName,
		"photo_url":    identity.PhotoURL,
		"role":         role.String(),
		"coin_balance": DefaultCoins(role),
	}
	if err := r.client.JSON(ctx, sess, http.MethodPost, "/users", body, nil); err != nil {
		// 409 means the profile already exists, which is fine here.
		if !upstream.IsStatus(err, http.StatusConflict) {
			return nil, err
		}
	}
	return r.fetch(ctx, sess, identity.Email)
}

func (r *Resolver) fetch(ctx context.Context, sess *session.Session, email string) (*Profile, error) {
	var fetched Profile
	path := fmt.Sprintf("/users/%s", url.PathEscape(email))
	err := r.client.JSON(ctx, sess, http.MethodGet, path, nil, &fetched)
	if err != nil {
		if upstream.IsStatus(err, http.StatusNotFound) {
			// No record yet: sentinel role, no dashboard menu, not an error.
			fetched = Profile{Email: email, Role: common.RoleSentinelUser}
		} else {
			return nil, err
		}
	}
	fetched.Email = email
	fetched.Stale = false

	r.mu.Lock()
	stored := fetched
	r.cache[email] = &stored
	r.mu.Unlock()

	return &fetched, nil
}
