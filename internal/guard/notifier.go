// File: internal/guard/notifier.go
package guard

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"microtask_gateway/internal/identity"
	"microtask_gateway/internal/session"
)

// Notifier receives the authorization failures the upstream client handles
// globally and makes the resulting transitions idempotent per session:
// any number of concurrent 403s produce one forbidden transition, any number
// of concurrent 401s produce one forced sign-out.
type Notifier struct {
	identity *identity.Service
	logger   *zap.Logger

	mu        sync.Mutex
	forbidden map[string]bool
}

// NewNotifier creates the guard-side auth event sink. It subscribes to the
// session store so a destroyed session always sheds its forbidden mark,
// whether it died by sign-out, forced sign-out, TTL sweep or expiry check.
func NewNotifier(identitySvc *identity.Service, store session.Store, logger *zap.Logger) *Notifier {
	n := &Notifier{
		identity:  identitySvc,
		logger:    logger.Named("GuardNotifier"),
		forbidden: make(map[string]bool),
	}

	store.Subscribe(func(ev session.Event, s session.Session) {
		if ev == session.EventDestroyed {
			n.clear(s.ID)
		}
	})

	return n
}

// Forbidden records the forbidden transition for the session. Only the first
// call per session transitions; the rest are no-ops. The failing request's
// own 403 still reaches its caller regardless.
func (n *Notifier) Forbidden(ctx context.Context, sess *session.Session) {
	if sess == nil {
		return
	}

	n.mu.Lock()
	already := n.forbidden[sess.ID]
	if !already {
		n.forbidden[sess.ID] = true
	}
	n.mu.Unlock()

	if !already {
		n.logger.Warn("Session transitioned to forbidden view", zap.String("email", sess.Identity.Email))
	}
}

// Unauthorized forces a sign-out for the session. The sign-out is triggered
// exactly once even when several in-flight requests see 401 concurrently;
// the identity service's destroy-first ordering guarantees that.
func (n *Notifier) Unauthorized(ctx context.Context, sess *session.Session) {
	if sess == nil {
		return
	}

	// The store's destroy event clears the forbidden mark.
	if n.identity.SignOut(ctx, sess.ID) {
		n.logger.Warn("Session force-signed-out after upstream 401", zap.String("email", sess.Identity.Email))
	}
}

// TransitionedForbidden reports whether the session has seen its forbidden
// transition.
func (n *Notifier) TransitionedForbidden(sessionID string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.forbidden[sessionID]
}

func (n *Notifier) clear(sessionID string) {
	n.mu.Lock()
	delete(n.forbidden, sessionID)
	n.mu.Unlock()
}
