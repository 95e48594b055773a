// File: internal/guard/guard.go
package guard

import (
	"fmt"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"microtask_gateway/internal/common"
	"microtask_gateway/internal/config"
	"microtask_gateway/internal/profile"
	"microtask_gateway/internal/session"
)

// State is the route guard's view of a request's session status.
type State int

const (
	// StateUnresolved means session status is not yet known; nothing may be
	// rendered behind the guard in this state.
	StateUnresolved State = iota
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "unresolved"
	}
}

const (
	// SessionContextKey stores the *session.Session for the request.
	SessionContextKey = "guardSession"
	// ProfileContextKey stores the resolved *profile.Profile, set by RequireRoles.
	ProfileContextKey = "guardProfile"
)

// Guard gates access to protected routes pending authentication resolution.
type Guard struct {
	cfg      *config.Config
	store    session.Store
	resolver *profile.Resolver
	logger   *zap.Logger
}

// NewGuard creates the route guard. It subscribes to the session store so
// that each identity state change logs exactly one transition.
func NewGuard(cfg *config.Config, store session.Store, resolver *profile.Resolver, logger *zap.Logger) *Guard {
	g := &Guard{
		cfg:      cfg,
		store:    store,
		resolver: resolver,
		logger:   logger.Named("RouteGuard"),
	}

	store.Subscribe(func(ev session.Event, s session.Session) {
		switch ev {
		case session.EventCreated:
			g.logger.Info("Guard transition",
				zap.String("state", StateAuthenticated.String()),
				zap.String("email", s.Identity.Email),
			)
		case session.EventDestroyed:
			g.logger.Info("Guard transition",
				zap.String("state", StateUnauthenticated.String()),
				zap.String("email", s.Identity.Email),
			)
		}
	})

	return g
}

// Resolve moves the request out of StateUnresolved based on the session
// cookie. It never answers the request itself.
func (g *Guard) Resolve(c *gin.Context) (State, *session.Session) {
	cookie, err := c.Cookie(g.cfg.SessionCookieName)
	if err != nil || cookie == "" {
		return StateUnauthenticated, nil
	}
	sess, ok := g.store.Get(cookie)
	if !ok {
		return StateUnauthenticated, nil
	}
	return StateAuthenticated, sess
}

// Middleware renders children only once the state resolves to authenticated.
// Unauthenticated requests are redirected to the sign-in view carrying the
// originally requested path, so sign-in can return the user there.
func (g *Guard) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		state, sess := g.Resolve(c)
		if state != StateAuthenticated {
			target := fmt.Sprintf("%s?from=%s", common.LoginPath, url.QueryEscape(c.Request.URL.Path))
			common.RespondWithError(c, common.ErrUnauthorized.
				WithDetails("Sign in to continue.").
				WithRedirect(target))
			return
		}

		c.Set(SessionContextKey, sess)
		c.Next()
	}
}

// RequireRoles resolves the session's profile and rejects roles outside the
// allowed set with the forbidden view.
func (g *Guard) RequireRoles(allowed ...common.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := SessionFromContext(c)
		if sess == nil {
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Session missing from context."))
			return
		}

		prof, err := g.resolver.Resolve(c.Request.Context(), sess, sess.Identity.Email)
		if err != nil {
			common.RespondWithError(c, err)
			return
		}

		role := prof.DashboardRole()
		for _, a := range allowed {
			if role == a {
				c.Set(ProfileContextKey, prof)
				c.Next()
				return
			}
		}

		g.logger.Warn("Role denied for route",
			zap.String("email", sess.Identity.Email),
			zap.String("role", prof.Role),
			zap.String("path", c.Request.URL.Path),
		)
		common.RespondWithError(c, common.ErrForbidden.
			WithDetails("You do not have sufficient permissions for this resource.").
			WithRedirect(common.ForbiddenPath))
	}
}

// SessionFromContext retrieves the session placed by Middleware.
func SessionFromContext(c *gin.Context) *session.Session {
	val, exists := c.Get(SessionContextKey)
	if !exists {
		return nil
	}
	sess, ok := val.(*session.Session)
	if !ok {
		return nil
	}
	return sess
}

// ProfileFromContext retrieves the profile placed by RequireRoles.
func ProfileFromContext(c *gin.Context) *profile.Profile {
	val, exists := c.Get(ProfileContextKey)
	if !exists {
		return nil
	}
	prof, ok := val.(*profile.Profile)
	if !ok {
		return nil
	}
	return prof
}
