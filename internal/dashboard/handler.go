// File: internal/dashboard/handler.go
package dashboard

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"microtask_gateway/internal/admin"
	"microtask_gateway/internal/common"
	"microtask_gateway/internal/guard"
	"microtask_gateway/internal/profile"
	"microtask_gateway/internal/upstream"
)

// Handler serves the dashboard shell: the resolved profile plus the view the
// dispatcher picked for its role.
type Handler struct {
	resolver *profile.Resolver
	admin    *admin.Service
	logger   *zap.Logger
}

// NewHandler creates a dashboard handler.
func NewHandler(resolver *profile.Resolver, adminSvc *admin.Service, logger *zap.Logger) *Handler {
	return &Handler{resolver: resolver, admin: adminSvc, logger: logger}
}

// RegisterRoutes sets up the dashboard routes behind the guard.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, g *guard.Guard) {
	group := router.Group("/dashboard", g.Middleware())
	{
		group.GET("/home", h.home)
	}
}

// home resolves the profile with a forced server round trip: a cached coin
// balance is never trusted across a dashboard mount, since server-side
// mutations (task approval, purchases) change it out of band.
func (h *Handler) home(c *gin.Context) {
	sess := guard.SessionFromContext(c)
	if sess == nil {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Session missing from context."))
		return
	}

	prof, err := h.resolver.Refetch(c.Request.Context(), sess, sess.Identity.Email)
	if err != nil {
		common.RespondWithError(c, upstream.AsAPIError(err))
		return
	}

	view := ViewFor(prof.DashboardRole())
	payload := gin.H{
		"view":    view,
		"profile": prof,
	}

	// Admin home carries the platform summary. Stats failing must not take
	// the whole dashboard down with them.
	if prof.DashboardRole() == common.RoleAdmin {
		stats, err := h.admin.Stats(c.Request.Context(), sess)
		if err != nil {
			h.logger.Warn("Failed to load platform stats for admin home", zap.Error(err))
		} else {
			payload["stats"] = stats
		}
	}

	common.RespondOK(c, "Dashboard resolved.", payload)
}
