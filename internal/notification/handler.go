// File: internal/notification/handler.go
package notification

import (
	"sort"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"microtask_gateway/internal/common"
	"microtask_gateway/internal/guard"
	"microtask_gateway/internal/upstream"
)

// Handler exposes the notification popup's data: list unread, delete on
// read. Any signed-in role has notifications.
type Handler struct {
	client *Client
	logger *zap.Logger
}

// NewHandler creates a new notification handler.
func NewHandler(client *Client, logger *zap.Logger) *Handler {
	return &Handler{client: client, logger: logger}
}

// RegisterRoutes sets up the notification routes behind the guard.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, g *guard.Guard) {
	group := router.Group("/notifications", g.Middleware())
	{
		group.GET("", h.list)
		group.DELETE("/:id", h.delete)
	}
}

func (h *Handler) list(c *gin.Context) {
	sess := guard.SessionFromContext(c)
	notifications, err := h.client.ListForUser(c.Request.Context(), sess, sess.Identity.Email)
	if err != nil {
		common.RespondWithError(c, upstream.AsAPIError(err))
		return
	}
	sort.SliceStable(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})
	common.RespondOK(c, "Notifications retrieved.", notifications)
}

func (h *Handler) delete(c *gin.Context) {
	sess := guard.SessionFromContext(c)
	if err := h.client.Delete(c.Request.Context(), sess, c.Param("id")); err != nil {
		common.RespondWithError(c, upstream.AsAPIError(err))
		return
	}
	common.RespondNoContent(c)
}
