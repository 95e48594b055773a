// File: internal/admin/handler.go
package admin

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"microtask_gateway/internal/common"
	"microtask_gateway/internal/guard"
	"microtask_gateway/internal/upstream"
)

// Handler exposes the moderation surface. Everything here is admin-only.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new admin handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes sets up the admin routes behind the guard.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, g *guard.Guard) {
	group := router.Group("/admin", g.Middleware(), g.RequireRoles(common.RoleAdmin))
	{
		group.GET("/stats", h.stats)
		group.GET("/users", h.listUsers)
		group.PATCH("/users/:email/role", h.updateUserRole)
		group.DELETE("/users/:email", h.deleteUser)
		group.GET("/tasks", h.listTasks)
		group.DELETE("/tasks/:id", h.deleteTask)
	}
}

func (h *Handler) stats(c *gin.Context) {
	sess := guard.SessionFromContext(c)
	stats, err := h.service.Stats(c.Request.Context(), sess)
	if err != nil {
		common.RespondWithError(c, upstream.AsAPIError(err))
		return
	}
	common.RespondOK(c, "Platform stats retrieved.", stats)
}

func (h *Handler) listUsers(c *gin.Context) {
	sess := guard.SessionFromContext(c)
	users, err := h.service.ListUsers(c.Request.Context(), sess)
	if err != nil {
		common.RespondWithError(c, upstream.AsAPIError(err))
		return
	}
	common.RespondOK(c, "Users retrieved.", users)
}

func (h *Handler) updateUserRole(c *gin.Context) {
	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("UpdateUserRole: Invalid request body", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	sess := guard.SessionFromContext(c)
	updated, err := h.service.UpdateUserRole(c.Request.Context(), sess, c.Param("email"), req.Role)
	if err != nil {
		common.RespondWithError(c, upstream.AsAPIError(err))
		return
	}
	common.RespondOK(c, "User role updated.", updated)
}

func (h *Handler) deleteUser(c *gin.Context) {
	sess := guard.SessionFromContext(c)
	if err := h.service.DeleteUser(c.Request.Context(), sess, c.Param("email")); err != nil {
		common.RespondWithError(c, upstream.AsAPIError(err))
		return
	}
	common.RespondNoContent(c)
}

func (h *Handler) listTasks(c *gin.Context) {
	sess := guard.SessionFromContext(c)
	tasks, err := h.service.ListTasks(c.Request.Context(), sess)
	if err != nil {
		common.RespondWithError(c, upstream.AsAPIError(err))
		return
	}
	common.RespondOK(c, "Tasks retrieved.", tasks)
}

func (h *Handler) deleteTask(c *gin.Context) {
	sess := guard.SessionFromContext(c)
	if err := h.service.DeleteTask(c.Request.Context(), sess, c.Param("id")); err != nil {
		common.RespondWithError(c, upstream.AsAPIError(err))
		return
	}
	common.RespondNoContent(c)
}
