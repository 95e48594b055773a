// File: internal/task/handler.go
package task

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"microtask_gateway/internal/common"
	"microtask_gateway/internal/guard"
	"microtask_gateway/internal/upstream"
)

// Handler exposes the task surface: buyers create and manage tasks, workers
// browse the available list.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new task handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes sets up the task routes behind the guard.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, g *guard.Guard) {
	taskGroup := router.Group("/tasks", g.Middleware())
	{
		worker := taskGroup.Group("", g.RequireRoles(common.RoleWorker))
		{
			worker.GET("", h.listAvailable)
		}

		buyer := taskGroup.Group("", g.RequireRoles(common.RoleBuyer))
		{
			buyer.POST("", h.create)
			buyer.GET("/mine", h.listMine)
			buyer.PATCH("/:id", h.update)
			buyer.DELETE("/:id", h.delete)
		}

		// Task detail is readable by either side of the marketplace.
		taskGroup.GET("/:id", g.RequireRoles(common.RoleWorker, common.RoleBuyer, common.RoleAdmin), h.get)
	}
}

func (h *Handler) create(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("CreateTask: Invalid request body", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	sess := guard.SessionFromContext(c)
	prof := guard.ProfileFromContext(c)
	created, err := h.service.Create(c.Request.Context(), sess, prof, &req)
	if err != nil {
		common.RespondWithError(c, upstream.AsAPIError(err))
		return
	}
	common.RespondCreated(c, "Task created.", created)
}

func (h *Handler) listAvailable(c *gin.Context) {
	sess := guard.SessionFromContext(c)
	order := SortOrder(c.Query("sort"))

	tasks, err := h.service.ListAvailable(c.Request.Context(), sess, order)
	if err != nil {
		common.RespondWithError(c, upstream.AsAPIError(err))
		return
	}
	common.RespondOK(c, "Available tasks retrieved.", tasks)
}

func (h *Handler) listMine(c *gin.Context) {
	sess := guard.SessionFromContext(c)
	tasks, err := h.service.ListMine(c.Request.Context(), sess, sess.Identity.Email)
	if err != nil {
		common.RespondWithError(c, upstream.AsAPIError(err))
		return
	}
	common.RespondOK(c, "Your tasks retrieved.", tasks)
}

func (h *Handler) get(c *gin.Context) {
	sess := guard.SessionFromContext(c)
	t, err := h.service.Get(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		common.RespondWithError(c, upstream.AsAPIError(err))
		return
	}
	common.RespondOK(c, "Task retrieved.", t)
}

func (h *Handler) update(c *gin.Context) {
	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("UpdateTask: Invalid request body", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	sess := guard.SessionFromContext(c)
	updated, err := h.service.Update(c.Request.Context(), sess, sess.Identity.Email, c.Param("id"), &req)
	if err != nil {
		common.RespondWithError(c, upstream.AsAPIError(err))
		return
	}
	common.RespondOK(c, "Task updated.", updated)
}

func (h *Handler) delete(c *gin.Context) {
	sess := guard.SessionFromContext(c)
	refund, err := h.service.Delete(c.Request.Context(), sess, sess.Identity.Email, c.Param("id"))
	if err != nil {
		common.RespondWithError(c, upstream.AsAPIError(err))
		return
	}
	common.RespondOK(c, "Task deleted.", gin.H{"refunded_coins": refund})
}
