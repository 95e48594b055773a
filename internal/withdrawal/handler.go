// File: internal/withdrawal/handler.go
package withdrawal

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"microtask_gateway/internal/common"
	"microtask_gateway/internal/guard"
	"microtask_gateway/internal/upstream"
)

// Handler exposes the withdrawal surface: workers cash out, admins settle.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new withdrawal handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes sets up the withdrawal routes behind the guard.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, g *guard.Guard) {
	group := router.Group("/withdrawals", g.Middleware())
	{
		worker := group.Group("", g.RequireRoles(common.RoleWorker))
		{
			worker.POST("", h.create)
			worker.GET("/mine", h.listMine)
		}

		admin := group.Group("", g.RequireRoles(common.RoleAdmin))
		{
			admin.GET("/pending", h.listPending)
			admin.PATCH("/:id/approve", h.approve)
		}
	}
}

func (h *Handler) create(c *gin.Context) {
	var req CreateWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("CreateWithdrawal: Invalid request body", zap.Error(err))
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
	common.RespondCreated(c, "Withdrawal requested.", created)
}

func (h *Handler) listMine(c *gin.Context) {
	sess := guard.SessionFromContext(c)
	withdrawals, err := h.service.ListMine(c.Request.Context(), sess, sess.Identity.Email)
	if err != nil {
		common.RespondWithError(c, upstream.AsAPIError(err))
		return
	}
	common.RespondOK(c, "Your withdrawals retrieved.", withdrawals)
}

func (h *Handler) listPending(c *gin.Context) {
	sess := guard.SessionFromContext(c)
	withdrawals, err := h.service.ListPending(c.Request.Context(), sess)
	if err != nil {
		common.RespondWithError(c, upstream.AsAPIError(err))
		return
	}
	common.RespondOK(c, "Pending withdrawals retrieved.", withdrawals)
}

func (h *Handler) approve(c *gin.Context) {
	sess := guard.SessionFromContext(c)
	updated, err := h.service.Approve(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		common.RespondWithError(c, upstream.AsAPIError(err))
		return
	}
	common.RespondOK(c, "Withdrawal approved.", updated)
}
