// File: internal/payment/handler.go
package payment

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"microtask_gateway/internal/common"
	"microtask_gateway/internal/guard"
	"microtask_gateway/internal/upstream"
)

// Handler exposes the coin purchase surface for buyers.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new payment handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes sets up the payment routes behind the guard; everything
// here is buyer-only.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, g *guard.Guard) {
	group := router.Group("/payments", g.Middleware(), g.RequireRoles(common.RoleBuyer))
	{
		group.GET("/packages", h.packages)
		group.GET("/history", h.history)
		group.POST("/intent", h.createIntent)
		group.POST("/confirm", h.confirm)
	}
}

func (h *Handler) packages(c *gin.Context) {
	common.RespondOK(c, "Coin packages retrieved.", h.service.Catalogue())
}

func (h *Handler) history(c *gin.Context) {
	sess := guard.SessionFromContext(c)
	payments, err := h.service.History(c.Request.Context(), sess, sess.Identity.Email)
	if err != nil {
		common.RespondWithError(c, upstream.AsAPIError(err))
		return
	}
	common.RespondOK(c, "Payment history retrieved.", payments)
}

func (h *Handler) createIntent(c *gin.Context) {
	var req IntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("CreateIntent: Invalid request body", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	sess := guard.SessionFromContext(c)
	intent, err := h.service.CreateIntent(c.Request.Context(), sess, &req)
	if err != nil {
		common.RespondWithError(c, upstream.AsAPIError(err))
		return
	}
	common.RespondOK(c, "Payment intent created.", intent)
}

func (h *Handler) confirm(c *gin.Context) {
	var req ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("ConfirmPayment: Invalid request body", zap.Error(err))
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
	settled, err := h.service.Confirm(c.Request.Context(), sess, prof, &req)
	if err != nil {
		common.RespondWithError(c, upstream.AsAPIError(err))
		return
	}
	common.RespondCreated(c, "Payment recorded.", settled)
}
