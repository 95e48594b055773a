// File: internal/submission/handler.go
package submission

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"microtask_gateway/internal/common"
	"microtask_gateway/internal/guard"
	"microtask_gateway/internal/upstream"
)

// Handler exposes the submission surface: workers submit and browse their
// history, buyers review what is pending.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new submission handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes sets up the submission routes behind the guard.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, g *guard.Guard) {
	group := router.Group("/submissions", g.Middleware())
	{
		worker := group.Group("", g.RequireRoles(common.RoleWorker))
		{
			worker.POST("", h.create)
			worker.GET("/mine", h.listMine)
		}

		buyer := group.Group("", g.RequireRoles(common.RoleBuyer))
		{
			buyer.GET("/pending", h.listPending)
			buyer.POST("/approve", h.approve)
			buyer.POST("/reject", h.reject)
		}
	}
}

func (h *Handler) create(c *gin.Context) {
	var req CreateSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("CreateSubmission: Invalid request body", zap.Error(err))
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
	common.RespondCreated(c, "Submission recorded.", created)
}

func (h *Handler) listMine(c *gin.Context) {
	sess := guard.SessionFromContext(c)
	page, pageSize := common.GetPaginationParams(c)

	submissions, pagination, err := h.service.ListMine(c.Request.Context(), sess, sess.Identity.Email, page, pageSize)
	if err != nil {
		common.RespondWithError(c, upstream.AsAPIError(err))
		return
	}
	common.RespondPaginated(c, "Your submissions retrieved.", submissions, pagination)
}

func (h *Handler) listPending(c *gin.Context) {
	sess := guard.SessionFromContext(c)
	submissions, err := h.service.ListPending(c.Request.Context(), sess, sess.Identity.Email)
	if err != nil {
		common.RespondWithError(c, upstream.AsAPIError(err))
		return
	}
	common.RespondOK(c, "Pending submissions retrieved.", submissions)
}

func (h *Handler) approve(c *gin.Context) {
	h.reviewRoute(c, StatusApproved)
}

func (h *Handler) reject(c *gin.Context) {
	h.reviewRoute(c, StatusRejected)
}

func (h *Handler) reviewRoute(c *gin.Context, status Status) {
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("ReviewSubmission: Invalid request body", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	sess := guard.SessionFromContext(c)
	var (
		updated *Submission
		err     error
	)
	if status == StatusApproved {
		updated, err = h.service.Approve(c.Request.Context(), sess, sess.Identity.Email, req.SubmissionID)
	} else {
		updated, err = h.service.Reject(c.Request.Context(), sess, sess.Identity.Email, req.SubmissionID)
	}
	if err != nil {
		common.RespondWithError(c, upstream.AsAPIError(err))
		return
	}
	common.RespondOK(c, "Submission reviewed.", updated)
}
