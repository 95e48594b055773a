// File: internal/imagehost/handler.go
package imagehost

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"microtask_gateway/internal/common"
	"microtask_gateway/internal/guard"
)

// Handler exposes the image upload endpoint used by the task and profile
// forms.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new image upload handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes sets up the upload route behind the guard.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, g *guard.Guard) {
	group := router.Group("/uploads", g.Middleware())
	{
		group.POST("", h.upload)
	}
}

func (h *Handler) upload(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Expected a multipart form with an 'image' field."))
		return
	}

	result, err := h.service.Upload(c.Request.Context(), fileHeader)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Image uploaded.", result)
}
