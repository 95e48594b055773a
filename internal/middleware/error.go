// File: internal/middleware/error.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"microtask_gateway/internal/common"
)

// ErrorHandler answers any error a handler attached to the gin context and
// backstops bare 404/405 statuses so the browser always gets the gateway's
// error envelope.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			ginErr := c.Errors[0]
			if apiErr, ok := common.IsAPIError(ginErr.Err); ok {
				c.AbortWithStatusJSON(apiErr.StatusCode, apiErr)
				return
			}

			logger.Error("Unhandled application error",
				zap.Error(ginErr.Err),
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", c.GetString(RequestIDContextKey)),
			)
			wrapped := common.ErrInternalServer
			if gin.Mode() == gin.DebugMode && ginErr.Err != nil {
				wrapped = wrapped.WithDetails(ginErr.Err.Error())
			}
			c.AbortWithStatusJSON(wrapped.StatusCode, wrapped)
			return
		}

		switch c.Writer.Status() {
		case http.StatusNotFound:
			if !c.Writer.Written() {
				notFound := common.ErrNotFound.WithDetails("The requested endpoint does not exist on this gateway.")
				c.AbortWithStatusJSON(notFound.StatusCode, notFound)
			}
		case http.StatusMethodNotAllowed:
			if !c.Writer.Written() {
				notAllowed := common.NewAPIError(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "The method is not allowed for the requested URL.")
				c.AbortWithStatusJSON(notAllowed.StatusCode, notAllowed)
			}
		}
	}
}
