package middleware

import (
	"net/http"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// Recovery turns panics into a JSON 500 and reports them to Sentry when a hub is attached.
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error("panic recovered",
					zap.Any("panic", err),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.Stack("stack"),
				)
				if hub := sentrygin.GetHubFromContext(c); hub != nil {
					hub.RecoverWithContext(c.Request.Context(), err)
				} else if hub := sentry.CurrentHub(); hub.Client() != nil {
					hub.Recover(err)
				}
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
			}
		}()
		c.Next()
	}
}

// NotFound answers unknown routes with JSON instead of gin's plain text.
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
}
