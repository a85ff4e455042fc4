package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RecoveryMiddleware recovers from panics in downstream handlers, logs the
// panic with a stack trace, and returns a 500 failure envelope. Exceptions
// never cross the HTTP boundary unhandled.
func RecoveryMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		panic("RecoveryMiddleware requires a non-nil zap.Logger instance")
	}
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("Panic recovered",
					zap.Any("error", err),
					zap.String("stacktrace", string(debug.Stack())),
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method),
				)
				if !c.Writer.Written() {
					c.JSON(http.StatusInternalServerError, errorEnvelope{
						Success: false,
						Error:   "Internal server error",
						Code:    "INTERNAL_ERROR",
					})
				}
				c.Abort()
			}
		}()
		c.Next()
	}
}
