package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	resp "qa-assignment-api/internal/transport/http/response"
)

// Recovery turns a panic into the error envelope and logs it.
func Recovery(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				l.Error("panic recovered",
					zap.Any("panic", rec),
					zap.String("path", c.Request.URL.Path),
					RequestIDField(c),
					zap.Stack("stack"),
				)
				abort(c, resp.CodeServerError, "internal error")
			}
		}()
		c.Next()
	}
}
