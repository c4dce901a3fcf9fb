package middleware

import (
	"github.com/gin-gonic/gin"

	"qa-assignment-api/internal/transport/http/ez"
	resp "qa-assignment-api/internal/transport/http/response"
)

func abort(c *gin.Context, code int, msg string) {
	ez.Reply(c, resp.Error(code, msg))
	c.Abort()
}
