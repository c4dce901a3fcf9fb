package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"qa-assignment-api/internal/transport/http/ez"
)

type TokenVerifier interface {
	Verify(token string) (string, error)
}

// BearerToken reads "Authorization: Bearer <t>", falling back to ?token=.
func BearerToken(c *gin.Context) string {
	if ah := c.GetHeader("Authorization"); len(ah) > 7 && strings.EqualFold(ah[:7], "Bearer ") {
		return strings.TrimSpace(ah[7:])
	}
	return strings.TrimSpace(c.Query("token"))
}

// OptionalAuth records the subject of a valid token and otherwise lets the
// request through untouched. Actions registered with Auth reject requests
// that reach them without a subject.
func OptionalAuth(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tok := BearerToken(c); tok != "" {
			if sub, err := v.Verify(tok); err == nil {
				c.Set(ez.KeySubject, sub)
			}
		}
		c.Next()
	}
}
