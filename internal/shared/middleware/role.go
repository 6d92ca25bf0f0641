package middleware

import (
	"github.com/gin-gonic/gin"

	"pubrepo-backend/internal/shared/response"
)

// RequireRole is the capability gate: it runs after SessionGate and admits
// only the listed roles. Applied declaratively on route groups instead of
// ad hoc checks in handlers.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		role := c.GetString(CtxRole)
		if _, ok := allowed[role]; !ok {
			response.Forbidden(c, "insufficient role")
			c.Abort()
			return
		}
		c.Next()
	}
}
