package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pubrepo-backend/internal/infrastructure/session"
	"pubrepo-backend/internal/shared/response"
	"pubrepo-backend/pkg/jwt"
)

// Context keys set by SessionGate for downstream handlers.
const (
	CtxAdminID = "adminID"
	CtxEmail   = "adminEmail"
	CtxRole    = "adminRole"
)

// SessionGate authenticates the session cookie: verify the token
// signature, then load the session record from the store. The store is
// authoritative; a destroyed or expired session fails even with a valid
// signature.
func SessionGate(cookieName string, tokens *jwt.Manager, store session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie(cookieName)
		if err != nil || tokenString == "" {
			response.Unauthorized(c, "missing session cookie")
			c.Abort()
			return
		}

		sessionID, err := tokens.ParseSessionToken(tokenString)
		if err != nil {
			response.Unauthorized(c, "invalid session token")
			c.Abort()
			return
		}

		sess, err := store.Get(c.Request.Context(), sessionID)
		if err != nil {
			response.InternalServerError(c, "session store unavailable")
			c.Abort()
			return
		}
		if sess == nil {
			response.Unauthorized(c, "session expired or destroyed")
			c.Abort()
			return
		}

		c.Set(CtxAdminID, sess.AdminID)
		c.Set(CtxEmail, sess.Email)
		c.Set(CtxRole, sess.Role)
		c.Set("sessionID", sess.ID)

		c.Next()
	}
}

// AdminIDFromContext returns the authenticated admin id, or uuid.Nil when
// the gate did not run.
func AdminIDFromContext(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(CtxAdminID); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}
