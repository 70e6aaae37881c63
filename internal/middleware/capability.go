package middleware

import (
	"net/http"

	"homologacao/internal/domain"
	"homologacao/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// RequireCapability gates a route on the pure domain.Can check. Roles are
// a closed enum; the handler behind this middleware can assume the caller
// is allowed to attempt the action.
func RequireCapability(action domain.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Role not found in token")
			c.Abort()
			return
		}

		if !domain.Can(domain.Role(role.(string)), action) {
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
			c.Abort()
			return
		}

		c.Next()
	}
}
