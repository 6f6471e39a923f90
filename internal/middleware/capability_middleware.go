package middleware

import (
	"net/http"

	"pollwise/internal/domain/user"
	"pollwise/internal/services"
	"pollwise/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

// RequireCapability gates a route on an explicit capability check against
// the caller's role. Must run after AuthMiddleware.
func RequireCapability(cap user.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := services.RoleFromContext(c.Request.Context())
		if !ok {
			c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
			c.Abort()
			return
		}
		if !user.HasCapability(role, cap) {
			c.JSON(http.StatusForbidden, httpdto.NewErrorResponse("forbidden", "FORBIDDEN"))
			c.Abort()
			return
		}
		c.Next()
	}
}
