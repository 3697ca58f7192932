package middleware

import (
	"log/slog"
	"net/http"

	"github.com/fintaxcl/tax_events_app/internal/core/domain"
	"github.com/gin-gonic/gin"
)

// RequireRoles gates a route to the given roles. It expects AuthMiddleware
// to have run first; a token without a recognized role is rejected.
func RequireRoles(allowed ...domain.UserRole) gin.HandlerFunc {
	allowedSet := make(map[domain.UserRole]bool, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = true
	}

	return func(c *gin.Context) {
		role, ok := GetUserRoleFromContext(c)
		if !ok || !allowedSet[domain.UserRole(role)] {
			GetLoggerFromCtx(c.Request.Context()).Warn("Role not allowed for route",
				slog.String("role", role), slog.String("path", c.FullPath()))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			return
		}

		c.Next()
	}
}
