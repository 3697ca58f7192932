package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
)

// userIDKey is the key used to store the authenticated user's ID in the
// request context.
const userIDKey = contextKey("userID")

// GetUserIDFromContext retrieves the authenticated user ID from the Gin
// context. It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userIDVal, exists := c.Get(string(userIDKey))
	if !exists {
		// check in the request context as well
		if v := c.Request.Context().Value(userIDKey); v != nil {
			if userID, ok := v.(string); ok {
				return userID, true
			}
		}
		return "", false
	}

	userID, ok := userIDVal.(string)
	if !ok {
		return "", false
	}
	return userID, true
}

// userRoleKey is the key used to store the authenticated user's role in
// the request context.
const userRoleKey = contextKey("userRole")

// GetUserRoleFromContext retrieves the authenticated user's role from the
// Gin context. It returns the role and a boolean indicating if it was found.
func GetUserRoleFromContext(c *gin.Context) (string, bool) {
	roleVal, exists := c.Get(string(userRoleKey))
	if !exists {
		if v := c.Request.Context().Value(userRoleKey); v != nil {
			if role, ok := v.(string); ok && role != "" {
				return role, true
			}
		}
		return "", false
	}

	role, ok := roleVal.(string)
	if !ok || role == "" {
		return "", false
	}
	return role, true
}

// GetUserIDFromCtx retrieves the authenticated user ID from a standard
// context, for code below the handler layer.
func GetUserIDFromCtx(ctx context.Context) (string, bool) {
	if v := ctx.Value(userIDKey); v != nil {
		if userID, ok := v.(string); ok {
			return userID, true
		}
	}
	return "", false
}
