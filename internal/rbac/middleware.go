package rbac

import (
	"net/http"

	"number-inventory/internal/auth"

	"github.com/gin-gonic/gin"
)

// RequireOperation allows the request only if the caller's role may perform op.
// Identity must already be in context (see auth.RequireAccessToken).
func RequireOperation(op Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := auth.Role(c.Request.Context())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "role required"})
			return
		}
		role, err := ParseRole(raw)
		if err != nil || !CanPerform(role, op) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "Access denied. Insufficient permissions."})
			return
		}
		c.Next()
	}
}

// FromContext returns the caller's role, or "" when absent or unknown.
func FromContext(c *gin.Context) Role {
	raw, err := auth.Role(c.Request.Context())
	if err != nil {
		return ""
	}
	role, err := ParseRole(raw)
	if err != nil {
		return ""
	}
	return role
}
