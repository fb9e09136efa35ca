package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const authorizationHeader = "Authorization"
const bearerPrefix = "Bearer "

// Identity is what the middleware needs to know about the caller.
type Identity struct {
	UserID   string
	Username string
	Role     string
	Active   bool
}

// IdentityLookup resolves a user id from a verified token to its current state.
type IdentityLookup interface {
	Identity(ctx context.Context, userID string) (Identity, error)
}

// RequireAccessToken verifies an access token, rejects unknown or inactive users,
// and injects identity into request context.
// It does not perform RBAC checks; those belong to internal/rbac.
func RequireAccessToken(m *Manager, users IdentityLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(authorizationHeader))
		if raw == "" || !strings.HasPrefix(raw, bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Access denied. No token provided."})
			return
		}
		tok := strings.TrimPrefix(raw, bearerPrefix)

		claims, err := m.Verify(tok, TokenTypeAccess, time.Now())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid token."})
			return
		}

		// The stored user is authoritative for role and active state.
		id, err := users.Identity(c.Request.Context(), claims.UserID)
		if err != nil || !id.Active {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid token or user inactive."})
			return
		}

		ctx := WithIdentity(c.Request.Context(), id.UserID, id.Role)
		c.Request = c.Request.WithContext(ctx)

		// Also store on gin context for handler convenience.
		c.Set("user_id", id.UserID)
		c.Set("username", id.Username)
		c.Set("role", id.Role)

		c.Next()
	}
}
