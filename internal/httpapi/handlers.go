package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"number-inventory/internal/auth"
	"number-inventory/internal/lifecycle"
	"number-inventory/internal/rbac"
	"number-inventory/internal/stats"
	"number-inventory/internal/store"
	"number-inventory/internal/users"
)

// DefaultMaxUploadBytes caps CSV uploads when the config leaves it unset.
const DefaultMaxUploadBytes = 10 << 20

// Reader is the read side the handlers query directly.
type Reader interface {
	store.NumberReader
	store.LogReader
}

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse input, call internal services, return JSON.
type Handlers struct {
	Auth   *auth.Manager
	Users  *users.Service
	Engine *lifecycle.Engine
	Reader Reader
	Stats  *stats.Service

	MaxUploadBytes int64
}

// actor reads the identity placed in context by auth.RequireAccessToken.
func actor(c *gin.Context) (lifecycle.Actor, bool) {
	uid, err := auth.UserID(c.Request.Context())
	if err != nil {
		abort(c, http.StatusUnauthorized, "User not authenticated")
		return lifecycle.Actor{}, false
	}
	return lifecycle.Actor{ID: uid, Role: rbac.FromContext(c)}, true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		abort(c, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	return true
}
