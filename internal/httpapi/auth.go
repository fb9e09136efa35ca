package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"number-inventory/internal/auth"
	"number-inventory/internal/users"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type sessionResponse struct {
	User         users.User `json:"user"`
	Token        string     `json:"token"`
	RefreshToken string     `json:"refreshToken"`
	ExpiresIn    int64      `json:"expiresIn"`
}

// Login checks credentials and issues a token pair.
// Unknown users, bad passwords and deactivated accounts all get the same answer.
func (h Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "Username and password are required")
		return
	}

	u, err := h.Users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if errors.Is(err, users.ErrInvalidCredentials) || errors.Is(err, users.ErrInactive) {
		abort(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		fail(c, err)
		return
	}
	h.issueSession(c, u, "Login successful")
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// Refresh exchanges a refresh token for a new pair. The role comes from the stored user.
func (h Handlers) Refresh(c *gin.Context) {
	var req refreshRequest
	if !bindJSON(c, &req) {
		return
	}
	claims, err := h.Auth.Verify(req.RefreshToken, auth.TokenTypeRefresh, time.Now())
	if err != nil {
		abort(c, http.StatusUnauthorized, "Invalid token.")
		return
	}
	u, err := h.Users.Get(c.Request.Context(), claims.UserID)
	if err != nil || !u.IsActive {
		abort(c, http.StatusUnauthorized, "Invalid token or user inactive.")
		return
	}
	h.issueSession(c, u, "Token refreshed")
}

func (h Handlers) issueSession(c *gin.Context, u users.User, message string) {
	pair, err := h.Auth.IssuePair(time.Now(), u.ID, string(u.Role))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, sessionResponse{
		User:         u,
		Token:        pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    int64(h.Auth.AccessTTL().Seconds()),
	}, message)
}

func (h Handlers) Me(c *gin.Context) {
	a, okAuth := actor(c)
	if !okAuth {
		return
	}
	u, err := h.Users.Get(c.Request.Context(), a.ID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, u, "User profile retrieved successfully")
}

type profileRequest struct {
	Email string `json:"email" binding:"required"`
}

func (h Handlers) UpdateProfile(c *gin.Context) {
	a, okAuth := actor(c)
	if !okAuth {
		return
	}
	var req profileRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.Users.UpdateProfile(c.Request.Context(), a.ID, req.Email)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, u, "Profile updated successfully")
}
