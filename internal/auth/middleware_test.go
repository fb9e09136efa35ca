package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"number-inventory/internal/config"

	"github.com/gin-gonic/gin"
)

type lookupFunc func(ctx context.Context, id string) (Identity, error)

func (f lookupFunc) Identity(ctx context.Context, id string) (Identity, error) { return f(ctx, id) }

func newTestRouter(t *testing.T, users IdentityLookup) (*gin.Engine, *Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	m, err := NewManager(config.AuthConfig{JWTSecret: "secret", AccessTokenTTL: time.Minute, RefreshTokenTTL: time.Hour})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	r := gin.New()
	r.GET("/me", RequireAccessToken(m, users), func(c *gin.Context) {
		uid, _ := UserID(c.Request.Context())
		role, _ := Role(c.Request.Context())
		c.JSON(200, gin.H{"user_id": uid, "role": role})
	})
	return r, m
}

func TestRequireAccessToken_RoleFromStore(t *testing.T) {
	r, m := newTestRouter(t, lookupFunc(func(_ context.Context, id string) (Identity, error) {
		return Identity{UserID: id, Username: "ops", Role: "planner", Active: true}, nil
	}))
	// token still says admin; the stored user was demoted
	pair, _ := m.IssuePair(time.Now(), "u1", "admin")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	r.ServeHTTP(w, req)
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if body := w.Body.String(); body != `{"role":"planner","user_id":"u1"}` {
		t.Fatalf("unexpected body %s", body)
	}
}

func TestRequireAccessToken_RejectsInactive(t *testing.T) {
	r, m := newTestRouter(t, lookupFunc(func(_ context.Context, id string) (Identity, error) {
		return Identity{UserID: id, Role: "admin", Active: false}, nil
	}))
	pair, _ := m.IssuePair(time.Now(), "u1", "admin")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	r.ServeHTTP(w, req)
	if w.Code != 401 {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRequireAccessToken_MissingOrUnknown(t *testing.T) {
	r, m := newTestRouter(t, lookupFunc(func(context.Context, string) (Identity, error) {
		return Identity{}, errors.New("not found")
	}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	if w.Code != 401 {
		t.Fatalf("expected 401 without header, got %d", w.Code)
	}

	pair, _ := m.IssuePair(time.Now(), "ghost", "admin")
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	r.ServeHTTP(w, req)
	if w.Code != 401 {
		t.Fatalf("expected 401 for unknown user, got %d", w.Code)
	}
}
