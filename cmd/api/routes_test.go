package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"number-inventory/internal/app"
	"number-inventory/internal/config"
)

func newTestApp(t *testing.T) *app.App {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := config.Config{
		App:  config.AppConfig{Env: "local", Port: 8080},
		DB:   config.DBConfig{Driver: "sqlite", Path: ":memory:"},
		Auth: config.AuthConfig{JWTSecret: "secret", AccessTokenTTL: time.Hour, RefreshTokenTTL: 24 * time.Hour, BcryptCost: 4},
	}
	a, err := app.Open(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestRouter_PublicEndpoints(t *testing.T) {
	r := newRouter(newTestApp(t))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, strings.Contains(w.Body.String(), "inventory_http_requests_total"))
}

func TestRouter_APIRequiresToken(t *testing.T) {
	r := newRouter(newTestApp(t))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/numbers", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
