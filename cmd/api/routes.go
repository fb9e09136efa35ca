package main

import (
	"context"
	"net/http"
	"time"

	"number-inventory/internal/app"
	"number-inventory/internal/auth"
	"number-inventory/internal/httpapi"
	"number-inventory/internal/metrics"
	"number-inventory/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// newRouter wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func newRouter(a *app.App) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(a.Log))
	r.Use(metrics.Middleware())

	// public
	r.GET("/healthz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := a.Store.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := httpapi.Handlers{
		Auth:           a.Auth,
		Users:          a.Users,
		Engine:         a.Engine,
		Reader:         a.Store,
		Stats:          a.Stats,
		MaxUploadBytes: a.Config.Import.MaxUploadBytes,
	}
	h.Register(r.Group("/api"), auth.RequireAccessToken(a.Auth, a.Users))
	return r
}
