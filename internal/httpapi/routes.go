package httpapi

import (
	"github.com/gin-gonic/gin"

	"number-inventory/internal/rbac"
)

// Register mounts the API on g. authMW must be auth.RequireAccessToken or equivalent.
// Route-level checks mirror the policy the services enforce again.
func (h Handlers) Register(g *gin.RouterGroup, authMW gin.HandlerFunc) {
	read := rbac.RequireOperation(rbac.OpRead)

	authGroup := g.Group("/auth")
	{
		authGroup.POST("/login", h.Login)
		authGroup.POST("/refresh", h.Refresh)
		authGroup.GET("/me", authMW, h.Me)
		authGroup.PUT("/update", authMW, h.UpdateProfile)
		authGroup.POST("/register", authMW, rbac.RequireOperation(rbac.OpManageUsers), h.CreateUser)
	}

	nums := g.Group("/numbers", authMW)
	{
		nums.GET("", read, h.ListNumbers)
		nums.GET("/stats/summary", read, h.NumberStats)
		nums.GET("/:id", read, h.GetNumber)
		nums.PUT("/:id", rbac.RequireOperation(rbac.OpUpdate), h.UpdateNumber)
		nums.POST("", rbac.RequireOperation(rbac.OpCreate), h.CreateNumber)
		nums.POST("/import", rbac.RequireOperation(rbac.OpImportBulk), h.ImportNumbers)
		nums.DELETE("/:id", rbac.RequireOperation(rbac.OpDelete), h.DeleteNumber)
	}

	logs := g.Group("/logs", authMW, read)
	{
		logs.GET("", h.ListLogs)
		logs.GET("/stats", h.LogStats)
		logs.GET("/number/:number", h.NumberLogs)
	}

	dash := g.Group("/dashboard", authMW)
	{
		dash.GET("/summary", read, h.DashboardSummary)
		dash.GET("/analytics", read, h.DashboardAnalytics)
		dash.GET("/health", rbac.RequireOperation(rbac.OpViewHealth), h.SystemHealth)
	}

	usersGroup := g.Group("/users", authMW, rbac.RequireOperation(rbac.OpManageUsers))
	{
		usersGroup.GET("", h.ListUsers)
		usersGroup.GET("/stats", h.UserStats)
		usersGroup.POST("", h.CreateUser)
		usersGroup.PUT("/:id", h.UpdateUser)
		usersGroup.DELETE("/:id", h.DeleteUser)
	}
}
