package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h Handlers) DashboardSummary(c *gin.Context) {
	sum, err := h.Stats.Summary(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	bySvc, err := h.Stats.ByServiceType(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	bySpecial, err := h.Stats.BySpecialType(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{
		"totalNumbers":       sum.TotalNumbers,
		"availableNumbers":   sum.AvailableNumbers,
		"allocatedNumbers":   sum.AllocatedNumbers,
		"reservedNumbers":    sum.ReservedNumbers,
		"heldNumbers":        sum.HeldNumbers,
		"quarantinedNumbers": sum.QuarantinedNumbers,
		"byServiceType":      bySvc,
		"bySpecialType":      bySpecial,
	}, "Dashboard summary retrieved successfully")
}

func (h Handlers) DashboardAnalytics(c *gin.Context) {
	a, err := h.Stats.Analytics(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, a, "Dashboard analytics retrieved successfully")
}

func (h Handlers) SystemHealth(c *gin.Context) {
	out, err := h.Stats.Health(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, out, "System health retrieved successfully")
}
