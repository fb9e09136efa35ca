package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"number-inventory/internal/audit"
	"number-inventory/internal/numbers"
)

func logQuery(c *gin.Context) (audit.Query, bool) {
	q := audit.Query{
		Number:      c.Query("number"),
		Action:      audit.Action(strings.TrimSpace(c.Query("action"))),
		PerformedBy: c.Query("performedBy"),
		Page:        numbers.AtoiDefault(c.Query("page"), 1),
		Limit:       numbers.AtoiDefault(c.Query("limit"), audit.DefaultLimit),
		SortBy:      c.DefaultQuery("sortBy", "timestamp"),
		SortDesc:    numbers.ParseSortOrder(c.DefaultQuery("sortOrder", "desc")),
	}
	for _, p := range []struct {
		param    string
		endOfDay bool
		dst      *time.Time
	}{
		{"startDate", false, &q.StartDate},
		{"endDate", true, &q.EndDate},
	} {
		raw := c.Query(p.param)
		if raw == "" {
			continue
		}
		t, valid := audit.ParseDate(raw, p.endOfDay)
		if !valid {
			abort(c, http.StatusBadRequest, "Invalid "+p.param)
			return q, false
		}
		*p.dst = t
	}
	q.Normalize()
	return q, true
}

func (h Handlers) respondLogs(c *gin.Context, q audit.Query, message string) {
	entries, total, err := h.Reader.QueryLogs(c.Request.Context(), q)
	if err != nil {
		fail(c, err)
		return
	}
	okPage(c, entries, Pagination{Page: q.Page, Limit: q.Limit, Total: total, Pages: numbers.Pages(total, q.Limit)}, message)
}

func (h Handlers) ListLogs(c *gin.Context) {
	q, valid := logQuery(c)
	if !valid {
		return
	}
	h.respondLogs(c, q, "Logs retrieved successfully")
}

// NumberLogs is the history of one number value, including deleted ones.
func (h Handlers) NumberLogs(c *gin.Context) {
	q, valid := logQuery(c)
	if !valid {
		return
	}
	q.Number = c.Param("number")
	h.respondLogs(c, q, "Number logs retrieved successfully")
}

func (h Handlers) LogStats(c *gin.Context) {
	out, err := h.Stats.LogStats(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, out, "Log statistics retrieved successfully")
}
