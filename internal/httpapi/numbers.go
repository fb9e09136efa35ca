package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"number-inventory/internal/lifecycle"
	"number-inventory/internal/numbers"
)

func listQuery(c *gin.Context) numbers.ListQuery {
	q := numbers.ListQuery{
		Status:       numbers.Status(strings.TrimSpace(c.Query("status"))),
		ServiceTypes: numbers.SplitServiceTypes(c.Query("serviceTypes")),
		SpecialTypes: numbers.SplitSpecialTypes(c.Query("specialTypes")),
		Search:       c.Query("search"),
		Page:         numbers.AtoiDefault(c.Query("page"), 1),
		Limit:        numbers.AtoiDefault(c.Query("limit"), numbers.DefaultLimit),
		SortBy:       c.DefaultQuery("sortBy", "createdAt"),
		SortDesc:     numbers.ParseSortOrder(c.DefaultQuery("sortOrder", "desc")),
	}
	q.Normalize()
	return q
}

func (h Handlers) ListNumbers(c *gin.Context) {
	q := listQuery(c)
	rows, total, err := h.Reader.ListNumbers(c.Request.Context(), q)
	if err != nil {
		fail(c, err)
		return
	}
	okPage(c, rows, Pagination{Page: q.Page, Limit: q.Limit, Total: total, Pages: numbers.Pages(total, q.Limit)},
		"Numbers retrieved successfully")
}

func (h Handlers) GetNumber(c *gin.Context) {
	rec, err := h.Reader.GetNumber(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, rec, "Number retrieved successfully")
}

func (h Handlers) CreateNumber(c *gin.Context) {
	a, okAuth := actor(c)
	if !okAuth {
		return
	}
	var f numbers.Fields
	if !bindJSON(c, &f) {
		return
	}
	rec, err := h.Engine.Create(c.Request.Context(), a, f)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, rec, "Number created successfully")
}

func (h Handlers) UpdateNumber(c *gin.Context) {
	a, okAuth := actor(c)
	if !okAuth {
		return
	}
	var p numbers.Patch
	if !bindJSON(c, &p) {
		return
	}
	rec, _, err := h.Engine.Update(c.Request.Context(), a, c.Param("id"), p)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, rec, "Number updated successfully")
}

func (h Handlers) DeleteNumber(c *gin.Context) {
	a, okAuth := actor(c)
	if !okAuth {
		return
	}
	if err := h.Engine.Delete(c.Request.Context(), a, c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, nil, "Number deleted successfully")
}

// ImportNumbers takes a multipart "file" field holding header-first CSV.
func (h Handlers) ImportNumbers(c *gin.Context) {
	a, okAuth := actor(c)
	if !okAuth {
		return
	}

	limit := h.MaxUploadBytes
	if limit <= 0 {
		limit = DefaultMaxUploadBytes
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+(1<<20))

	fh, err := c.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			abort(c, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		abort(c, http.StatusBadRequest, "No file uploaded")
		return
	}
	if fh.Size > limit {
		abort(c, http.StatusRequestEntityTooLarge, "File too large")
		return
	}
	if ct := fh.Header.Get("Content-Type"); ct != "text/csv" && !strings.EqualFold(filepath.Ext(fh.Filename), ".csv") {
		abort(c, http.StatusBadRequest, "Only CSV files are allowed")
		return
	}

	f, err := fh.Open()
	if err != nil {
		fail(c, err)
		return
	}
	defer f.Close()

	rows, err := lifecycle.CSVRows(f)
	if err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.Engine.Import(c.Request.Context(), a, rows)
	if err != nil {
		// rows before the failure stay committed; report them
		if res.SuccessCount+res.FailedCount > 0 {
			failWith(c, err, res)
			return
		}
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, res, fmt.Sprintf("Import completed: %d successful, %d failed", res.SuccessCount, res.FailedCount))
}

func (h Handlers) NumberStats(c *gin.Context) {
	sum, err := h.Stats.Summary(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, sum, "Number statistics retrieved successfully")
}
