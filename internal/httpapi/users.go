package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"number-inventory/internal/numbers"
	"number-inventory/internal/rbac"
	"number-inventory/internal/users"
)

func (h Handlers) ListUsers(c *gin.Context) {
	a, okAuth := actor(c)
	if !okAuth {
		return
	}
	q := users.ListQuery{
		Role:   rbac.Role(c.Query("role")),
		Search: c.Query("search"),
		Page:   numbers.AtoiDefault(c.Query("page"), 1),
		Limit:  numbers.AtoiDefault(c.Query("limit"), users.DefaultLimit),
	}
	if raw, set := c.GetQuery("isActive"); set {
		active, _ := strconv.ParseBool(raw)
		q.IsActive = &active
	}
	q.Normalize()

	list, total, err := h.Users.List(c.Request.Context(), a.Role, q)
	if err != nil {
		fail(c, err)
		return
	}
	okPage(c, list, Pagination{Page: q.Page, Limit: q.Limit, Total: total, Pages: numbers.Pages(total, q.Limit)},
		"Users retrieved successfully")
}

func (h Handlers) CreateUser(c *gin.Context) {
	a, okAuth := actor(c)
	if !okAuth {
		return
	}
	var in users.NewUser
	if !bindJSON(c, &in) {
		return
	}
	u, err := h.Users.Create(c.Request.Context(), a.Role, in)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, u, "User created successfully")
}

func (h Handlers) UpdateUser(c *gin.Context) {
	a, okAuth := actor(c)
	if !okAuth {
		return
	}
	var ch users.Changes
	if !bindJSON(c, &ch) {
		return
	}
	u, err := h.Users.Update(c.Request.Context(), a.Role, c.Param("id"), ch)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, u, "User updated successfully")
}

// DeleteUser deactivates the account; users are never removed.
func (h Handlers) DeleteUser(c *gin.Context) {
	a, okAuth := actor(c)
	if !okAuth {
		return
	}
	if err := h.Users.Deactivate(c.Request.Context(), a.ID, a.Role, c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, nil, "User deleted successfully")
}

func (h Handlers) UserStats(c *gin.Context) {
	a, okAuth := actor(c)
	if !okAuth {
		return
	}
	out, err := h.Users.Stats(c.Request.Context(), a.Role)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, out, "User statistics retrieved successfully")
}
