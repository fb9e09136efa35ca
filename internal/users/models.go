package users

import (
	"strings"
	"time"

	"number-inventory/internal/rbac"
)

// User is a dashboard account. Users are never hard-deleted; Deactivate clears IsActive.
type User struct {
	ID           string     `json:"id" db:"id"`
	Username     string     `json:"username" db:"username"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Role         rbac.Role  `json:"role" db:"role"`
	IsActive     bool       `json:"isActive" db:"is_active"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at"`
	LastLogin    *time.Time `json:"lastLogin,omitempty" db:"last_login"`
}

// NewUser is the input to Create.
type NewUser struct {
	Username string    `json:"username" validate:"required,min=3,max=30"`
	Email    string    `json:"email" validate:"required,email"`
	Password string    `json:"password" validate:"required,min=6"`
	Role     rbac.Role `json:"role" validate:"omitempty,oneof=admin planner"`
}

func (n *NewUser) Normalize() {
	n.Username = strings.TrimSpace(n.Username)
	n.Email = strings.ToLower(strings.TrimSpace(n.Email))
	if n.Role == "" {
		n.Role = rbac.RolePlanner
	}
}

// Changes is the input to Update. Passwords cannot be changed here.
type Changes struct {
	Username *string    `json:"username,omitempty" validate:"omitempty,min=3,max=30"`
	Email    *string    `json:"email,omitempty" validate:"omitempty,email"`
	Role     *rbac.Role `json:"role,omitempty" validate:"omitempty,oneof=admin planner"`
	IsActive *bool      `json:"isActive,omitempty"`
}

func (c *Changes) Normalize() {
	if c.Username != nil {
		s := strings.TrimSpace(*c.Username)
		c.Username = &s
	}
	if c.Email != nil {
		s := strings.ToLower(strings.TrimSpace(*c.Email))
		c.Email = &s
	}
}

// ListQuery filters the user list.
type ListQuery struct {
	Role     rbac.Role
	IsActive *bool
	Search   string
	Page     int
	Limit    int
}

const DefaultLimit = 25

func (q *ListQuery) Normalize() {
	q.Search = strings.TrimSpace(q.Search)
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > 500 {
		q.Limit = 500
	}
}

func (q ListQuery) Offset() int { return (q.Page - 1) * q.Limit }

// Matches evaluates the filter part of q against u.
func (q ListQuery) Matches(u User) bool {
	if q.Role != "" && u.Role != q.Role {
		return false
	}
	if q.IsActive != nil && u.IsActive != *q.IsActive {
		return false
	}
	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		if !strings.Contains(strings.ToLower(u.Username), needle) &&
			!strings.Contains(strings.ToLower(u.Email), needle) {
			return false
		}
	}
	return true
}

// Stats is the account overview shown to admins.
type Stats struct {
	TotalUsers          int `json:"totalUsers"`
	ActiveUsers         int `json:"activeUsers"`
	InactiveUsers       int `json:"inactiveUsers"`
	AdminUsers          int `json:"adminUsers"`
	PlannerUsers        int `json:"plannerUsers"`
	RecentRegistrations int `json:"recentRegistrations"`
}
