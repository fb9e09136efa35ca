package rbac

import (
	"fmt"

	"number-inventory/internal/apperr"
)

// Role is a closed set. Keep these stable; they are stored on users and carried in tokens.
type Role string

const (
	RoleAdmin   Role = "admin"
	RolePlanner Role = "planner"
)

var Roles = []Role{RoleAdmin, RolePlanner}

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RolePlanner:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Operation is something a caller may attempt.
type Operation string

const (
	OpRead        Operation = "read"
	OpCreate      Operation = "create"
	OpUpdate      Operation = "update"
	OpDelete      Operation = "delete"
	OpImportBulk  Operation = "importBulk"
	OpManageUsers Operation = "manageUsers"
	OpViewHealth  Operation = "viewHealth"
)

// CanPerform is the whole access policy.
// read and update are open to every role; everything else is admin only.
func CanPerform(role Role, op Operation) bool {
	switch role {
	case RoleAdmin:
		switch op {
		case OpRead, OpCreate, OpUpdate, OpDelete, OpImportBulk, OpManageUsers, OpViewHealth:
			return true
		}
	case RolePlanner:
		switch op {
		case OpRead, OpUpdate:
			return true
		}
	}
	return false
}

// Authorize turns a denial into an Unauthorized error.
func Authorize(role Role, op Operation) error {
	if CanPerform(role, op) {
		return nil
	}
	return apperr.Unauthorized("role %q may not %s", role, op)
}
