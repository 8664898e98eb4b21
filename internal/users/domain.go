package users

import (
	"errors"
	"time"

	"github.com/clinicore/clinicore/internal/rbac"
)

// User is a provisioned principal. Accounts are deactivated, never
// hard-deleted, so audit records keep a valid actor reference.
type User struct {
	ID        int64
	Username  string
	Email     string
	Name      string
	Role      rbac.Role
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

var (
	// ErrNotFound indicates the user does not exist.
	ErrNotFound = errors.New("users: not found")
	// ErrDuplicate indicates a username or email collision.
	ErrDuplicate = errors.New("users: duplicate username or email")
)

// rbacRole maps a stored label to the closed role set; unknown legacy
// labels surface as RoleNone instead of failing the read.
func rbacRole(s string) rbac.Role {
	role, err := rbac.ParseRole(s)
	if err != nil {
		return rbac.RoleNone
	}
	return role
}
