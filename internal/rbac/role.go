package rbac

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Role is a closed label determining which operations a principal may
// perform. Free-text role strings from legacy data are rejected at the
// boundary by ParseRole.
type Role string

const (
	// RoleNone is the sentinel for principals without an assigned role.
	RoleNone Role = ""

	RoleSuperadmin   Role = "superadmin"
	RoleAdmin        Role = "admin"
	RoleDoctor       Role = "doctor"
	RoleNurse        Role = "nurse"
	RoleReceptionist Role = "receptionist"
	RoleStaff        Role = "staff"
)

// Roles lists every assignable role.
func Roles() []Role {
	return []Role{RoleSuperadmin, RoleAdmin, RoleDoctor, RoleNurse, RoleReceptionist, RoleStaff}
}

// ParseRole converts a stored label into a Role.
func ParseRole(s string) (Role, error) {
	candidate := Role(strings.ToLower(strings.TrimSpace(s)))
	if candidate == RoleNone {
		return RoleNone, nil
	}
	for _, r := range Roles() {
		if candidate == r {
			return r, nil
		}
	}
	return RoleNone, fmt.Errorf("rbac: unknown role %q", s)
}

// Valid reports whether the role belongs to the closed set.
func (r Role) Valid() bool {
	for _, known := range Roles() {
		if r == known {
			return true
		}
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

var titleCaser = cases.Title(language.English)

// Display returns the human readable label used in listings.
func (r Role) Display() string {
	if r == RoleNone {
		return "No Role"
	}
	return titleCaser.String(string(r))
}

// RoleSet is an unordered collection of roles.
type RoleSet map[Role]struct{}

// NewRoleSet builds a set from the given roles.
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		if r == RoleNone {
			continue
		}
		set[r] = struct{}{}
	}
	return set
}

// Contains reports membership.
func (s RoleSet) Contains(r Role) bool {
	_, ok := s[r]
	return ok
}

// String renders the set in stable order for audit details and logs.
func (s RoleSet) String() string {
	labels := make([]string, 0, len(s))
	for r := range s {
		labels = append(labels, string(r))
	}
	sort.Strings(labels)
	return strings.Join(labels, ",")
}
