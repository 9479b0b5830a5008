package domain

import (
	"fmt"
	"strings"
)

// Role is the coarse permission category assigned to a user.
type Role string

const (
	RoleStudent Role = "student"
	RoleTutor   Role = "tutor"
	RoleAdmin   Role = "admin"
)

// Roles lists every valid role.
var Roles = []Role{RoleStudent, RoleTutor, RoleAdmin}

// ParseRole converts a stored or user-supplied value into a Role.
// Matching is case-insensitive; anything outside the enumeration is rejected.
func ParseRole(value string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(value)))
	if !role.Valid() {
		return "", fmt.Errorf("unknown role %q", value)
	}
	return role, nil
}

// Valid reports whether r is one of the enumerated roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTutor, RoleAdmin:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}
