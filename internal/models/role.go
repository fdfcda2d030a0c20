package models

import (
	"fmt"
)

// Role is a closed set, mirrored by a check constraint in the users table
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleOperator  Role = "OPERATOR"
	RolePassenger Role = "PASSENGER"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleOperator, RolePassenger:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}
