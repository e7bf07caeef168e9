package models

import "fmt"

// Role is assigned when the account is created and never changes afterwards.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleProvider Role = "provider"
)

func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleProvider
}

func ParseRole(value string) (Role, error) {
	role := Role(value)
	if !role.Valid() {
		return "", fmt.Errorf("unknown role %q", value)
	}
	return role, nil
}
