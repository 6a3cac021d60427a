package identity

import (
	"fmt"
	"strings"

	"github.com/sudharshini/backend/internal/domain/shared"
)

// Role is the single role a user holds
type Role string

const (
	RoleCustomer    Role = "CUSTOMER"
	RoleAdmin       Role = "ADMIN"
	RoleDeliveryMan Role = "DELIVERY_MAN"
)

// IsValid checks if the role is known
func (r Role) IsValid() bool {
	switch r {
	case RoleCustomer, RoleAdmin, RoleDeliveryMan:
		return true
	}
	return false
}

// String returns the string representation of Role
func (r Role) String() string {
	return string(r)
}

// ParseRole parses a role name case-insensitively
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Invalid role: %s", s))
	}
	return r, nil
}
