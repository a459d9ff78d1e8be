// Package user models the two actor roles. Identity is resolved upstream; the
// engine only receives already-resolved identifiers.
package user

import (
	"fmt"
	"strings"

	"grabbit/internal/core/domain/model/kernel"
	"grabbit/internal/pkg/errs"
)

type Role int

const (
	UnknownRole Role = iota
	Buyer
	Carrier
)

func (r Role) String() string {
	switch r {
	case Buyer:
		return "buyer"
	case Carrier:
		return "carrier"
	default:
		return "unknown"
	}
}

// ParseRole accepts "buyer" or "carrier" in any case.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buyer":
		return Buyer, nil
	case "carrier":
		return Carrier, nil
	default:
		return UnknownRole, errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%q is not a known role", s))
	}
}

// User is an authenticated actor. The role never changes.
type User struct {
	id   kernel.UUID
	role Role
}

func NewUser(id kernel.UUID, role Role) (User, error) {
	if err := id.Validate(); err != nil {
		return User{}, errs.NewValueIsInvalidErrorWithCause("user id", err)
	}
	if role != Buyer && role != Carrier {
		return User{}, errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%d is not a valid role", role))
	}
	return User{id: id, role: role}, nil
}

func (u User) ID() kernel.UUID {
	return u.id
}

func (u User) Role() Role {
	return u.role
}

func (u User) Is(role Role) bool {
	return u.role == role
}
