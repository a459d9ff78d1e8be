package queries

import (
	"errors"

	"grabbit/internal/pkg/errs"
	"grabbit/internal/pkg/guard"
)

var ErrGetAvailableOrdersQueryIsNotConstructed = errors.New(
	"GetAvailableOrdersQuery must be created via NewGetAvailableOrdersQuery constructor",
)

const (
	DefaultAvailableLimit = 50
	MaxAvailableLimit     = 200
)

// GetAvailableOrdersQuery lists orders a carrier could accept right now.
// The listing is a hint: the accept path re-checks status and expiry.
type GetAvailableOrdersQuery struct {
	limit int

	guard guard.ConstructorGuard
}

// NewGetAvailableOrdersQuery accepts a limit in [1, MaxAvailableLimit]; zero
// selects DefaultAvailableLimit.
func NewGetAvailableOrdersQuery(limit int) (GetAvailableOrdersQuery, error) {
	if limit == 0 {
		limit = DefaultAvailableLimit
	}
	if limit < 1 || limit > MaxAvailableLimit {
		return GetAvailableOrdersQuery{}, errs.NewValueIsOutOfRangeError("limit", limit, 1, MaxAvailableLimit)
	}
	return GetAvailableOrdersQuery{limit: limit, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetAvailableOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetAvailableOrdersQueryIsNotConstructed)
}

func (q GetAvailableOrdersQuery) Limit() int {
	return q.limit
}
