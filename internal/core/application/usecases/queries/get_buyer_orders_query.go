package queries

import (
	"errors"

	"grabbit/internal/core/domain/model/kernel"
	"grabbit/internal/pkg/errs"
	"grabbit/internal/pkg/guard"
)

var ErrGetBuyerOrdersQueryIsNotConstructed = errors.New(
	"GetBuyerOrdersQuery must be created via NewGetBuyerOrdersQuery constructor",
)

// GetBuyerOrdersQuery lists every order a buyer created, terminal ones included.
type GetBuyerOrdersQuery struct {
	buyerID kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetBuyerOrdersQuery(buyerID kernel.UUID) (GetBuyerOrdersQuery, error) {
	if err := buyerID.Validate(); err != nil {
		return GetBuyerOrdersQuery{}, errs.NewValueIsInvalidErrorWithCause("buyer id", err)
	}
	return GetBuyerOrdersQuery{buyerID: buyerID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetBuyerOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetBuyerOrdersQueryIsNotConstructed)
}

func (q GetBuyerOrdersQuery) BuyerID() kernel.UUID {
	return q.buyerID
}
