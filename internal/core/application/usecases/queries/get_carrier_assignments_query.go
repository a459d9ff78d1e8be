package queries

import (
	"errors"

	"grabbit/internal/core/domain/model/kernel"
	"grabbit/internal/pkg/errs"
	"grabbit/internal/pkg/guard"
)

var ErrGetCarrierAssignmentsQueryIsNotConstructed = errors.New(
	"GetCarrierAssignmentsQuery must be created via NewGetCarrierAssignmentsQuery constructor",
)

// GetCarrierAssignmentsQuery lists the orders a carrier has accepted.
type GetCarrierAssignmentsQuery struct {
	carrierID kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetCarrierAssignmentsQuery(carrierID kernel.UUID) (GetCarrierAssignmentsQuery, error) {
	if err := carrierID.Validate(); err != nil {
		return GetCarrierAssignmentsQuery{}, errs.NewValueIsInvalidErrorWithCause("carrier id", err)
	}
	return GetCarrierAssignmentsQuery{carrierID: carrierID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetCarrierAssignmentsQuery) Validate() error {
	return q.guard.Validate(ErrGetCarrierAssignmentsQueryIsNotConstructed)
}

func (q GetCarrierAssignmentsQuery) CarrierID() kernel.UUID {
	return q.carrierID
}
