package services

import (
	"errors"
	"time"

	"grabbit/internal/core/domain/model/assignment"
	"grabbit/internal/core/domain/model/kernel"
	"grabbit/internal/core/domain/model/order"
	"grabbit/internal/pkg/errs"
)

// Outcome is the result of an assignment attempt.
type Outcome int

const (
	OutcomeUnknown Outcome = iota
	OutcomeSuccess
	OutcomeAlreadyAssigned
	OutcomeNotFound
	OutcomeExpired
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeAlreadyAssigned:
		return "already_assigned"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// AssignmentArbiter guarantees that an order is bound to at most one carrier.
//
// Business rules:
//   - Only an Open order whose expiry time has not been reached can be taken
//   - On success the order moves to Assigned and exactly one Assignment is created
//   - An overdue Open order is moved to Expired so the caller persists the correction
//
// Example usage:
//
//	arbiter := services.NewAssignmentArbiter()
//	a, outcome, err := arbiter.TryAssign(orderID, lockedOrder, carrierID, clk.Now())
//	switch outcome {
//	case services.OutcomeSuccess:
//	    // persist order and assignment in the same transaction
//	case services.OutcomeExpired:
//	    // persist the expired order, then return err
//	default:
//	    return err
//	}
type AssignmentArbiter struct{}

func NewAssignmentArbiter() AssignmentArbiter {
	return AssignmentArbiter{}
}

// TryAssign runs the state check and the binding against an order the caller
// holds locked. A nil order yields OutcomeNotFound.
//
// The returned error is nil only for OutcomeSuccess. For the other outcomes it
// wraps errs.ErrObjectNotFound, order.ErrOrderAlreadyAssigned or order.ErrOrderExpired.
func (AssignmentArbiter) TryAssign(
	orderID kernel.UUID,
	o *order.Order,
	carrierID kernel.UUID,
	now time.Time,
) (*assignment.Assignment, Outcome, error) {
	if o == nil {
		return nil, OutcomeNotFound, errs.NewObjectNotFoundError("order", orderID)
	}
	if err := o.Validate(); err != nil {
		return nil, OutcomeUnknown, err
	}

	if err := o.Assign(carrierID, now); err != nil {
		switch {
		case errors.Is(err, order.ErrOrderExpired):
			if o.IsOverdue(now) {
				if expireErr := o.Expire(now); expireErr != nil {
					return nil, OutcomeUnknown, expireErr
				}
			}
			return nil, OutcomeExpired, err
		case errors.Is(err, order.ErrOrderAlreadyAssigned):
			return nil, OutcomeAlreadyAssigned, err
		default:
			return nil, OutcomeUnknown, err
		}
	}

	a, err := assignment.NewAssignment(kernel.NewUUID(), o, now)
	if err != nil {
		return nil, OutcomeUnknown, err
	}

	return a, OutcomeSuccess, nil
}
