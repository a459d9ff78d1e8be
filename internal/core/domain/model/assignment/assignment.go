package assignment

import (
	"errors"
	"fmt"
	"time"

	"grabbit/internal/core/domain/model/kernel"
	"grabbit/internal/core/domain/model/order"
	"grabbit/internal/pkg/errs"
)

// ErrAssignmentIsNotConstructed is returned when an Assignment was not created
// through NewAssignment or RestoreAssignment.
var ErrAssignmentIsNotConstructed = errors.New("Assignment must be created via NewAssignment constructor")

// Assignment records which carrier accepted an order and tracks the carrier's
// progress on it.
type Assignment struct {
	id          kernel.UUID
	orderID     kernel.UUID
	carrierID   kernel.UUID
	status      order.Status
	acceptedAt  time.Time
	readyAt     *time.Time
	completedAt *time.Time

	isConstructed bool
}

// NewAssignment creates the Assignment for an order that was just assigned.
// The order must already be bound to carrierID.
func NewAssignment(id kernel.UUID, o *order.Order, acceptedAt time.Time) (*Assignment, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if o.Status() != order.Assigned || o.Carrier() == nil {
		return nil, errs.NewValueIsInvalidErrorWithCause(
			"order",
			fmt.Errorf("%s order cannot receive an assignment", o.Status()),
		)
	}

	a := &Assignment{
		status:        order.Assigned,
		acceptedAt:    acceptedAt,
		isConstructed: true,
	}

	if err := errors.Join(
		a.setID(id),
		a.setOrderID(o.ID()),
		a.setCarrierID(*o.Carrier()),
	); err != nil {
		return nil, err
	}

	return a, nil
}

// RestoreAssignment rehydrates an Assignment from persistence.
func RestoreAssignment(
	id kernel.UUID,
	orderID kernel.UUID,
	carrierID kernel.UUID,
	status order.Status,
	acceptedAt time.Time,
	readyAt *time.Time,
	completedAt *time.Time,
) (*Assignment, error) {
	a := &Assignment{
		acceptedAt:    acceptedAt,
		readyAt:       readyAt,
		completedAt:   completedAt,
		isConstructed: true,
	}

	if err := errors.Join(
		a.setID(id),
		a.setOrderID(orderID),
		a.setCarrierID(carrierID),
		a.setStatus(status),
	); err != nil {
		return nil, err
	}

	return a, nil
}

// Validate ensures the Assignment instance was properly constructed.
func (a *Assignment) Validate() error {
	if a == nil || !a.isConstructed {
		return ErrAssignmentIsNotConstructed
	}
	return nil
}

func (a *Assignment) ID() kernel.UUID {
	return a.id
}

func (a *Assignment) OrderID() kernel.UUID {
	return a.orderID
}

func (a *Assignment) CarrierID() kernel.UUID {
	return a.carrierID
}

func (a *Assignment) Status() order.Status {
	return a.status
}

func (a *Assignment) AcceptedAt() time.Time {
	return a.acceptedAt
}

// ReadyAt is nil until the order reaches ReadyForPickup.
func (a *Assignment) ReadyAt() *time.Time {
	return a.readyAt
}

// CompletedAt is nil until the buyer confirms delivery.
func (a *Assignment) CompletedAt() *time.Time {
	return a.completedAt
}

// Mirror copies the order's status onto the assignment and stamps the
// matching timestamp. Mirroring the same status twice is a no-op.
func (a *Assignment) Mirror(o *order.Order, now time.Time) error {
	if !o.ID().IsEqual(a.orderID) || !o.IsBoundTo(a.carrierID) {
		return errs.NewValueIsInvalidErrorWithCause(
			"order",
			fmt.Errorf("order %s is not bound by assignment %s", o.ID(), a.id),
		)
	}

	status := o.Status()
	if err := a.setStatus(status); err != nil {
		return err
	}

	switch status {
	case order.ReadyForPickup:
		if a.readyAt == nil {
			a.readyAt = &now
		}
	case order.Completed:
		if a.completedAt == nil {
			a.completedAt = &now
		}
	}

	return nil
}

func (a *Assignment) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	a.id = id
	return nil
}

func (a *Assignment) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("order id", err)
	}
	a.orderID = orderID
	return nil
}

func (a *Assignment) setCarrierID(carrierID kernel.UUID) error {
	if err := carrierID.Validate(); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("carrier id", err)
	}
	a.carrierID = carrierID
	return nil
}

func (a *Assignment) setStatus(status order.Status) error {
	if !status.HasCarrier() {
		return errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid assignment status", status),
		)
	}
	a.status = status
	return nil
}
