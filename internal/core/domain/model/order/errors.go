package order

import "errors"

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created through
	// NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

	// ErrOrderAlreadyAssigned is returned by the accept path when the order is no longer open.
	ErrOrderAlreadyAssigned = errors.New("order is already assigned")

	// ErrOrderExpired is returned when the order's expiry time has passed.
	ErrOrderExpired = errors.New("order is expired")

	// ErrInvalidTransition is returned when a carrier requests an edge outside the forward table.
	ErrInvalidTransition = errors.New("status transition is invalid")

	// ErrInvalidState is returned when an operation is not allowed from the current status.
	ErrInvalidState = errors.New("order status does not allow this operation")
)
