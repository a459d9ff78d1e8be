package commands

import (
	"errors"

	"grabbit/internal/core/domain/model/kernel"
	"grabbit/internal/core/domain/model/order"
	"grabbit/internal/pkg/errs"
	"grabbit/internal/pkg/guard"
)

var ErrAdvanceStatusCommandIsNotConstructed = errors.New(
	"AdvanceStatusCommand must be created via NewAdvanceStatusCommand constructor",
)

// AdvanceStatusCommand asks to move an order one step along the carrier's
// forward table (assigned -> in_progress -> ready_for_pickup).
type AdvanceStatusCommand struct { //nolint:recvcheck //using for validation
	orderID   kernel.UUID
	carrierID kernel.UUID
	target    order.Status

	guard guard.ConstructorGuard
}

func NewAdvanceStatusCommand(orderID, carrierID kernel.UUID, target order.Status) (AdvanceStatusCommand, error) {
	cmd := AdvanceStatusCommand{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setCarrierID(carrierID),
		cmd.setTarget(target),
	); err != nil {
		return AdvanceStatusCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c AdvanceStatusCommand) Validate() error {
	return c.guard.Validate(ErrAdvanceStatusCommandIsNotConstructed)
}

func (c AdvanceStatusCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c AdvanceStatusCommand) CarrierID() kernel.UUID {
	return c.carrierID
}

func (c AdvanceStatusCommand) Target() order.Status {
	return c.target
}

func (c *AdvanceStatusCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("order id", err)
	}
	c.orderID = orderID
	return nil
}

func (c *AdvanceStatusCommand) setCarrierID(carrierID kernel.UUID) error {
	if err := carrierID.Validate(); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("carrier id", err)
	}
	c.carrierID = carrierID
	return nil
}

func (c *AdvanceStatusCommand) setTarget(target order.Status) error {
	if err := target.Validate(); err != nil {
		return err
	}
	c.target = target
	return nil
}
