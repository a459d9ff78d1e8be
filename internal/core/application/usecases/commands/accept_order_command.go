package commands

import (
	"errors"

	"grabbit/internal/core/domain/model/kernel"
	"grabbit/internal/pkg/errs"
	"grabbit/internal/pkg/guard"
)

var ErrAcceptOrderCommandIsNotConstructed = errors.New(
	"AcceptOrderCommand must be created via NewAcceptOrderCommand constructor",
)

// AcceptOrderCommand is a carrier's attempt to take an open order.
type AcceptOrderCommand struct { //nolint:recvcheck //using for validation
	orderID   kernel.UUID
	carrierID kernel.UUID

	guard guard.ConstructorGuard
}

func NewAcceptOrderCommand(orderID, carrierID kernel.UUID) (AcceptOrderCommand, error) {
	cmd := AcceptOrderCommand{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setCarrierID(carrierID),
	); err != nil {
		return AcceptOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c AcceptOrderCommand) Validate() error {
	return c.guard.Validate(ErrAcceptOrderCommandIsNotConstructed)
}

func (c AcceptOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c AcceptOrderCommand) CarrierID() kernel.UUID {
	return c.carrierID
}

func (c *AcceptOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("order id", err)
	}
	c.orderID = orderID
	return nil
}

func (c *AcceptOrderCommand) setCarrierID(carrierID kernel.UUID) error {
	if err := carrierID.Validate(); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("carrier id", err)
	}
	c.carrierID = carrierID
	return nil
}
