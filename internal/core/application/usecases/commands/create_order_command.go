package commands

import (
	"errors"
	"time"

	"grabbit/internal/core/domain/model/kernel"
	"grabbit/internal/core/domain/model/order"
	"grabbit/internal/pkg/errs"
	"grabbit/internal/pkg/guard"
)

var ErrCreateOrderCommandIsNotConstructed = errors.New(
	"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
)

// CreateOrderCommand represents a buyer's request to open a new order.
// Items arrive already resolved (name, quantity, unit price in cents).
//
// Example:
//
//	orderID := kernel.NewUUID()
//	cmd, err := NewCreateOrderCommand(orderID, buyerID, "Corner Shop", items, "12 High Street", 30*time.Minute)
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//
//	handler := NewCreateOrderCommandHandler(uowFactory, clk)
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("failed to create order: %w", err)
//	}
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID         kernel.UUID
	buyerID         kernel.UUID
	storeName       string
	items           []order.Item
	deliveryAddress string
	ttl             time.Duration

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand validates identifiers and the TTL sign. The remaining
// rules (blank fields, TTL bounds) are enforced by order.NewOrder.
func NewCreateOrderCommand(
	orderID kernel.UUID,
	buyerID kernel.UUID,
	storeName string,
	items []order.Item,
	deliveryAddress string,
	ttl time.Duration,
) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		storeName:       storeName,
		items:           items,
		deliveryAddress: deliveryAddress,
		guard:           guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setBuyerID(buyerID),
		cmd.setTTL(ttl),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c CreateOrderCommand) BuyerID() kernel.UUID {
	return c.buyerID
}

func (c CreateOrderCommand) StoreName() string {
	return c.storeName
}

func (c CreateOrderCommand) Items() []order.Item {
	return c.items
}

func (c CreateOrderCommand) DeliveryAddress() string {
	return c.deliveryAddress
}

// TTL returns the requested lifetime; zero selects order.DefaultTTL.
func (c CreateOrderCommand) TTL() time.Duration {
	return c.ttl
}

func (c *CreateOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *CreateOrderCommand) setBuyerID(buyerID kernel.UUID) error {
	if err := buyerID.Validate(); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("buyer id", err)
	}
	c.buyerID = buyerID
	return nil
}

func (c *CreateOrderCommand) setTTL(ttl time.Duration) error {
	if ttl < 0 {
		return errs.NewValueIsOutOfRangeError("ttl", ttl, order.MinTTL, order.MaxTTL)
	}
	c.ttl = ttl
	return nil
}
