package commands

import (
	"context"

	"grabbit/internal/core/domain/model/order"
	"grabbit/internal/pkg/clock"
)

// CreateOrderCommandHandler opens a new order that expires after the requested TTL.
//
// Example:
//
//	handler := NewCreateOrderCommandHandler(uowFactory, clock.RealClock{})
//	cmd, _ := NewCreateOrderCommand(kernel.NewUUID(), buyerID, "Corner Shop", items, "12 High Street", 0)
//
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("order creation failed: %w", err)
//	}
type CreateOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	clock      clock.Clock
}

func NewCreateOrderCommandHandler(uowFactory OrderUoWFactory, clk clock.Clock) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
		clock:      clk,
	}
}

// Handle validates the order and persists it in Open status. The created event
// is written to the outbox in the same transaction.
func (h CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	o, err := order.NewOrder(
		cmd.OrderID(),
		cmd.BuyerID(),
		cmd.StoreName(),
		cmd.Items(),
		cmd.DeliveryAddress(),
		h.clock.Now(),
		cmd.TTL(),
	)
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OrderRepository().Add(ctx, o); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
