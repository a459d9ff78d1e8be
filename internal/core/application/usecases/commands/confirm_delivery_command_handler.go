package commands

import (
	"context"

	"grabbit/internal/pkg/clock"
)

// ConfirmDeliveryCommandHandler completes a ready order on behalf of its buyer
// and stamps the assignment's completion time.
type ConfirmDeliveryCommandHandler struct {
	uowFactory UoWFactory
	clock      clock.Clock
}

func NewConfirmDeliveryCommandHandler(uowFactory UoWFactory, clk clock.Clock) ConfirmDeliveryCommandHandler {
	return ConfirmDeliveryCommandHandler{
		uowFactory: uowFactory,
		clock:      clk,
	}
}

// Handle returns errs.ErrForbidden for anyone but the buyer and
// order.ErrInvalidState unless the order is ReadyForPickup.
func (h ConfirmDeliveryCommandHandler) Handle(ctx context.Context, cmd ConfirmDeliveryCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	assignmentRepo := uow.AssignmentRepository()

	o, err := orderRepo.GetForUpdate(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	now := h.clock.Now()
	if err = o.ConfirmDelivery(cmd.BuyerID(), now); err != nil {
		return err
	}

	a, err := assignmentRepo.GetByOrder(ctx, o.ID())
	if err != nil {
		return err
	}

	if err = a.Mirror(o, now); err != nil {
		return err
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return err
	}

	if err = assignmentRepo.Update(ctx, a); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
