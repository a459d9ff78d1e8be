package commands

import (
	"context"

	"grabbit/internal/core/domain/model/order"
	"grabbit/internal/pkg/clock"
)

// AdvanceStatusCommandHandler applies a carrier-driven transition and mirrors
// it onto the assignment. Reaching ReadyForPickup stamps the assignment's
// ready timestamp.
type AdvanceStatusCommandHandler struct {
	uowFactory UoWFactory
	clock      clock.Clock
}

func NewAdvanceStatusCommandHandler(uowFactory UoWFactory, clk clock.Clock) AdvanceStatusCommandHandler {
	return AdvanceStatusCommandHandler{
		uowFactory: uowFactory,
		clock:      clk,
	}
}

// Handle returns the new status. A carrier other than the bound one gets
// errs.ErrForbidden; a pair outside the forward table gets order.ErrInvalidTransition.
func (h AdvanceStatusCommandHandler) Handle(ctx context.Context, cmd AdvanceStatusCommand) (order.Status, error) {
	if err := cmd.Validate(); err != nil {
		return order.Unknown, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return order.Unknown, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	assignmentRepo := uow.AssignmentRepository()

	o, err := orderRepo.GetForUpdate(ctx, cmd.OrderID())
	if err != nil {
		return order.Unknown, err
	}

	now := h.clock.Now()
	if err = o.Advance(cmd.CarrierID(), cmd.Target(), now); err != nil {
		return order.Unknown, err
	}

	a, err := assignmentRepo.GetByOrder(ctx, o.ID())
	if err != nil {
		return order.Unknown, err
	}

	if err = a.Mirror(o, now); err != nil {
		return order.Unknown, err
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return order.Unknown, err
	}

	if err = assignmentRepo.Update(ctx, a); err != nil {
		return order.Unknown, err
	}

	if err = uow.Commit(ctx); err != nil {
		return order.Unknown, err
	}

	return o.Status(), nil
}
