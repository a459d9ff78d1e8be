package commands

import (
	"context"
	"errors"

	"grabbit/internal/core/domain/model/order"
	"grabbit/internal/pkg/clock"
)

// CancelOrderCommandHandler cancels an open order. An order that is open but
// already past its expiry is moved to Expired instead and ErrOrderExpired is
// returned.
type CancelOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	clock      clock.Clock
}

func NewCancelOrderCommandHandler(uowFactory OrderUoWFactory, clk clock.Clock) CancelOrderCommandHandler {
	return CancelOrderCommandHandler{
		uowFactory: uowFactory,
		clock:      clk,
	}
}

func (h CancelOrderCommandHandler) Handle(ctx context.Context, cmd CancelOrderCommand) error {
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

	o, err := orderRepo.GetForUpdate(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	now := h.clock.Now()
	if err = o.Cancel(cmd.RequesterID(), now); err != nil {
		if !errors.Is(err, order.ErrOrderExpired) || !o.IsOverdue(now) {
			return err
		}
		if expireErr := o.Expire(now); expireErr != nil {
			return expireErr
		}
		if updateErr := orderRepo.Update(ctx, o); updateErr != nil {
			return updateErr
		}
		if commitErr := uow.Commit(ctx); commitErr != nil {
			return commitErr
		}
		return err
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
