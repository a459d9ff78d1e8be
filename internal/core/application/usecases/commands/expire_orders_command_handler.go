package commands

import (
	"context"

	"grabbit/internal/pkg/clock"
)

// ExpireOrdersCommandHandler is the eager half of expiry: it moves overdue Open
// orders to Expired. Rows locked by an in-flight accept or cancel are skipped
// and picked up by a later sweep, or corrected by that operation itself.
type ExpireOrdersCommandHandler struct {
	uowFactory OrderUoWFactory
	clock      clock.Clock
}

func NewExpireOrdersCommandHandler(uowFactory OrderUoWFactory, clk clock.Clock) ExpireOrdersCommandHandler {
	return ExpireOrdersCommandHandler{
		uowFactory: uowFactory,
		clock:      clk,
	}
}

// Handle returns the number of orders expired in this sweep.
func (h ExpireOrdersCommandHandler) Handle(ctx context.Context, cmd ExpireOrdersCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	now := h.clock.Now()

	overdue, err := orderRepo.GetOverdue(ctx, now, cmd.BatchSize())
	if err != nil {
		return 0, err
	}
	if len(overdue) == 0 {
		return 0, nil
	}

	for _, o := range overdue {
		if err = o.Expire(now); err != nil {
			return 0, err
		}
		if err = orderRepo.Update(ctx, o); err != nil {
			return 0, err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return 0, err
	}

	return len(overdue), nil
}
