package commands

import (
	"context"
	"errors"
	"time"

	"grabbit/internal/core/domain/model/kernel"
	"grabbit/internal/core/domain/model/order"
	"grabbit/internal/core/domain/services"
	"grabbit/internal/pkg/clock"
	"grabbit/internal/pkg/errs"
)

// AcceptOrderResponse confirms a successful assignment. Outcome is also set
// when Handle returns an error so callers can classify the attempt.
type AcceptOrderResponse struct {
	Outcome      services.Outcome
	AssignmentID kernel.UUID
	OrderID      kernel.UUID
	CarrierID    kernel.UUID
	AcceptedAt   time.Time
}

// AcceptOrderCommandHandler is the atomic accept path. The order row is locked
// for the whole transaction, so of N concurrent carriers exactly one sees an
// Open order; the others wait for the lock and then observe Assigned.
//
// Example:
//
//	handler := NewAcceptOrderCommandHandler(uowFactory, clock.RealClock{})
//	cmd, _ := NewAcceptOrderCommand(orderID, carrierID)
//
//	resp, err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, order.ErrOrderAlreadyAssigned):
//	    // another carrier won
//	case errors.Is(err, order.ErrOrderExpired):
//	    // too late, the order is now expired
//	case err != nil:
//	    return err
//	}
type AcceptOrderCommandHandler struct {
	uowFactory UoWFactory
	arbiter    services.AssignmentArbiter
	clock      clock.Clock
}

func NewAcceptOrderCommandHandler(uowFactory UoWFactory, clk clock.Clock) AcceptOrderCommandHandler {
	return AcceptOrderCommandHandler{
		uowFactory: uowFactory,
		arbiter:    services.NewAssignmentArbiter(),
		clock:      clk,
	}
}

// Handle locks the order, runs the arbiter and persists the result.
//
// On OutcomeExpired the expired status is committed before ErrOrderExpired is
// returned, so the next read observes the order as expired.
func (h AcceptOrderCommandHandler) Handle(ctx context.Context, cmd AcceptOrderCommand) (AcceptOrderResponse, error) {
	if err := cmd.Validate(); err != nil {
		return AcceptOrderResponse{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return AcceptOrderResponse{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()

	o, err := orderRepo.GetForUpdate(ctx, cmd.OrderID())
	if err != nil && !errors.Is(err, errs.ErrObjectNotFound) {
		return AcceptOrderResponse{}, err
	}

	now := h.clock.Now()
	a, outcome, err := h.arbiter.TryAssign(cmd.OrderID(), o, cmd.CarrierID(), now)
	resp := AcceptOrderResponse{Outcome: outcome}

	switch outcome {
	case services.OutcomeSuccess:
	case services.OutcomeExpired:
		if o.HasPendingEvents() {
			if updateErr := orderRepo.Update(ctx, o); updateErr != nil {
				return resp, updateErr
			}
			if commitErr := uow.Commit(ctx); commitErr != nil {
				return resp, commitErr
			}
		}
		return resp, err
	default:
		return resp, err
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return resp, err
	}

	if err = uow.AssignmentRepository().Add(ctx, a); err != nil {
		if errors.Is(err, order.ErrOrderAlreadyAssigned) {
			resp.Outcome = services.OutcomeAlreadyAssigned
		}
		return resp, err
	}

	if err = uow.Commit(ctx); err != nil {
		return resp, err
	}

	resp.AssignmentID = a.ID()
	resp.OrderID = a.OrderID()
	resp.CarrierID = a.CarrierID()
	resp.AcceptedAt = a.AcceptedAt()
	return resp, nil
}
