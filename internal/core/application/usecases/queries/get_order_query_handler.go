package queries

import (
	"context"

	"grabbit/internal/core/ports"
	"grabbit/internal/pkg/clock"
	"grabbit/internal/pkg/errs"
)

// GetOrderQueryHandler returns a single order with its assignment.
type GetOrderQueryHandler struct {
	reader ports.OrderReader
	clock  clock.Clock
}

func NewGetOrderQueryHandler(reader ports.OrderReader, clk clock.Clock) GetOrderQueryHandler {
	return GetOrderQueryHandler{reader: reader, clock: clk}
}

// Handle returns errs.ErrObjectNotFound for unknown ids and errs.ErrForbidden
// when the requester is neither the buyer nor the bound carrier.
func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (OrderResponse, error) {
	if err := query.Validate(); err != nil {
		return OrderResponse{}, err
	}

	o, a, err := h.reader.GetOrder(ctx, query.OrderID())
	if err != nil {
		return OrderResponse{}, err
	}

	if !o.BuyerID().IsEqual(query.RequesterID()) && !o.IsBoundTo(query.RequesterID()) {
		return OrderResponse{}, errs.NewForbiddenError("requester", query.RequesterID())
	}

	resp := toOrderResponse(o, h.clock.Now())
	resp.Assignment = toAssignmentResponse(a)
	return resp, nil
}
