package queries

import (
	"context"

	"grabbit/internal/core/ports"
	"grabbit/internal/pkg/clock"
)

// GetBuyerOrdersQueryHandler returns a buyer's order history, newest first.
type GetBuyerOrdersQueryHandler struct {
	reader ports.OrderReader
	clock  clock.Clock
}

func NewGetBuyerOrdersQueryHandler(reader ports.OrderReader, clk clock.Clock) GetBuyerOrdersQueryHandler {
	return GetBuyerOrdersQueryHandler{reader: reader, clock: clk}
}

func (h GetBuyerOrdersQueryHandler) Handle(ctx context.Context, query GetBuyerOrdersQuery) ([]OrderResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	orders, err := h.reader.ListByBuyer(ctx, query.BuyerID())
	if err != nil {
		return nil, err
	}

	now := h.clock.Now()
	result := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		result = append(result, toOrderResponse(o, now))
	}

	return result, nil
}
