package queries

import (
	"context"

	"grabbit/internal/core/ports"
	"grabbit/internal/pkg/clock"
)

// GetAvailableOrdersQueryHandler returns open, unexpired orders ordered by
// expiry time, soonest first.
//
// Example:
//
//	handler := NewGetAvailableOrdersQueryHandler(reader, clock.RealClock{})
//	query, _ := NewGetAvailableOrdersQuery(0)
//
//	orders, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return fmt.Errorf("failed to list available orders: %w", err)
//	}
type GetAvailableOrdersQueryHandler struct {
	reader ports.OrderReader
	clock  clock.Clock
}

func NewGetAvailableOrdersQueryHandler(reader ports.OrderReader, clk clock.Clock) GetAvailableOrdersQueryHandler {
	return GetAvailableOrdersQueryHandler{reader: reader, clock: clk}
}

func (h GetAvailableOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetAvailableOrdersQuery,
) ([]OrderResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	now := h.clock.Now()
	orders, err := h.reader.ListAvailable(ctx, now, query.Limit())
	if err != nil {
		return nil, err
	}

	result := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		if o.IsOverdue(now) {
			continue
		}
		result = append(result, toOrderResponse(o, now))
	}

	return result, nil
}
