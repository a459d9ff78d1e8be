package queries

import (
	"context"

	"grabbit/internal/core/ports"
	"grabbit/internal/pkg/clock"
)

// GetCarrierAssignmentsQueryHandler returns the carrier's orders, each with its
// assignment, most recently accepted first.
type GetCarrierAssignmentsQueryHandler struct {
	reader ports.OrderReader
	clock  clock.Clock
}

func NewGetCarrierAssignmentsQueryHandler(reader ports.OrderReader, clk clock.Clock) GetCarrierAssignmentsQueryHandler {
	return GetCarrierAssignmentsQueryHandler{reader: reader, clock: clk}
}

func (h GetCarrierAssignmentsQueryHandler) Handle(
	ctx context.Context,
	query GetCarrierAssignmentsQuery,
) ([]OrderResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	rows, err := h.reader.ListByCarrier(ctx, query.CarrierID())
	if err != nil {
		return nil, err
	}

	now := h.clock.Now()
	result := make([]OrderResponse, 0, len(rows))
	for _, row := range rows {
		resp := toOrderResponse(row.Order, now)
		resp.Assignment = toAssignmentResponse(row.Assignment)
		result = append(result, resp)
	}

	return result, nil
}
