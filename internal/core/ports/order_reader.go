package ports

import (
	"context"
	"time"

	"grabbit/internal/core/domain/model/assignment"
	"grabbit/internal/core/domain/model/kernel"
	"grabbit/internal/core/domain/model/order"
)

// CarrierAssignment pairs an assignment with the order it binds.
type CarrierAssignment struct {
	Assignment *assignment.Assignment
	Order      *order.Order
}

// OrderReader is the non-transactional read side used by queries.
type OrderReader interface {
	// ListAvailable returns Open orders with an expiry time after now, ordered by
	// expiry time. The status and expiry filter are evaluated in one statement.
	ListAvailable(ctx context.Context, now time.Time, limit int) ([]*order.Order, error)

	// GetOrder returns an order together with its assignment, which is nil for
	// orders that were never assigned.
	GetOrder(ctx context.Context, id kernel.UUID) (*order.Order, *assignment.Assignment, error)

	// ListByBuyer returns the buyer's orders, newest first.
	ListByBuyer(ctx context.Context, buyerID kernel.UUID) ([]*order.Order, error)

	// ListByCarrier returns the carrier's assignments, most recently accepted first.
	ListByCarrier(ctx context.Context, carrierID kernel.UUID) ([]CarrierAssignment, error)
}
