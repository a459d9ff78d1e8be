// Package ports defines the contracts between the order engine and its
// infrastructure: transactional repositories, the read side and the event
// publisher.
package ports

import (
	"context"
	"time"

	"grabbit/internal/core/domain/model/kernel"
	"grabbit/internal/core/domain/model/order"
)

// OrderRepository defines the transactional persistence contract for order aggregates.
// All methods run inside the unit of work that produced the repository.
type OrderRepository interface {
	// Add persists a new order aggregate.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order aggregate.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order without locking it.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetForUpdate retrieves an order and holds its row lock until the unit of
	// work commits or rolls back. Concurrent callers for the same id wait, up to
	// the store timeout, and then fail with errs.ErrStorageUnavailable.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetOverdue locks and returns up to limit Open orders whose expiry time is at
	// or before now. Orders locked by another unit of work are skipped.
	GetOverdue(ctx context.Context, now time.Time, limit int) ([]*order.Order, error)
}
