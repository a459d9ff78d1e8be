package ports

import (
	"context"

	"grabbit/internal/core/domain/model/kernel"
)

// IdempotencyStore remembers which order a buyer's idempotency key produced.
type IdempotencyStore interface {
	// Reserve binds key to orderID. When the key is already bound it returns
	// the existing order id and reserved == false.
	Reserve(ctx context.Context, buyerID kernel.UUID, key string, orderID kernel.UUID) (existing kernel.UUID, reserved bool, err error)

	// Release drops a reservation made for orderID, so the key can be retried
	// after a failed creation.
	Release(ctx context.Context, buyerID kernel.UUID, key string, orderID kernel.UUID) error
}
