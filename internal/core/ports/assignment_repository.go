package ports

import (
	"context"

	"grabbit/internal/core/domain/model/assignment"
	"grabbit/internal/core/domain/model/kernel"
)

// AssignmentRepository defines the transactional persistence contract for assignments.
type AssignmentRepository interface {
	// Add persists a new assignment. A second assignment for the same order
	// fails with order.ErrOrderAlreadyAssigned.
	Add(ctx context.Context, a *assignment.Assignment) error

	// Update persists the mirrored status and timestamps.
	Update(ctx context.Context, a *assignment.Assignment) error

	// GetByOrder retrieves the assignment of an order.
	// Returns errs.ErrObjectNotFound when the order was never assigned.
	GetByOrder(ctx context.Context, orderID kernel.UUID) (*assignment.Assignment, error)
}
