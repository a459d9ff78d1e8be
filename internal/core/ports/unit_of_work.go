package ports

import (
	"context"
)

// UnitOfWorkFactory creates new UnitOfWork instances for each request/command.
// This ensures proper isolation between concurrent operations.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork represents a business transaction boundary.
//
// Repositories returned by a unit of work share its transaction. Aggregates
// passed to Add or Update are tracked and their pending events are written to
// the outbox as part of Commit.
type UnitOfWork interface {
	// Begin starts a new transaction.
	Begin(ctx context.Context) error

	// Commit commits the current transaction, outbox writes included.
	Commit(ctx context.Context) error

	// Rollback discards the current transaction and releases its locks.
	// Returns an error if no transaction is active.
	Rollback(ctx context.Context) error

	OrderRepository() OrderRepository

	AssignmentRepository() AssignmentRepository

	OutboxRepository() OutboxRepository
}
