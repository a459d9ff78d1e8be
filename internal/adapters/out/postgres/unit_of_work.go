// Package postgres provides GORM-based implementation of the Unit of Work pattern.
// The Unit of Work pattern maintains a list of objects affected by a business
// transaction and coordinates writing out changes and resolving concurrency problems.
//
// Key Features:
//   - Transaction management across the order, assignment and outbox repositories
//   - Aggregate tracking; pending domain events are written to the outbox at commit
//   - Bounded lock waits through SET LOCAL lock_timeout and statement_timeout
//
// Usage Patterns:
//
//	factory := NewGormUnitOfWorkFactory(db, 2*time.Second)
//	uow := factory.Create()
//
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer func() {
//	    _ = uow.Rollback(ctx)
//	}()
//
//	o, err := uow.OrderRepository().GetForUpdate(ctx, orderID)
//	if err != nil {
//	    return err
//	}
//	// ... apply the transition
//	if err := uow.OrderRepository().Update(ctx, o); err != nil {
//	    return err
//	}
//
//	return uow.Commit(ctx)
//
// Concurrency Considerations:
//   - Each UnitOfWork instance provides isolated transactions
//   - Multiple goroutines should use separate UnitOfWork instances
//   - GetForUpdate serializes writers of the same order on its row lock
package postgres

import (
	"context"
	"fmt"
	"time"

	"grabbit/internal/adapters/out/postgres/assignmentrepo"
	"grabbit/internal/adapters/out/postgres/orderrepo"
	"grabbit/internal/adapters/out/postgres/outboxrepo"
	"grabbit/internal/adapters/out/postgres/pgerrs"
	"grabbit/internal/core/domain/model/kernel"
	"grabbit/internal/core/domain/model/order"
	"grabbit/internal/core/ports"

	"gorm.io/gorm"
)

// DefaultTimeout bounds lock waits and statements when the factory is given a
// non-positive timeout.
const DefaultTimeout = 2 * time.Second

// eventSource is an aggregate that buffers domain events.
type eventSource interface {
	PullEvents() []order.Event
}

// trackedAggregate represents an aggregate modified during the unit of work.
type trackedAggregate struct {
	ID        kernel.UUID
	Aggregate any
}

// GormUnitOfWorkFactory creates UnitOfWork instances using GORM database connections.
// Factory ensures each business operation gets a fresh unit of work instance
// with proper isolation from other concurrent operations.
type GormUnitOfWorkFactory struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewGormUnitOfWorkFactory creates a factory for GORM-based unit of work instances.
// timeout is applied to every transaction as lock_timeout and statement_timeout.
//
// Example:
//
//	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
//	if err != nil {
//	    log.Fatal("failed to connect database")
//	}
//	factory := NewGormUnitOfWorkFactory(db, cfg.StoreTimeout)
func NewGormUnitOfWorkFactory(db *gorm.DB, timeout time.Duration) *GormUnitOfWorkFactory {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &GormUnitOfWorkFactory{db: db, timeout: timeout}
}

// Create produces a new UnitOfWork instance ready for business transaction management.
func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{
		db:                f.db,
		timeout:           f.timeout,
		trackedAggregates: make([]trackedAggregate, 0),
	}
}

// GormUnitOfWork coordinates database transactions and tracks aggregate changes
// for business operations. Implements the Unit of Work pattern using GORM's
// transaction capabilities to ensure data consistency and proper rollback handling.
//
// Pending events of every tracked aggregate are inserted into the outbox table
// right before the transaction commits, so a state change and its event are
// either both visible or both absent.
type GormUnitOfWork struct {
	db                *gorm.DB
	tx                *gorm.DB
	timeout           time.Duration
	trackedAggregates []trackedAggregate
}

// Begin initiates a new database transaction for the unit of work.
// Multiple calls to Begin on the same instance are safe and will not create nested transactions.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	tx := uow.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return pgerrs.Classify("begin transaction", tx.Error)
	}

	ms := fmt.Sprintf("%dms", uow.timeout.Milliseconds())
	err := tx.Exec("SELECT set_config('lock_timeout', ?, true), set_config('statement_timeout', ?, true)", ms, ms).Error
	if err != nil {
		tx.Rollback()
		return pgerrs.Classify("configure transaction timeouts", err)
	}

	uow.tx = tx
	uow.trackedAggregates = uow.trackedAggregates[:0]
	return nil
}

// Commit writes the outbox and finalizes all changes made within the current transaction.
// After commit, the transaction is closed and cannot be reused.
//
// Returns error if no active transaction exists or if the commit operation fails.
func (uow *GormUnitOfWork) Commit(ctx context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	if err := uow.writeOutbox(ctx); err != nil {
		uow.tx.Rollback()
		uow.tx = nil
		return err
	}

	err := uow.tx.Commit().Error
	uow.tx = nil
	return pgerrs.Classify("commit transaction", err)
}

// Rollback discards all changes made within the current transaction.
// Database returns to its state before the transaction began.
//
// Returns error if no active transaction exists or if the rollback operation fails.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	uow.trackedAggregates = uow.trackedAggregates[:0]
	return err
}

// OrderRepository provides access to order persistence operations within the unit of work.
// Repository operations will execute within the current transaction if one is active,
// otherwise they use the main database connection for immediate execution.
//
// The returned repository tracks all order aggregates that are added or updated.
func (uow *GormUnitOfWork) OrderRepository() ports.OrderRepository {
	return orderrepo.NewGormOrderRepository(uow.conn(), uow)
}

// AssignmentRepository provides access to assignment persistence within the unit of work.
func (uow *GormUnitOfWork) AssignmentRepository() ports.AssignmentRepository {
	return assignmentrepo.NewGormAssignmentRepository(uow.conn())
}

// OutboxRepository provides access to the outbox within the unit of work.
func (uow *GormUnitOfWork) OutboxRepository() ports.OutboxRepository {
	return outboxrepo.NewGormOutboxRepository(uow.conn())
}

// TrackAggregate registers a domain aggregate as modified within this unit of work.
// This method is called by repository implementations when aggregates are
// added or updated. Tracking the same id twice keeps the latest aggregate.
func (uow *GormUnitOfWork) TrackAggregate(id kernel.UUID, aggregate any) {
	for i, tracked := range uow.trackedAggregates {
		if tracked.ID.IsEqual(id) {
			uow.trackedAggregates[i].Aggregate = aggregate
			return
		}
	}
	uow.trackedAggregates = append(uow.trackedAggregates, trackedAggregate{
		ID:        id,
		Aggregate: aggregate,
	})
}

func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}

func (uow *GormUnitOfWork) writeOutbox(ctx context.Context) error {
	messages := make([]ports.OutboxMessage, 0)
	for _, tracked := range uow.trackedAggregates {
		source, ok := tracked.Aggregate.(eventSource)
		if !ok {
			continue
		}
		for _, e := range source.PullEvents() {
			m, err := ports.NewOutboxMessage(e)
			if err != nil {
				return err
			}
			messages = append(messages, m)
		}
	}
	uow.trackedAggregates = uow.trackedAggregates[:0]

	return outboxrepo.NewGormOutboxRepository(uow.tx).Add(ctx, messages...)
}
