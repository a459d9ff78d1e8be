package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"grabbit/internal/core/domain/model/assignment"
	"grabbit/internal/core/domain/model/kernel"
	"grabbit/internal/core/domain/model/order"
	"grabbit/internal/core/ports"
	"grabbit/internal/pkg/errs"
)

var (
	_ ports.OrderRepository      = (*orderRepository)(nil)
	_ ports.AssignmentRepository = (*assignmentRepository)(nil)
	_ ports.OutboxRepository     = (*outboxRepository)(nil)
)

func errOrderExists(id kernel.UUID) error {
	return errs.NewValueIsInvalidError("order " + id.String() + " already exists")
}

func errAlreadyAssigned(orderID kernel.UUID) error {
	return fmt.Errorf("%w: order %s", order.ErrOrderAlreadyAssigned, orderID)
}

type orderRepository struct {
	uow *UnitOfWork
}

func (r *orderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	id := aggregate.ID()
	if _, ok := r.uow.orders[id]; ok {
		return errOrderExists(id)
	}
	if _, ok := r.committed(id); ok {
		return errOrderExists(id)
	}
	if err := r.uow.lock(ctx, orderLockKey(id)); err != nil {
		return err
	}

	r.uow.orders[id] = snapshotOrder(aggregate)
	r.uow.newOrders[id] = struct{}{}
	r.uow.track(aggregate)
	return nil
}

func (r *orderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	id := aggregate.ID()
	if _, staged := r.uow.orders[id]; !staged {
		if _, ok := r.committed(id); !ok {
			return errs.NewObjectNotFoundError("order", id)
		}
	}
	if err := r.uow.lock(ctx, orderLockKey(id)); err != nil {
		return err
	}

	r.uow.orders[id] = snapshotOrder(aggregate)
	r.uow.track(aggregate)
	return nil
}

func (r *orderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, errs.NewStorageUnavailableErrorWithCause("get order", err)
	}
	if rec, ok := r.uow.orders[id]; ok {
		return rec.restore()
	}
	rec, ok := r.committed(id)
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id)
	}
	return rec.restore()
}

func (r *orderRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := r.uow.lock(ctx, orderLockKey(id)); err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

// GetOverdue skips orders whose lock is held elsewhere and re-reads each
// candidate after locking it, since the holder may have changed it.
func (r *orderRepository) GetOverdue(ctx context.Context, now time.Time, limit int) ([]*order.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, errs.NewStorageUnavailableErrorWithCause("get overdue orders", err)
	}

	s := r.uow.store
	s.mu.RLock()
	candidates := make([]orderRecord, 0)
	for _, rec := range s.orders {
		if rec.isOverdue(now) {
			candidates = append(candidates, rec)
		}
	}
	s.mu.RUnlock()

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].expiresAt.Before(candidates[j].expiresAt)
	})

	result := make([]*order.Order, 0)
	for _, c := range candidates {
		if limit > 0 && len(result) >= limit {
			break
		}
		if !r.uow.tryLock(orderLockKey(c.id)) {
			continue
		}
		rec, ok := r.committed(c.id)
		if !ok || !rec.isOverdue(now) {
			continue
		}
		o, err := rec.restore()
		if err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	return result, nil
}

func (r *orderRepository) committed(id kernel.UUID) (orderRecord, bool) {
	s := r.uow.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.orders[id]
	return rec, ok
}

type assignmentRepository struct {
	uow *UnitOfWork
}

func (r *assignmentRepository) Add(_ context.Context, a *assignment.Assignment) error {
	if err := a.Validate(); err != nil {
		return err
	}
	orderID := a.OrderID()
	if _, ok := r.uow.assignments[orderID]; ok {
		return errAlreadyAssigned(orderID)
	}
	if _, ok := r.committed(orderID); ok {
		return errAlreadyAssigned(orderID)
	}

	r.uow.assignments[orderID] = snapshotAssignment(a)
	r.uow.newAssignments[orderID] = struct{}{}
	return nil
}

func (r *assignmentRepository) Update(_ context.Context, a *assignment.Assignment) error {
	if err := a.Validate(); err != nil {
		return err
	}
	orderID := a.OrderID()
	if _, staged := r.uow.assignments[orderID]; !staged {
		if _, ok := r.committed(orderID); !ok {
			return errs.NewObjectNotFoundError("assignment", a.ID())
		}
	}

	r.uow.assignments[orderID] = snapshotAssignment(a)
	return nil
}

func (r *assignmentRepository) GetByOrder(ctx context.Context, orderID kernel.UUID) (*assignment.Assignment, error) {
	if err := ctx.Err(); err != nil {
		return nil, errs.NewStorageUnavailableErrorWithCause("get assignment", err)
	}
	if rec, ok := r.uow.assignments[orderID]; ok {
		return rec.restore()
	}
	rec, ok := r.committed(orderID)
	if !ok {
		return nil, errs.NewObjectNotFoundError("assignment of order", orderID)
	}
	return rec.restore()
}

func (r *assignmentRepository) committed(orderID kernel.UUID) (assignmentRecord, bool) {
	s := r.uow.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.assignments[orderID]
	return rec, ok
}

type outboxRepository struct {
	uow *UnitOfWork
}

func (r *outboxRepository) GetPending(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, errs.NewStorageUnavailableErrorWithCause("get pending outbox messages", err)
	}

	s := r.uow.store
	s.mu.RLock()
	pending := make([]ports.OutboxMessage, 0)
	for _, rec := range s.outbox {
		pending = append(pending, rec.message)
	}
	s.mu.RUnlock()

	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].OccurredAt.Before(pending[j].OccurredAt)
	})

	result := make([]ports.OutboxMessage, 0)
	for _, m := range pending {
		if limit > 0 && len(result) >= limit {
			break
		}
		if _, marked := r.uow.published[m.ID]; marked {
			continue
		}
		if !r.uow.tryLock(outboxLockKey(m.ID)) {
			continue
		}
		if r.isPublished(m.ID) {
			continue
		}
		result = append(result, m)
	}
	return result, nil
}

func (r *outboxRepository) isPublished(id kernel.UUID) bool {
	s := r.uow.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.outbox {
		if rec.message.ID.IsEqual(id) {
			return false
		}
	}
	// Records are only removed once published.
	return true
}

func (r *outboxRepository) MarkPublished(_ context.Context, ids []kernel.UUID, publishedAt time.Time) error {
	for _, id := range ids {
		r.uow.published[id] = publishedAt
	}
	return nil
}
