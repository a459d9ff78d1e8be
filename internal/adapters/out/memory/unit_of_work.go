package memory

import (
	"context"
	"errors"
	"time"

	"grabbit/internal/core/domain/model/kernel"
	"grabbit/internal/core/domain/model/order"
	"grabbit/internal/core/ports"
)

// ErrNoTransaction is returned by Commit and Rollback outside of Begin.
var ErrNoTransaction = errors.New("memory: no active transaction")

// UnitOfWorkFactory creates units of work over one Store.
type UnitOfWorkFactory struct {
	store *Store
}

func NewUnitOfWorkFactory(store *Store) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{store: store}
}

func (f *UnitOfWorkFactory) Create() ports.UnitOfWork {
	return newUnitOfWork(f.store)
}

// UnitOfWork stages writes and applies them at Commit. Locks taken through
// its repositories are held until Commit or Rollback.
type UnitOfWork struct {
	store  *Store
	active bool
	held   map[string]struct{}

	orders         map[kernel.UUID]orderRecord
	newOrders      map[kernel.UUID]struct{}
	assignments    map[kernel.UUID]assignmentRecord // keyed by order id
	newAssignments map[kernel.UUID]struct{}
	published      map[kernel.UUID]time.Time

	tracked []*order.Order
}

func newUnitOfWork(store *Store) *UnitOfWork {
	uow := &UnitOfWork{store: store}
	uow.reset()
	return uow
}

func (uow *UnitOfWork) reset() {
	uow.held = make(map[string]struct{})
	uow.orders = make(map[kernel.UUID]orderRecord)
	uow.newOrders = make(map[kernel.UUID]struct{})
	uow.assignments = make(map[kernel.UUID]assignmentRecord)
	uow.newAssignments = make(map[kernel.UUID]struct{})
	uow.published = make(map[kernel.UUID]time.Time)
	uow.tracked = nil
}

// Begin is idempotent.
func (uow *UnitOfWork) Begin(ctx context.Context) error {
	if uow.active {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	uow.active = true
	return nil
}

// Commit validates uniqueness against committed state and applies all staged
// writes under one store lock. Pending events of tracked orders become outbox
// records in the same step.
func (uow *UnitOfWork) Commit(_ context.Context) error {
	if !uow.active {
		return ErrNoTransaction
	}
	defer uow.finish()

	outbox, err := uow.collectOutbox()
	if err != nil {
		return err
	}

	s := uow.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for id := range uow.newOrders {
		if _, exists := s.orders[id]; exists {
			return errOrderExists(id)
		}
	}
	for orderID := range uow.newAssignments {
		if _, exists := s.assignments[orderID]; exists {
			return errAlreadyAssigned(orderID)
		}
	}

	for id, r := range uow.orders {
		s.orders[id] = r
	}
	for orderID, r := range uow.assignments {
		s.assignments[orderID] = r
	}
	// Published messages leave the store; consumers deduplicate by event id.
	remaining := s.outbox[:0]
	for _, r := range s.outbox {
		if _, ok := uow.published[r.message.ID]; ok {
			continue
		}
		remaining = append(remaining, r)
	}
	clear(s.outbox[len(remaining):])
	s.outbox = append(remaining, outbox...)

	return nil
}

func (uow *UnitOfWork) Rollback(_ context.Context) error {
	if !uow.active {
		return ErrNoTransaction
	}
	uow.finish()
	return nil
}

func (uow *UnitOfWork) OrderRepository() ports.OrderRepository {
	return &orderRepository{uow: uow}
}

func (uow *UnitOfWork) AssignmentRepository() ports.AssignmentRepository {
	return &assignmentRepository{uow: uow}
}

func (uow *UnitOfWork) OutboxRepository() ports.OutboxRepository {
	return &outboxRepository{uow: uow}
}

func (uow *UnitOfWork) finish() {
	for key := range uow.held {
		uow.store.locks.release(key)
	}
	uow.active = false
	uow.reset()
}

func (uow *UnitOfWork) lock(ctx context.Context, key string) error {
	if _, ok := uow.held[key]; ok {
		return nil
	}
	if err := uow.store.locks.acquire(ctx, key, uow.store.timeout); err != nil {
		return err
	}
	uow.held[key] = struct{}{}
	return nil
}

func (uow *UnitOfWork) tryLock(key string) bool {
	if _, ok := uow.held[key]; ok {
		return true
	}
	if !uow.store.locks.tryAcquire(key) {
		return false
	}
	uow.held[key] = struct{}{}
	return true
}

func (uow *UnitOfWork) track(o *order.Order) {
	for _, t := range uow.tracked {
		if t == o {
			return
		}
	}
	uow.tracked = append(uow.tracked, o)
}

func (uow *UnitOfWork) collectOutbox() ([]*outboxRecord, error) {
	records := make([]*outboxRecord, 0)
	for _, o := range uow.tracked {
		for _, e := range o.PullEvents() {
			m, err := ports.NewOutboxMessage(e)
			if err != nil {
				return nil, err
			}
			records = append(records, &outboxRecord{message: m})
		}
	}
	return records, nil
}
