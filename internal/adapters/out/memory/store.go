// Package memory provides an in-process implementation of the order store.
//
// Writes made through a UnitOfWork are staged and applied atomically at
// Commit. GetForUpdate takes a per-order lock that is held until the unit of
// work ends, which gives the accept path the same compare-and-set semantics as
// SELECT ... FOR UPDATE in Postgres. Lock waits are bounded by the store
// timeout and fail with errs.ErrStorageUnavailable.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"grabbit/internal/core/domain/model/assignment"
	"grabbit/internal/core/domain/model/kernel"
	"grabbit/internal/core/domain/model/order"
	"grabbit/internal/core/ports"
	"grabbit/internal/pkg/errs"
)

// DefaultTimeout bounds lock waits when NewStore is given a non-positive timeout.
const DefaultTimeout = 2 * time.Second

var _ ports.OrderReader = (*Store)(nil)

// Store holds committed state. It is safe for concurrent use.
type Store struct {
	mu          sync.RWMutex
	orders      map[kernel.UUID]orderRecord
	assignments map[kernel.UUID]assignmentRecord // keyed by order id
	outbox      []*outboxRecord

	locks   *keyedLocks
	timeout time.Duration
}

func NewStore(timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Store{
		orders:      make(map[kernel.UUID]orderRecord),
		assignments: make(map[kernel.UUID]assignmentRecord),
		locks:       newKeyedLocks(),
		timeout:     timeout,
	}
}

// ListAvailable filters and sorts under one read lock, so the listing is a
// consistent snapshot.
func (s *Store) ListAvailable(ctx context.Context, now time.Time, limit int) ([]*order.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, errs.NewStorageUnavailableErrorWithCause("list available orders", err)
	}

	s.mu.RLock()
	records := make([]orderRecord, 0)
	for _, r := range s.orders {
		if r.isAvailable(now) {
			records = append(records, r)
		}
	}
	s.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		return records[i].expiresAt.Before(records[j].expiresAt)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	return restoreOrders(records)
}

func (s *Store) GetOrder(ctx context.Context, id kernel.UUID) (*order.Order, *assignment.Assignment, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, errs.NewStorageUnavailableErrorWithCause("get order", err)
	}

	s.mu.RLock()
	or, ok := s.orders[id]
	ar, assigned := s.assignments[id]
	s.mu.RUnlock()

	if !ok {
		return nil, nil, errs.NewObjectNotFoundError("order", id)
	}

	o, err := or.restore()
	if err != nil {
		return nil, nil, err
	}
	if !assigned {
		return o, nil, nil
	}

	a, err := ar.restore()
	if err != nil {
		return nil, nil, err
	}
	return o, a, nil
}

func (s *Store) ListByBuyer(ctx context.Context, buyerID kernel.UUID) ([]*order.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, errs.NewStorageUnavailableErrorWithCause("list buyer orders", err)
	}

	s.mu.RLock()
	records := make([]orderRecord, 0)
	for _, r := range s.orders {
		if r.buyerID.IsEqual(buyerID) {
			records = append(records, r)
		}
	}
	s.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		return records[i].createdAt.After(records[j].createdAt)
	})

	return restoreOrders(records)
}

func (s *Store) ListByCarrier(ctx context.Context, carrierID kernel.UUID) ([]ports.CarrierAssignment, error) {
	if err := ctx.Err(); err != nil {
		return nil, errs.NewStorageUnavailableErrorWithCause("list carrier assignments", err)
	}

	type pair struct {
		a assignmentRecord
		o orderRecord
	}

	s.mu.RLock()
	pairs := make([]pair, 0)
	for orderID, ar := range s.assignments {
		if ar.carrierID.IsEqual(carrierID) {
			pairs = append(pairs, pair{a: ar, o: s.orders[orderID]})
		}
	}
	s.mu.RUnlock()

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].a.acceptedAt.After(pairs[j].a.acceptedAt)
	})

	result := make([]ports.CarrierAssignment, 0, len(pairs))
	for _, p := range pairs {
		a, err := p.a.restore()
		if err != nil {
			return nil, err
		}
		o, err := p.o.restore()
		if err != nil {
			return nil, err
		}
		result = append(result, ports.CarrierAssignment{Assignment: a, Order: o})
	}
	return result, nil
}

func restoreOrders(records []orderRecord) ([]*order.Order, error) {
	orders := make([]*order.Order, 0, len(records))
	for _, r := range records {
		o, err := r.restore()
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func orderLockKey(id kernel.UUID) string {
	return "order:" + id.String()
}

func outboxLockKey(id kernel.UUID) string {
	return "outbox:" + id.String()
}
