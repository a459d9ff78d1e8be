package memory

import (
	"time"

	"grabbit/internal/core/domain/model/assignment"
	"grabbit/internal/core/domain/model/kernel"
	"grabbit/internal/core/domain/model/order"
	"grabbit/internal/core/ports"
)

// Records are value snapshots so that callers never share aggregate pointers
// with the store.

type orderRecord struct {
	id              kernel.UUID
	buyerID         kernel.UUID
	storeName       string
	items           []order.Item
	deliveryAddress string
	status          order.Status
	carrierID       *kernel.UUID
	createdAt       time.Time
	updatedAt       time.Time
	expiresAt       time.Time
}

func snapshotOrder(o *order.Order) orderRecord {
	var carrierID *kernel.UUID
	if c := o.Carrier(); c != nil {
		id := *c
		carrierID = &id
	}
	return orderRecord{
		id:              o.ID(),
		buyerID:         o.BuyerID(),
		storeName:       o.StoreName(),
		items:           o.Items(),
		deliveryAddress: o.DeliveryAddress(),
		status:          o.Status(),
		carrierID:       carrierID,
		createdAt:       o.CreatedAt(),
		updatedAt:       o.UpdatedAt(),
		expiresAt:       o.ExpiresAt(),
	}
}

func (r orderRecord) restore() (*order.Order, error) {
	return order.RestoreOrder(
		r.id,
		r.buyerID,
		r.storeName,
		r.items,
		r.deliveryAddress,
		r.status,
		r.carrierID,
		r.createdAt,
		r.updatedAt,
		r.expiresAt,
	)
}

func (r orderRecord) isAvailable(now time.Time) bool {
	return r.status == order.Open && now.Before(r.expiresAt)
}

func (r orderRecord) isOverdue(now time.Time) bool {
	return r.status == order.Open && !now.Before(r.expiresAt)
}

type assignmentRecord struct {
	id          kernel.UUID
	orderID     kernel.UUID
	carrierID   kernel.UUID
	status      order.Status
	acceptedAt  time.Time
	readyAt     *time.Time
	completedAt *time.Time
}

func snapshotAssignment(a *assignment.Assignment) assignmentRecord {
	return assignmentRecord{
		id:          a.ID(),
		orderID:     a.OrderID(),
		carrierID:   a.CarrierID(),
		status:      a.Status(),
		acceptedAt:  a.AcceptedAt(),
		readyAt:     copyTime(a.ReadyAt()),
		completedAt: copyTime(a.CompletedAt()),
	}
}

func (r assignmentRecord) restore() (*assignment.Assignment, error) {
	return assignment.RestoreAssignment(
		r.id,
		r.orderID,
		r.carrierID,
		r.status,
		r.acceptedAt,
		copyTime(r.readyAt),
		copyTime(r.completedAt),
	)
}

type outboxRecord struct {
	message ports.OutboxMessage
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
