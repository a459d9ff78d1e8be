package order

import (
	"encoding/json"
	"time"

	"grabbit/internal/core/domain/model/kernel"
)

// Event types recorded by the Order aggregate.
const (
	EventCreated        = "order.created"
	EventAssigned       = "order.assigned"
	EventStatusAdvanced = "order.status_advanced"
	EventCompleted      = "order.completed"
	EventCancelled      = "order.cancelled"
	EventExpired        = "order.expired"
)

// Event is a fact about an order state change. Events are buffered on the
// aggregate and written to the outbox in the same transaction as the change.
type Event struct {
	ID         kernel.UUID
	Type       string
	OrderID    kernel.UUID
	BuyerID    kernel.UUID
	CarrierID  *kernel.UUID
	Status     Status
	OccurredAt time.Time
}

type eventPayload struct {
	EventID    string    `json:"event_id"`
	Type       string    `json:"type"`
	OrderID    string    `json:"order_id"`
	BuyerID    string    `json:"buyer_id"`
	CarrierID  *string   `json:"carrier_id,omitempty"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Payload returns the JSON document published to the broker.
func (e Event) Payload() ([]byte, error) {
	p := eventPayload{
		EventID:    e.ID.String(),
		Type:       e.Type,
		OrderID:    e.OrderID.String(),
		BuyerID:    e.BuyerID.String(),
		Status:     e.Status.String(),
		OccurredAt: e.OccurredAt.UTC(),
	}
	if e.CarrierID != nil {
		s := e.CarrierID.String()
		p.CarrierID = &s
	}
	return json.Marshal(p)
}
