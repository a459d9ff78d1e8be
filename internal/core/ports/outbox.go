package ports

import (
	"context"
	"time"

	"grabbit/internal/core/domain/model/kernel"
	"grabbit/internal/core/domain/model/order"
)

// OutboxMessage is a domain event persisted alongside the state change that
// produced it and awaiting publication.
type OutboxMessage struct {
	ID          kernel.UUID
	EventType   string
	AggregateID kernel.UUID
	Payload     []byte
	OccurredAt  time.Time
}

// NewOutboxMessage converts a recorded order event into its outbox form.
func NewOutboxMessage(e order.Event) (OutboxMessage, error) {
	payload, err := e.Payload()
	if err != nil {
		return OutboxMessage{}, err
	}
	return OutboxMessage{
		ID:          e.ID,
		EventType:   e.Type,
		AggregateID: e.OrderID,
		Payload:     payload,
		OccurredAt:  e.OccurredAt,
	}, nil
}

// OutboxRepository reads and acknowledges pending outbox messages.
type OutboxRepository interface {
	// GetPending locks and returns up to limit unpublished messages, oldest first.
	// Messages locked by another unit of work are skipped.
	GetPending(ctx context.Context, limit int) ([]OutboxMessage, error)

	// MarkPublished records the publication time of the given messages.
	MarkPublished(ctx context.Context, ids []kernel.UUID, publishedAt time.Time) error
}

// EventPublisher delivers outbox messages to the broker. Delivery is
// at-least-once: a message may be published again if acknowledging it fails.
type EventPublisher interface {
	Publish(ctx context.Context, messages ...OutboxMessage) error
}
