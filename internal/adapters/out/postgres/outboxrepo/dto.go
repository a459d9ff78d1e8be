// Package outboxrepo persists domain events awaiting publication. Rows are
// written by the unit of work at commit and claimed by the relay with
// FOR UPDATE SKIP LOCKED.
package outboxrepo

import (
	"time"

	"grabbit/internal/core/domain/model/kernel"
	"grabbit/internal/core/ports"

	"github.com/google/uuid"
)

// OutboxDTO is one pending or published event. Pending rows have a NULL
// published_at. Sequence keeps insertion order among events with the same
// occurrence time.
type OutboxDTO struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Sequence    int64      `gorm:"autoIncrement;not null"`
	EventType   string     `gorm:"type:varchar(64);not null"`
	AggregateID uuid.UUID  `gorm:"type:uuid;not null;index"`
	Payload     []byte     `gorm:"type:jsonb;not null"`
	OccurredAt  time.Time  `gorm:"not null;index"`
	PublishedAt *time.Time `gorm:"index"`
}

// TableName specifies the database table name for outbox messages.
func (OutboxDTO) TableName() string {
	return "outbox"
}

func fromMessage(m ports.OutboxMessage) OutboxDTO {
	return OutboxDTO{
		ID:          m.ID.Bytes(),
		EventType:   m.EventType,
		AggregateID: m.AggregateID.Bytes(),
		Payload:     m.Payload,
		OccurredAt:  m.OccurredAt.UTC(),
	}
}

func toMessage(dto OutboxDTO) (ports.OutboxMessage, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return ports.OutboxMessage{}, err
	}

	aggregateID, err := kernel.UUIDFromBytes(dto.AggregateID[:])
	if err != nil {
		return ports.OutboxMessage{}, err
	}

	return ports.OutboxMessage{
		ID:          id,
		EventType:   dto.EventType,
		AggregateID: aggregateID,
		Payload:     dto.Payload,
		OccurredAt:  dto.OccurredAt.UTC(),
	}, nil
}
