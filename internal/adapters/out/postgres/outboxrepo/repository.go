package outboxrepo

import (
	"context"
	"time"

	"grabbit/internal/adapters/out/postgres/pgerrs"
	"grabbit/internal/core/domain/model/kernel"
	"grabbit/internal/core/ports"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ ports.OutboxRepository = (*GormOutboxRepository)(nil)

// GormOutboxRepository implements OutboxRepository using GORM.
type GormOutboxRepository struct {
	db *gorm.DB
}

// NewGormOutboxRepository creates a new GORM outbox repository.
func NewGormOutboxRepository(db *gorm.DB) *GormOutboxRepository {
	return &GormOutboxRepository{db: db}
}

// Add inserts messages in one statement. It is called by the unit of work
// inside the transaction that produced the events.
func (r *GormOutboxRepository) Add(ctx context.Context, messages ...ports.OutboxMessage) error {
	if len(messages) == 0 {
		return nil
	}

	dtos := make([]OutboxDTO, 0, len(messages))
	for _, m := range messages {
		dtos = append(dtos, fromMessage(m))
	}

	if err := r.db.WithContext(ctx).Create(&dtos).Error; err != nil {
		return pgerrs.Classify("add outbox messages", err)
	}
	return nil
}

// GetPending claims up to limit unpublished messages, oldest first.
func (r *GormOutboxRepository) GetPending(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	var dtos []OutboxDTO
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate, Options: clause.LockingOptionsSkipLocked}).
		Where("published_at IS NULL").
		Order("occurred_at, sequence").
		Limit(limit).
		Find(&dtos).Error
	if err != nil {
		return nil, pgerrs.Classify("get pending outbox messages", err)
	}

	messages := make([]ports.OutboxMessage, 0, len(dtos))
	for _, dto := range dtos {
		m, convErr := toMessage(dto)
		if convErr != nil {
			return nil, convErr
		}
		messages = append(messages, m)
	}
	return messages, nil
}

// MarkPublished stamps published_at on the given messages.
func (r *GormOutboxRepository) MarkPublished(ctx context.Context, ids []kernel.UUID, publishedAt time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	raw := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, id.Bytes())
	}

	err := r.db.WithContext(ctx).
		Model(&OutboxDTO{}).
		Where("id IN ?", raw).
		Update("published_at", publishedAt.UTC()).Error
	if err != nil {
		return pgerrs.Classify("mark outbox messages published", err)
	}
	return nil
}
