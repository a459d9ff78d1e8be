package commands

import (
	"context"
	"fmt"

	"grabbit/internal/core/domain/model/kernel"
	"grabbit/internal/core/ports"
	"grabbit/internal/pkg/clock"
)

// PublishOutboxCommandHandler relays pending outbox messages to the broker.
// Messages are claimed, published, then marked in one transaction; a failed
// publish leaves them pending for the next pass (at-least-once).
type PublishOutboxCommandHandler struct {
	uowFactory OutboxUoWFactory
	publisher  ports.EventPublisher
	clock      clock.Clock
}

func NewPublishOutboxCommandHandler(
	uowFactory OutboxUoWFactory,
	publisher ports.EventPublisher,
	clk clock.Clock,
) PublishOutboxCommandHandler {
	return PublishOutboxCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		clock:      clk,
	}
}

// Handle returns the number of messages published.
func (h PublishOutboxCommandHandler) Handle(ctx context.Context, cmd PublishOutboxCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	outbox := uow.OutboxRepository()

	messages, err := outbox.GetPending(ctx, cmd.BatchSize())
	if err != nil {
		return 0, err
	}
	if len(messages) == 0 {
		return 0, nil
	}

	if err = h.publisher.Publish(ctx, messages...); err != nil {
		return 0, fmt.Errorf("publish %d outbox messages: %w", len(messages), err)
	}

	ids := make([]kernel.UUID, 0, len(messages))
	for _, m := range messages {
		ids = append(ids, m.ID)
	}

	if err = outbox.MarkPublished(ctx, ids, h.clock.Now()); err != nil {
		return 0, err
	}

	if err = uow.Commit(ctx); err != nil {
		return 0, err
	}

	return len(messages), nil
}
