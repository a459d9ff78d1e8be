package commands_test

import (
	"errors"
	"testing"
	"time"

	"grabbit/internal/core/application/usecases/commands"
	"grabbit/internal/core/domain/model/kernel"
	"grabbit/internal/core/domain/model/order"
	"grabbit/internal/core/ports"
	"grabbit/internal/pkg/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func outboxMessages(n int) []ports.OutboxMessage {
	messages := make([]ports.OutboxMessage, 0, n)
	for i := 0; i < n; i++ {
		messages = append(messages, ports.OutboxMessage{
			ID:          kernel.NewUUID(),
			EventType:   order.EventCreated,
			AggregateID: kernel.NewUUID(),
			Payload:     []byte(`{}`),
			OccurredAt:  t0.Add(time.Duration(i) * time.Second),
		})
	}
	return messages
}

func TestPublishOutboxCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	messages := outboxMessages(3)
	ids := []kernel.UUID{messages[0].ID, messages[1].ID, messages[2].ID}
	cmd, err := commands.NewPublishOutboxCommand(100)
	require.NoError(t, err)

	outbox := new(MockOutboxRepository)
	publisher := new(MockPublisher)
	uow := new(MockUoW)
	factory := new(MockOutboxUoWFactory)

	mock.InOrder(
		factory.On("Create").Return(uow).Once(),
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OutboxRepository").Return(outbox).Once(),
		outbox.On("GetPending", ctx, 100).Return(messages, nil).Once(),
		publisher.On("Publish", ctx, messages).Return(nil).Once(),
		outbox.On("MarkPublished", ctx, ids, t0).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	handler := commands.NewPublishOutboxCommandHandler(factory, publisher, clock.NewFakeClock(t0))
	n, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, 3, n)
	outbox.AssertExpectations(t)
	publisher.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestPublishOutboxCommandHandler_Handle_PublishFailureKeepsMessagesPending(t *testing.T) {
	ctx := t.Context()
	messages := outboxMessages(1)
	cmd, err := commands.NewPublishOutboxCommand(100)
	require.NoError(t, err)

	outbox := new(MockOutboxRepository)
	publisher := new(MockPublisher)
	uow := new(MockUoW)
	factory := new(MockOutboxUoWFactory)

	factory.On("Create").Return(uow).Once()
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("OutboxRepository").Return(outbox).Once()
	outbox.On("GetPending", ctx, 100).Return(messages, nil).Once()
	publisher.On("Publish", ctx, messages).Return(errors.New("broker down")).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	handler := commands.NewPublishOutboxCommandHandler(factory, publisher, clock.NewFakeClock(t0))
	n, err := handler.Handle(ctx, cmd)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
	assert.Zero(t, n)
	outbox.AssertNotCalled(t, "MarkPublished", mock.Anything, mock.Anything, mock.Anything)
	uow.AssertNotCalled(t, "Commit", ctx)
}

func TestPublishOutboxCommandHandler_Handle_Empty(t *testing.T) {
	ctx := t.Context()
	cmd, err := commands.NewPublishOutboxCommand(100)
	require.NoError(t, err)

	outbox := new(MockOutboxRepository)
	publisher := new(MockPublisher)
	uow := new(MockUoW)
	factory := new(MockOutboxUoWFactory)

	factory.On("Create").Return(uow).Once()
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("OutboxRepository").Return(outbox).Once()
	outbox.On("GetPending", ctx, 100).Return([]ports.OutboxMessage{}, nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	handler := commands.NewPublishOutboxCommandHandler(factory, publisher, clock.NewFakeClock(t0))
	n, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Zero(t, n)
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}
