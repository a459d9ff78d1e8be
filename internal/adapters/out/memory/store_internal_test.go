package memory

import (
	"testing"
	"time"

	"grabbit/internal/core/domain/model/kernel"
	"grabbit/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_ReleasesStateAfterRelay(t *testing.T) {
	store := NewStore(time.Second)
	factory := NewUnitOfWorkFactory(store)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	item, err := order.NewItem("Burger", 2, 450)
	require.NoError(t, err)
	o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), "Corner Shop", []order.Item{item}, "12 High Street", now, time.Hour)
	require.NoError(t, err)

	create := factory.Create()
	require.NoError(t, create.Begin(t.Context()))
	require.NoError(t, create.OrderRepository().Add(t.Context(), o))
	require.NoError(t, create.Commit(t.Context()))
	require.Len(t, store.outbox, 1)

	update := factory.Create()
	require.NoError(t, update.Begin(t.Context()))
	_, err = update.OrderRepository().GetForUpdate(t.Context(), o.ID())
	require.NoError(t, err)
	require.NoError(t, update.Commit(t.Context()))
	assert.Zero(t, store.locks.size(), "order lock slot is dropped once released")

	relay := factory.Create()
	require.NoError(t, relay.Begin(t.Context()))
	pending, err := relay.OutboxRepository().GetPending(t.Context(), 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.NoError(t, relay.OutboxRepository().MarkPublished(t.Context(), []kernel.UUID{pending[0].ID}, now))
	require.NoError(t, relay.Commit(t.Context()))

	assert.Empty(t, store.outbox, "published messages are pruned")
	assert.Zero(t, store.locks.size(), "outbox lock slots are dropped once released")

	again := factory.Create()
	require.NoError(t, again.Begin(t.Context()))
	defer func() { _ = again.Rollback(t.Context()) }()
	pending, err = again.OutboxRepository().GetPending(t.Context(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
