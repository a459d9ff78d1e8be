package memory_test

import (
	"context"
	"testing"
	"time"

	"grabbit/internal/adapters/out/memory"
	"grabbit/internal/core/application/usecases/commands"
	"grabbit/internal/core/domain/model/kernel"
	"grabbit/internal/core/domain/model/order"
	"grabbit/internal/core/ports"
	"grabbit/internal/pkg/clock"

	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store   *memory.Store
	factory *memory.UnitOfWorkFactory
	clock   *clock.FakeClock
}

func newFixture(timeout time.Duration) *fixture {
	store := memory.NewStore(timeout)
	return &fixture{
		store:   store,
		factory: memory.NewUnitOfWorkFactory(store),
		clock:   clock.NewFakeClock(t0),
	}
}

type orderUoWFactory func() commands.OrderUoW

func (f orderUoWFactory) Create() commands.OrderUoW { return f() }

type uowFactory func() commands.UoW

func (f uowFactory) Create() commands.UoW { return f() }

type outboxUoWFactory func() commands.OutboxUoW

func (f outboxUoWFactory) Create() commands.OutboxUoW { return f() }

func (f *fixture) orderUoW() commands.OrderUoWFactory {
	return orderUoWFactory(func() commands.OrderUoW { return f.factory.Create() })
}

func (f *fixture) uow() commands.UoWFactory {
	return uowFactory(func() commands.UoW { return f.factory.Create() })
}

func (f *fixture) outboxUoW() commands.OutboxUoWFactory {
	return outboxUoWFactory(func() commands.OutboxUoW { return f.factory.Create() })
}

func (f *fixture) createOrder(t *testing.T, buyerID kernel.UUID, ttl time.Duration) kernel.UUID {
	t.Helper()

	item, err := order.NewItem("Burger", 2, 450)
	require.NoError(t, err)

	orderID := kernel.NewUUID()
	cmd, err := commands.NewCreateOrderCommand(orderID, buyerID, "Corner Shop", []order.Item{item}, "12 High Street", ttl)
	require.NoError(t, err)

	require.NoError(t, commands.NewCreateOrderCommandHandler(f.orderUoW(), f.clock).Handle(t.Context(), cmd))
	return orderID
}

func (f *fixture) accept(ctx context.Context, orderID, carrierID kernel.UUID) (commands.AcceptOrderResponse, error) {
	cmd, err := commands.NewAcceptOrderCommand(orderID, carrierID)
	if err != nil {
		return commands.AcceptOrderResponse{}, err
	}
	return commands.NewAcceptOrderCommandHandler(f.uow(), f.clock).Handle(ctx, cmd)
}

type recordingPublisher struct {
	messages []ports.OutboxMessage
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, messages ...ports.OutboxMessage) error {
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, messages...)
	return nil
}
