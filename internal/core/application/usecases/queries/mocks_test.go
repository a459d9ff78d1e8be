package queries_test

import (
	"context"
	"testing"
	"time"

	"grabbit/internal/core/domain/model/assignment"
	"grabbit/internal/core/domain/model/kernel"
	"grabbit/internal/core/domain/model/order"
	"grabbit/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type MockOrderReader struct{ mock.Mock }

func (m *MockOrderReader) ListAvailable(ctx context.Context, now time.Time, limit int) ([]*order.Order, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderReader) GetOrder(ctx context.Context, id kernel.UUID) (*order.Order, *assignment.Assignment, error) {
	args := m.Called(ctx, id)
	var (
		o *order.Order
		a *assignment.Assignment
	)
	if v := args.Get(0); v != nil {
		o = v.(*order.Order)
	}
	if v := args.Get(1); v != nil {
		a = v.(*assignment.Assignment)
	}
	return o, a, args.Error(2)
}

func (m *MockOrderReader) ListByBuyer(ctx context.Context, buyerID kernel.UUID) ([]*order.Order, error) {
	args := m.Called(ctx, buyerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderReader) ListByCarrier(ctx context.Context, carrierID kernel.UUID) ([]ports.CarrierAssignment, error) {
	args := m.Called(ctx, carrierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ports.CarrierAssignment), args.Error(1)
}

func newOrder(t *testing.T, buyerID kernel.UUID, ttl time.Duration) *order.Order {
	t.Helper()
	item, err := order.NewItem("Apples", 6, 40)
	require.NoError(t, err)
	o, err := order.NewOrder(kernel.NewUUID(), buyerID, "Greengrocer", []order.Item{item}, "3 Orchard Row", t0, ttl)
	require.NoError(t, err)
	return o
}
