package order_test

import (
	"testing"
	"time"

	"grabbit/internal/core/domain/model/kernel"
	"grabbit/internal/core/domain/model/order"
	"grabbit/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func mustItems(t *testing.T) []order.Item {
	t.Helper()
	milk, err := order.NewItem("Milk", 2, 199)
	require.NoError(t, err)
	bread, err := order.NewItem("Bread", 1, 350)
	require.NoError(t, err)
	return []order.Item{milk, bread}
}

func newOpenOrder(t *testing.T, ttl time.Duration) (*order.Order, kernel.UUID) {
	t.Helper()
	buyerID := kernel.NewUUID()
	o, err := order.NewOrder(kernel.NewUUID(), buyerID, "Corner Shop", mustItems(t), "12 High Street", t0, ttl)
	require.NoError(t, err)
	o.PullEvents()
	return o, buyerID
}

func newAssignedOrder(t *testing.T) (*order.Order, kernel.UUID, kernel.UUID) {
	t.Helper()
	o, buyerID := newOpenOrder(t, time.Hour)
	carrierID := kernel.NewUUID()
	require.NoError(t, o.Assign(carrierID, t0.Add(time.Minute)))
	o.PullEvents()
	return o, buyerID, carrierID
}

func TestNewOrder(t *testing.T) {
	id := kernel.NewUUID()
	buyerID := kernel.NewUUID()

	t.Run("should create an open order", func(t *testing.T) {
		o, err := order.NewOrder(id, buyerID, " Corner Shop ", mustItems(t), "12 High Street", t0, 30*time.Minute)

		require.NoError(t, err)
		require.NoError(t, o.Validate())
		assert.True(t, o.ID().IsEqual(id))
		assert.True(t, o.BuyerID().IsEqual(buyerID))
		assert.Equal(t, "Corner Shop", o.StoreName())
		assert.Len(t, o.Items(), 2)
		assert.Equal(t, int64(2*199+350), o.Total())
		assert.Equal(t, "12 High Street", o.DeliveryAddress())
		assert.Equal(t, order.Open, o.Status())
		assert.Nil(t, o.Carrier())
		assert.Equal(t, t0, o.CreatedAt())
		assert.Equal(t, t0, o.UpdatedAt())
		assert.Equal(t, t0.Add(30*time.Minute), o.ExpiresAt())
	})

	t.Run("should keep the total exact at the item bounds", func(t *testing.T) {
		largest, err := order.NewItem("Bulk", order.MaxItemQuantity, order.MaxUnitPrice)
		require.NoError(t, err)
		items := make([]order.Item, order.MaxItems)
		for i := range items {
			items[i] = largest
		}

		o, err := order.NewOrder(id, buyerID, "Shop", items, "Addr", t0, 0)

		require.NoError(t, err)
		assert.Equal(t, int64(order.MaxItems)*int64(order.MaxItemQuantity)*order.MaxUnitPrice, o.Total())
		assert.Positive(t, o.Total())
	})

	t.Run("should reject too many items", func(t *testing.T) {
		item, err := order.NewItem("Tea", 1, 200)
		require.NoError(t, err)
		items := make([]order.Item, order.MaxItems+1)
		for i := range items {
			items[i] = item
		}

		_, err = order.NewOrder(id, buyerID, "Shop", items, "Addr", t0, 0)

		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})

	t.Run("should default ttl to one hour", func(t *testing.T) {
		o, err := order.NewOrder(id, buyerID, "Shop", mustItems(t), "Addr", t0, 0)

		require.NoError(t, err)
		assert.Equal(t, t0.Add(order.DefaultTTL), o.ExpiresAt())
	})

	t.Run("should record a created event", func(t *testing.T) {
		o, err := order.NewOrder(id, buyerID, "Shop", mustItems(t), "Addr", t0, 0)
		require.NoError(t, err)

		events := o.PullEvents()

		require.Len(t, events, 1)
		assert.Equal(t, order.EventCreated, events[0].Type)
		assert.True(t, events[0].OrderID.IsEqual(id))
		assert.Equal(t, order.Open, events[0].Status)
		assert.Empty(t, o.PullEvents())
	})

	t.Run("should reject invalid input", func(t *testing.T) {
		tests := []struct {
			name    string
			id      kernel.UUID
			buyer   kernel.UUID
			store   string
			items   []order.Item
			address string
			ttl     time.Duration
			target  error
		}{
			{"nil id", kernel.UUID{}, buyerID, "Shop", mustItems(t), "Addr", 0, kernel.ErrUUIDIsNotConstructed},
			{"nil buyer", id, kernel.UUID{}, "Shop", mustItems(t), "Addr", 0, errs.ErrValueIsInvalid},
			{"blank store", id, buyerID, " ", mustItems(t), "Addr", 0, errs.ErrValueIsRequired},
			{"no items", id, buyerID, "Shop", nil, "Addr", 0, errs.ErrValueIsRequired},
			{"zero value item", id, buyerID, "Shop", []order.Item{{}}, "Addr", 0, errs.ErrValueIsInvalid},
			{"blank address", id, buyerID, "Shop", mustItems(t), "", 0, errs.ErrValueIsRequired},
			{"ttl too short", id, buyerID, "Shop", mustItems(t), "Addr", time.Millisecond, errs.ErrValueIsOutOfRange},
			{"ttl negative", id, buyerID, "Shop", mustItems(t), "Addr", -time.Minute, errs.ErrValueIsOutOfRange},
			{"ttl too long", id, buyerID, "Shop", mustItems(t), "Addr", 8 * 24 * time.Hour, errs.ErrValueIsOutOfRange},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				o, err := order.NewOrder(tt.id, tt.buyer, tt.store, tt.items, tt.address, t0, tt.ttl)

				require.ErrorIs(t, err, tt.target)
				assert.Nil(t, o)
			})
		}
	})

	t.Run("should join multiple validation errors", func(t *testing.T) {
		_, err := order.NewOrder(id, buyerID, "", nil, "", t0, 0)

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
		assert.Contains(t, err.Error(), "store name")
		assert.Contains(t, err.Error(), "items")
		assert.Contains(t, err.Error(), "delivery address")
	})
}

func TestRestoreOrder(t *testing.T) {
	id := kernel.NewUUID()
	buyerID := kernel.NewUUID()
	carrierID := kernel.NewUUID()

	t.Run("should restore an assigned order", func(t *testing.T) {
		o, err := order.RestoreOrder(id, buyerID, "Shop", mustItems(t), "Addr", order.InProgress, &carrierID,
			t0, t0.Add(time.Minute), t0.Add(time.Hour))

		require.NoError(t, err)
		assert.Equal(t, order.InProgress, o.Status())
		assert.True(t, o.IsBoundTo(carrierID))
		assert.Equal(t, t0.Add(time.Hour), o.ExpiresAt())
		assert.Empty(t, o.PullEvents())
	})

	t.Run("should reject a carrier on an open order", func(t *testing.T) {
		_, err := order.RestoreOrder(id, buyerID, "Shop", mustItems(t), "Addr", order.Open, &carrierID,
			t0, t0, t0.Add(time.Hour))

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should reject a missing carrier on a completed order", func(t *testing.T) {
		_, err := order.RestoreOrder(id, buyerID, "Shop", mustItems(t), "Addr", order.Completed, nil,
			t0, t0, t0.Add(time.Hour))

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should reject an unknown status", func(t *testing.T) {
		_, err := order.RestoreOrder(id, buyerID, "Shop", mustItems(t), "Addr", order.Unknown, nil,
			t0, t0, t0.Add(time.Hour))

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestOrder_Validate(t *testing.T) {
	var o *order.Order
	require.ErrorIs(t, o.Validate(), order.ErrOrderIsNotConstructed)

	require.ErrorIs(t, (&order.Order{}).Validate(), order.ErrOrderIsNotConstructed)
}

func TestOrder_EffectiveStatus(t *testing.T) {
	o, _ := newOpenOrder(t, time.Second)

	assert.Equal(t, order.Open, o.EffectiveStatus(t0))
	assert.Equal(t, order.Open, o.EffectiveStatus(t0.Add(999*time.Millisecond)))
	assert.Equal(t, order.Expired, o.EffectiveStatus(t0.Add(time.Second)))
	assert.Equal(t, order.Expired, o.EffectiveStatus(t0.Add(2*time.Second)))
	assert.Equal(t, order.Open, o.Status(), "reads never mutate the stored status")
}

func TestOrder_Assign(t *testing.T) {
	t.Run("should bind the carrier", func(t *testing.T) {
		o, _ := newOpenOrder(t, time.Hour)
		carrierID := kernel.NewUUID()
		at := t0.Add(30 * time.Minute)

		require.NoError(t, o.Assign(carrierID, at))

		assert.Equal(t, order.Assigned, o.Status())
		require.NotNil(t, o.Carrier())
		assert.True(t, o.Carrier().IsEqual(carrierID))
		assert.Equal(t, at, o.UpdatedAt())

		events := o.PullEvents()
		require.Len(t, events, 1)
		assert.Equal(t, order.EventAssigned, events[0].Type)
		require.NotNil(t, events[0].CarrierID)
		assert.True(t, events[0].CarrierID.IsEqual(carrierID))
	})

	t.Run("should reject a second carrier", func(t *testing.T) {
		o, _, first := newAssignedOrder(t)

		err := o.Assign(kernel.NewUUID(), t0.Add(2*time.Minute))

		require.ErrorIs(t, err, order.ErrOrderAlreadyAssigned)
		assert.True(t, o.IsBoundTo(first))
	})

	t.Run("should reject an overdue order", func(t *testing.T) {
		o, _ := newOpenOrder(t, time.Second)

		err := o.Assign(kernel.NewUUID(), t0.Add(2*time.Second))

		require.ErrorIs(t, err, order.ErrOrderExpired)
		assert.Equal(t, order.Open, o.Status())
		assert.Nil(t, o.Carrier())
	})

	t.Run("should reject exactly at the expiry instant", func(t *testing.T) {
		o, _ := newOpenOrder(t, time.Minute)

		err := o.Assign(kernel.NewUUID(), t0.Add(time.Minute))

		require.ErrorIs(t, err, order.ErrOrderExpired)
	})

	t.Run("should report expired before already assigned for expired orders", func(t *testing.T) {
		o, _ := newOpenOrder(t, time.Second)
		require.NoError(t, o.Expire(t0.Add(time.Second)))

		err := o.Assign(kernel.NewUUID(), t0.Add(time.Hour))

		require.ErrorIs(t, err, order.ErrOrderExpired)
	})

	t.Run("should reject a cancelled order as already assigned", func(t *testing.T) {
		o, buyerID := newOpenOrder(t, time.Hour)
		require.NoError(t, o.Cancel(buyerID, t0))

		err := o.Assign(kernel.NewUUID(), t0)

		require.ErrorIs(t, err, order.ErrOrderAlreadyAssigned)
	})

	t.Run("should reject a nil carrier id", func(t *testing.T) {
		o, _ := newOpenOrder(t, time.Hour)

		err := o.Assign(kernel.UUID{}, t0)

		require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
	})
}

func TestOrder_Advance(t *testing.T) {
	t.Run("should walk the forward table", func(t *testing.T) {
		o, _, carrierID := newAssignedOrder(t)

		require.NoError(t, o.Advance(carrierID, order.InProgress, t0.Add(2*time.Minute)))
		assert.Equal(t, order.InProgress, o.Status())

		require.NoError(t, o.Advance(carrierID, order.ReadyForPickup, t0.Add(3*time.Minute)))
		assert.Equal(t, order.ReadyForPickup, o.Status())

		events := o.PullEvents()
		require.Len(t, events, 2)
		assert.Equal(t, order.EventStatusAdvanced, events[0].Type)
		assert.Equal(t, order.InProgress, events[0].Status)
		assert.Equal(t, order.ReadyForPickup, events[1].Status)
	})

	t.Run("should forbid a foreign carrier in every status", func(t *testing.T) {
		o, _, carrierID := newAssignedOrder(t)
		stranger := kernel.NewUUID()

		require.ErrorIs(t, o.Advance(stranger, order.InProgress, t0), errs.ErrForbidden)
		require.NoError(t, o.Advance(carrierID, order.InProgress, t0))
		require.ErrorIs(t, o.Advance(stranger, order.ReadyForPickup, t0), errs.ErrForbidden)
		require.NoError(t, o.Advance(carrierID, order.ReadyForPickup, t0))
		require.ErrorIs(t, o.Advance(stranger, order.Completed, t0), errs.ErrForbidden)
	})

	t.Run("should forbid any carrier on an open order", func(t *testing.T) {
		o, _ := newOpenOrder(t, time.Hour)

		require.ErrorIs(t, o.Advance(kernel.NewUUID(), order.InProgress, t0), errs.ErrForbidden)
	})

	t.Run("should reject skipping a state", func(t *testing.T) {
		o, _, carrierID := newAssignedOrder(t)

		err := o.Advance(carrierID, order.ReadyForPickup, t0)

		require.ErrorIs(t, err, order.ErrInvalidTransition)
		assert.Equal(t, order.Assigned, o.Status())
	})

	t.Run("should never move backward", func(t *testing.T) {
		o, _, carrierID := newAssignedOrder(t)
		require.NoError(t, o.Advance(carrierID, order.InProgress, t0))
		require.NoError(t, o.Advance(carrierID, order.ReadyForPickup, t0))

		for _, target := range []order.Status{order.Open, order.Assigned, order.InProgress, order.ReadyForPickup, order.Completed} {
			require.ErrorIs(t, o.Advance(carrierID, target, t0), order.ErrInvalidTransition, target.String())
		}
		assert.Equal(t, order.ReadyForPickup, o.Status())
	})
}

func TestOrder_ConfirmDelivery(t *testing.T) {
	readyOrder := func(t *testing.T) (*order.Order, kernel.UUID) {
		o, buyerID, carrierID := newAssignedOrder(t)
		require.NoError(t, o.Advance(carrierID, order.InProgress, t0))
		require.NoError(t, o.Advance(carrierID, order.ReadyForPickup, t0))
		o.PullEvents()
		return o, buyerID
	}

	t.Run("should complete a ready order", func(t *testing.T) {
		o, buyerID := readyOrder(t)

		require.NoError(t, o.ConfirmDelivery(buyerID, t0.Add(time.Hour)))

		assert.Equal(t, order.Completed, o.Status())
		assert.NotNil(t, o.Carrier())
		events := o.PullEvents()
		require.Len(t, events, 1)
		assert.Equal(t, order.EventCompleted, events[0].Type)
	})

	t.Run("should forbid a different buyer", func(t *testing.T) {
		o, _ := readyOrder(t)

		require.ErrorIs(t, o.ConfirmDelivery(kernel.NewUUID(), t0), errs.ErrForbidden)
		assert.Equal(t, order.ReadyForPickup, o.Status())
	})

	t.Run("should reject confirmation before ready", func(t *testing.T) {
		o, buyerID, _ := newAssignedOrder(t)

		require.ErrorIs(t, o.ConfirmDelivery(buyerID, t0), order.ErrInvalidState)
	})
}

func TestOrder_Cancel(t *testing.T) {
	t.Run("should cancel an open order", func(t *testing.T) {
		o, buyerID := newOpenOrder(t, time.Hour)

		require.NoError(t, o.Cancel(buyerID, t0.Add(time.Minute)))

		assert.Equal(t, order.Cancelled, o.Status())
		events := o.PullEvents()
		require.Len(t, events, 1)
		assert.Equal(t, order.EventCancelled, events[0].Type)
	})

	t.Run("should forbid anyone but the buyer", func(t *testing.T) {
		o, _ := newOpenOrder(t, time.Hour)

		require.ErrorIs(t, o.Cancel(kernel.NewUUID(), t0), errs.ErrForbidden)
		assert.Equal(t, order.Open, o.Status())
	})

	t.Run("should reject an assigned order", func(t *testing.T) {
		o, buyerID, _ := newAssignedOrder(t)

		require.ErrorIs(t, o.Cancel(buyerID, t0), order.ErrInvalidState)
	})

	t.Run("should report expiry for an overdue order", func(t *testing.T) {
		o, buyerID := newOpenOrder(t, time.Second)

		require.ErrorIs(t, o.Cancel(buyerID, t0.Add(time.Minute)), order.ErrOrderExpired)
		assert.Equal(t, order.Open, o.Status())
	})
}

func TestOrder_Expire(t *testing.T) {
	t.Run("should expire an overdue order", func(t *testing.T) {
		o, _ := newOpenOrder(t, time.Second)

		require.NoError(t, o.Expire(t0.Add(2*time.Second)))

		assert.Equal(t, order.Expired, o.Status())
		assert.Nil(t, o.Carrier())
		events := o.PullEvents()
		require.Len(t, events, 1)
		assert.Equal(t, order.EventExpired, events[0].Type)
	})

	t.Run("should refuse before expiry", func(t *testing.T) {
		o, _ := newOpenOrder(t, time.Hour)

		require.ErrorIs(t, o.Expire(t0.Add(time.Minute)), order.ErrInvalidState)
		assert.Equal(t, order.Open, o.Status())
	})

	t.Run("should refuse a non-open order", func(t *testing.T) {
		o, _, _ := newAssignedOrder(t)

		require.ErrorIs(t, o.Expire(t0.Add(2*time.Hour)), order.ErrInvalidState)
		assert.Equal(t, order.Assigned, o.Status())
	})
}
