package order_test

import (
	"testing"

	"grabbit/internal/core/domain/model/order"
	"grabbit/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allStatuses() []order.Status {
	return []order.Status{
		order.Open,
		order.Assigned,
		order.InProgress,
		order.ReadyForPickup,
		order.Completed,
		order.Cancelled,
		order.Expired,
	}
}

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status   order.Status
		expected string
	}{
		{order.Unknown, "unknown"},
		{order.Open, "open"},
		{order.Assigned, "assigned"},
		{order.InProgress, "in_progress"},
		{order.ReadyForPickup, "ready_for_pickup"},
		{order.Completed, "completed"},
		{order.Cancelled, "cancelled"},
		{order.Expired, "expired"},
		{order.Status(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.status.String())
		})
	}
}

func TestParseStatus(t *testing.T) {
	t.Run("should parse every valid status", func(t *testing.T) {
		for _, status := range allStatuses() {
			parsed, err := order.ParseStatus(status.String())

			require.NoError(t, err)
			assert.Equal(t, status, parsed)
		}
	})

	t.Run("should reject unknown input", func(t *testing.T) {
		for _, input := range []string{"", "unknown", "OPEN", "delivered"} {
			_, err := order.ParseStatus(input)

			require.ErrorIs(t, err, errs.ErrValueIsInvalid, "input %q", input)
		}
	})
}

func TestStatus_Validate(t *testing.T) {
	for _, status := range allStatuses() {
		require.NoError(t, status.Validate(), status.String())
	}

	require.ErrorIs(t, order.Unknown.Validate(), errs.ErrValueIsInvalid)
	require.ErrorIs(t, order.Status(42).Validate(), errs.ErrValueIsInvalid)
}

func TestStatus_IsTerminal(t *testing.T) {
	terminal := map[order.Status]bool{
		order.Completed: true,
		order.Cancelled: true,
		order.Expired:   true,
	}

	for _, status := range allStatuses() {
		assert.Equal(t, terminal[status], status.IsTerminal(), status.String())
	}
}

func TestStatus_ValidateCanHaveCarrier(t *testing.T) {
	withCarrier := map[order.Status]bool{
		order.Assigned:       true,
		order.InProgress:     true,
		order.ReadyForPickup: true,
		order.Completed:      true,
	}

	for _, status := range allStatuses() {
		t.Run(status.String(), func(t *testing.T) {
			if withCarrier[status] {
				require.NoError(t, status.ValidateCanHaveCarrier(true))
				require.ErrorIs(t, status.ValidateCanHaveCarrier(false), errs.ErrValueIsInvalid)
			} else {
				require.NoError(t, status.ValidateCanHaveCarrier(false))
				require.ErrorIs(t, status.ValidateCanHaveCarrier(true), errs.ErrValueIsInvalid)
			}
		})
	}
}

func TestStatus_Advance(t *testing.T) {
	allowed := map[[2]order.Status]bool{
		{order.Assigned, order.InProgress}:       true,
		{order.InProgress, order.ReadyForPickup}: true,
	}

	for _, from := range allStatuses() {
		for _, to := range allStatuses() {
			name := from.String() + " -> " + to.String()
			t.Run(name, func(t *testing.T) {
				next, err := from.Advance(to)

				if allowed[[2]order.Status{from, to}] {
					require.NoError(t, err)
					assert.Equal(t, to, next)
					return
				}
				require.ErrorIs(t, err, order.ErrInvalidTransition)
				assert.Contains(t, err.Error(), name)
			})
		}
	}
}

func TestStatus_Assign(t *testing.T) {
	next, err := order.Open.Assign()
	require.NoError(t, err)
	assert.Equal(t, order.Assigned, next)

	for _, status := range allStatuses()[1:] {
		_, err := status.Assign()
		require.ErrorIs(t, err, order.ErrOrderAlreadyAssigned, status.String())
	}
}

func TestStatus_CompleteAndCancel(t *testing.T) {
	t.Run("complete only from ready_for_pickup", func(t *testing.T) {
		for _, status := range allStatuses() {
			next, err := status.Complete()
			if status == order.ReadyForPickup {
				require.NoError(t, err)
				assert.Equal(t, order.Completed, next)
				continue
			}
			require.ErrorIs(t, err, order.ErrInvalidState, status.String())
		}
	})

	t.Run("cancel only from open", func(t *testing.T) {
		for _, status := range allStatuses() {
			next, err := status.Cancel()
			if status == order.Open {
				require.NoError(t, err)
				assert.Equal(t, order.Cancelled, next)
				continue
			}
			require.ErrorIs(t, err, order.ErrInvalidState, status.String())
		}
	})
}
