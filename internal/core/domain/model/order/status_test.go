package order_test

import (
	"testing"

	"dronedispatch/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	t.Run("should parse every wire name", func(t *testing.T) {
		names := []string{"PENDING", "CONFIRMED", "PREPARING", "READY_FOR_PICKUP", "IN_FLIGHT", "DELIVERED", "FAILED", "CANCELLED"}
		for _, name := range names {
			s, err := order.ParseStatus(name)
			require.NoError(t, err)
			assert.Equal(t, name, s.String())
			require.NoError(t, s.Validate())
		}
	})

	t.Run("should reject unknown names", func(t *testing.T) {
		_, err := order.ParseStatus("Created")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "is not an order status")
	})

	t.Run("terminal statuses", func(t *testing.T) {
		assert.True(t, order.Delivered.IsTerminal())
		assert.True(t, order.Failed.IsTerminal())
		assert.True(t, order.Cancelled.IsTerminal())
		assert.False(t, order.InFlight.IsTerminal())
		assert.False(t, order.ReadyForPickup.IsTerminal())
	})

	t.Run("transition table", func(t *testing.T) {
		allowed := map[order.Status][]order.Status{
			order.Pending:        {order.Confirmed, order.Preparing, order.ReadyForPickup, order.Cancelled},
			order.Confirmed:      {order.Preparing, order.ReadyForPickup, order.Cancelled},
			order.Preparing:      {order.ReadyForPickup, order.Cancelled},
			order.ReadyForPickup: {order.InFlight, order.Cancelled},
			order.InFlight:       {order.Delivered, order.Failed, order.Cancelled},
		}
		all := []order.Status{
			order.Pending, order.Confirmed, order.Preparing, order.ReadyForPickup,
			order.InFlight, order.Delivered, order.Failed, order.Cancelled,
		}

		for _, from := range all {
			for _, to := range all {
				assert.Equal(t, contains(allowed[from], to), from.CanTransitionTo(to), "%s -> %s", from, to)
			}
		}
	})

	t.Run("invalid values", func(t *testing.T) {
		require.Error(t, order.Unknown.Validate())
		assert.Equal(t, "UNKNOWN", order.Status(99).String())
	})
}

func contains(statuses []order.Status, s order.Status) bool {
	for _, candidate := range statuses {
		if candidate == s {
			return true
		}
	}
	return false
}
