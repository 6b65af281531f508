package order_test

import (
	"testing"
	"time"

	"dronedispatch/internal/core/domain/model/kernel"
	"dronedispatch/internal/core/domain/model/order"
	"dronedispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func validItems() []order.Item {
	return []order.Item{
		{Name: "Margherita", WeightGrams: 400, Quantity: 1},
		{Name: "Cola", WeightGrams: 50, Quantity: 2},
	}
}

func newOrder(t *testing.T, status order.Status) *order.Order {
	t.Helper()
	delivery := kernel.MustLocation(40.73, -74.0060)
	o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), validItems(),
		kernel.MustLocation(40.7128, -74.0060), &delivery, status, "restaurant-1", now)
	require.NoError(t, err)
	return o
}

func TestNewOrder(t *testing.T) {
	t.Run("should create valid order with all valid parameters", func(t *testing.T) {
		o := newOrder(t, order.ReadyForPickup)

		require.NoError(t, o.Validate())
		assert.Equal(t, order.ReadyForPickup, o.Status())
		assert.Equal(t, 500, o.TotalWeightGrams())
		require.NotNil(t, o.DeliveryLocation())
		assert.InDelta(t, 40.73, o.DeliveryLocation().Lat(), 1e-9)
		require.Len(t, o.History(), 1)
		assert.Equal(t, order.StatusChange{Status: order.ReadyForPickup, ActorID: "restaurant-1", Note: "Order registered", At: now}, o.History()[0])
	})

	t.Run("should allow a missing delivery location", func(t *testing.T) {
		o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), validItems(),
			kernel.MustLocation(40.7128, -74.0060), nil, order.Confirmed, "", now)

		require.NoError(t, err)
		assert.Nil(t, o.DeliveryLocation())
	})

	t.Run("should handle multiple validation errors", func(t *testing.T) {
		o, err := order.NewOrder(kernel.UUID{}, kernel.NewUUID(), kernel.UUID{},
			[]order.Item{{Name: "", WeightGrams: 0, Quantity: -1}},
			kernel.Location{}, nil, order.Unknown, "", now)

		require.Error(t, err)
		assert.Nil(t, o)
		require.ErrorIs(t, err, errs.ErrValidation)
		assert.Contains(t, err.Error(), "UUID must be created")
		assert.Contains(t, err.Error(), "customerId")
		assert.Contains(t, err.Error(), "item.name")
		assert.Contains(t, err.Error(), "item.weightGrams")
		assert.Contains(t, err.Error(), "item.quantity")
		assert.Contains(t, err.Error(), "restaurantLocation")
		assert.Contains(t, err.Error(), "is not a valid order status")
	})

	t.Run("should not share the items slice", func(t *testing.T) {
		items := validItems()
		o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), items,
			kernel.MustLocation(40.7128, -74.0060), nil, order.Pending, "", now)
		require.NoError(t, err)

		items[0].Quantity = 10

		assert.Equal(t, 500, o.TotalWeightGrams())
	})
}

func TestOrder_UpdateStatus(t *testing.T) {
	t.Run("should append history", func(t *testing.T) {
		o := newOrder(t, order.ReadyForPickup)

		require.NoError(t, o.UpdateStatus(order.InFlight, "dispatch", "Mission MSN2610180001 created", now.Add(time.Minute)))
		require.NoError(t, o.UpdateStatus(order.Delivered, "dispatch", "", now.Add(time.Hour)))

		assert.Equal(t, order.Delivered, o.Status())
		history := o.History()
		require.Len(t, history, 3)
		assert.Equal(t, order.InFlight, history[1].Status)
		assert.Equal(t, "Mission MSN2610180001 created", history[1].Note)
		assert.Equal(t, now.Add(time.Hour), history[2].At)
	})

	t.Run("should ignore the same status", func(t *testing.T) {
		o := newOrder(t, order.InFlight)

		require.NoError(t, o.UpdateStatus(order.InFlight, "dispatch", "again", now))

		assert.Len(t, o.History(), 1)
	})

	t.Run("should reject changes to terminal orders", func(t *testing.T) {
		for _, terminal := range []order.Status{order.Delivered, order.Failed, order.Cancelled} {
			o := newOrder(t, terminal)

			err := o.UpdateStatus(order.InFlight, "dispatch", "", now)

			require.ErrorIs(t, err, errs.ErrStateConflict)
			assert.Equal(t, terminal, o.Status())
		}
	})

	t.Run("should reject moves back while in flight", func(t *testing.T) {
		o := newOrder(t, order.InFlight)

		err := o.UpdateStatus(order.Pending, "restaurant-staff", "", now)

		require.ErrorIs(t, err, errs.ErrStateConflict)
		assert.Contains(t, err.Error(), "transition from IN_FLIGHT to PENDING is not allowed")
		assert.Equal(t, order.InFlight, o.Status())
		assert.Len(t, o.History(), 1)
	})

	t.Run("should allow skipping ahead in the kitchen", func(t *testing.T) {
		o := newOrder(t, order.Pending)

		require.NoError(t, o.UpdateStatus(order.ReadyForPickup, "restaurant-staff", "", now))
		require.ErrorIs(t, o.UpdateStatus(order.Preparing, "restaurant-staff", "", now), errs.ErrStateConflict)
		require.NoError(t, o.UpdateStatus(order.Cancelled, "customer", "changed mind", now))
	})

	t.Run("should reject invalid status", func(t *testing.T) {
		o := newOrder(t, order.Pending)

		require.ErrorIs(t, o.UpdateStatus(order.Status(42), "", "", now), errs.ErrValidation)
	})
}

func TestOrder_SetDeliveryLocation(t *testing.T) {
	o := newOrder(t, order.Confirmed)

	require.NoError(t, o.SetDeliveryLocation(kernel.MustLocation(40.75, -73.99)))
	assert.InDelta(t, 40.75, o.DeliveryLocation().Lat(), 1e-9)
	require.Error(t, o.SetDeliveryLocation(kernel.Location{}))

	done := newOrder(t, order.Delivered)
	require.ErrorIs(t, done.SetDeliveryLocation(kernel.MustLocation(40.75, -73.99)), errs.ErrStateConflict)
}

func TestRestoreOrder(t *testing.T) {
	history := []order.StatusChange{{Status: order.Pending, At: now}, {Status: order.InFlight, At: now.Add(time.Minute)}}

	o, err := order.RestoreOrder(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), validItems(),
		kernel.MustLocation(40.7128, -74.0060), nil, order.InFlight, history)

	require.NoError(t, err)
	require.NoError(t, o.Validate())
	assert.Equal(t, history, o.History())

	var zero order.Order
	require.ErrorIs(t, zero.Validate(), order.ErrOrderIsNotConstructed)
}
