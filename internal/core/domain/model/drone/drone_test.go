package drone_test

import (
	"math"
	"testing"

	"dronedispatch/internal/core/domain/geo"
	"dronedispatch/internal/core/domain/model/drone"
	"dronedispatch/internal/core/domain/model/kernel"
	"dronedispatch/internal/core/domain/model/mission"
	"dronedispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	base  = kernel.MustLocation(40.7128, -74.0060)
	specs = drone.Specs{PayloadMaxGrams: 2000, RangeKm: 10, SpeedKmh: 60}
)

func at(t *testing.T, loc kernel.Location) kernel.Position {
	t.Helper()
	p, err := kernel.PositionAt(loc)
	require.NoError(t, err)
	return p
}

func fence(t *testing.T, radiusKm float64) *geo.Geofence {
	t.Helper()
	f, err := geo.NewCircleGeofence(base, radiusKm)
	require.NoError(t, err)
	return &f
}

func newDrone(t *testing.T, battery float64) *drone.Drone {
	t.Helper()
	d, err := drone.NewDrone(kernel.NewUUID(), kernel.NewUUID(), "DR-001", "X8", specs, at(t, base), battery, fence(t, 5))
	require.NoError(t, err)
	return d
}

func restore(t *testing.T, status drone.Status, health drone.Health, battery float64, missionID *kernel.UUID) *drone.Drone {
	t.Helper()
	d, err := drone.RestoreDrone(kernel.NewUUID(), kernel.NewUUID(), "DR-002", "X8", specs,
		status, health, at(t, base), battery, nil, missionID, 4)
	require.NoError(t, err)
	return d
}

func TestNewDrone(t *testing.T) {
	t.Run("should register an idle healthy drone", func(t *testing.T) {
		d := newDrone(t, 80)

		require.NoError(t, d.Validate())
		assert.Equal(t, drone.Idle, d.Status())
		assert.Equal(t, drone.Healthy, d.Health())
		assert.Equal(t, "DR-001", d.Serial())
		assert.InDelta(t, 80.0, d.BatteryPercent(), 1e-9)
		assert.Nil(t, d.CurrentMissionID())
		assert.False(t, d.IsReserved())
		assert.True(t, d.IsEligible())
		require.NotNil(t, d.Geofence())
		assert.InDelta(t, 5.0, d.Geofence().RadiusKm(), 1e-9)
	})

	t.Run("should fail with all invalid values joined", func(t *testing.T) {
		d, err := drone.NewDrone(kernel.UUID{}, kernel.UUID{}, "  ", "X8", drone.Specs{}, at(t, base), 101, nil)

		require.Error(t, err)
		assert.Nil(t, d)
		require.ErrorIs(t, err, errs.ErrValidation)
		assert.Contains(t, err.Error(), "UUID must be created")
		assert.Contains(t, err.Error(), "restaurantId")
		assert.Contains(t, err.Error(), "serial")
		assert.Contains(t, err.Error(), "payloadMaxGrams")
		assert.Contains(t, err.Error(), "batteryPercent")
	})

	t.Run("should fail outside its own geofence", func(t *testing.T) {
		far := kernel.MustLocation(40.80, -74.0060)

		d, err := drone.NewDrone(kernel.NewUUID(), kernel.NewUUID(), "DR-001", "X8", specs, at(t, far), 80, fence(t, 5))

		assert.Nil(t, d)
		assert.Equal(t, drone.ReasonOutsideGeofence, errs.ReasonOf(err))
	})
}

func TestRestoreDrone(t *testing.T) {
	t.Run("should reject a mission slot on an idle drone", func(t *testing.T) {
		id := kernel.NewUUID()

		d, err := drone.RestoreDrone(kernel.NewUUID(), kernel.NewUUID(), "DR-002", "X8", specs,
			drone.Idle, drone.Healthy, at(t, base), 80, nil, &id, 1)

		require.ErrorIs(t, err, errs.ErrValidation)
		assert.Nil(t, d)
	})

	t.Run("should restore a reserved drone", func(t *testing.T) {
		id := kernel.NewUUID()

		d := restore(t, drone.InFlight, drone.Warning, 60, &id)

		assert.True(t, d.IsReserved())
		assert.True(t, kernel.EqualPtr(&id, d.CurrentMissionID()))
		assert.Equal(t, 4, d.Version())
		assert.Nil(t, d.Geofence())
	})
}

func TestDrone_CheckEligibility(t *testing.T) {
	missionID := kernel.NewUUID()

	tests := []struct {
		name     string
		drone    func(t *testing.T) *drone.Drone
		reason   string
		conflict bool
	}{
		{"idle and charged", func(t *testing.T) *drone.Drone { return restore(t, drone.Idle, drone.Warning, 30, nil) }, "", false},
		{"charging", func(t *testing.T) *drone.Drone { return restore(t, drone.Charging, drone.Healthy, 90, nil) }, drone.ReasonDroneNotIdle, false},
		{"battery low", func(t *testing.T) *drone.Drone { return restore(t, drone.Idle, drone.Healthy, 29.9, nil) }, drone.ReasonDroneBatteryLow, false},
		{"critical", func(t *testing.T) *drone.Drone { return restore(t, drone.Idle, drone.Critical, 90, nil) }, drone.ReasonDroneHealthCritical, false},
		{"reserved", func(t *testing.T) *drone.Drone { return restore(t, drone.Preparing, drone.Healthy, 90, &missionID) }, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.drone(t).CheckEligibility()

			switch {
			case tt.conflict:
				require.ErrorIs(t, err, errs.ErrStateConflict)
			case tt.reason == "":
				require.NoError(t, err)
			default:
				require.ErrorIs(t, err, errs.ErrValidation)
				assert.Equal(t, tt.reason, errs.ReasonOf(err))
			}
		})
	}

	t.Run("battery message is attributable", func(t *testing.T) {
		err := restore(t, drone.Idle, drone.Healthy, 12.5, nil).CheckEligibility()
		assert.Contains(t, err.Error(), "battery 12.5% is below the dispatch minimum of 30%")
	})
}

func TestDrone_ReserveAndRelease(t *testing.T) {
	t.Run("should take the slot once", func(t *testing.T) {
		d := newDrone(t, 80)
		first, second := kernel.NewUUID(), kernel.NewUUID()

		require.NoError(t, d.Reserve(first))
		err := d.Reserve(second)

		require.ErrorIs(t, err, errs.ErrStateConflict)
		assert.Equal(t, drone.Preparing, d.Status())
		assert.True(t, kernel.EqualPtr(&first, d.CurrentMissionID()))
		assert.False(t, d.IsEligible())
	})

	t.Run("should not reserve an ineligible drone", func(t *testing.T) {
		d := newDrone(t, 10)

		err := d.Reserve(kernel.NewUUID())

		assert.Equal(t, drone.ReasonDroneBatteryLow, errs.ReasonOf(err))
		assert.Nil(t, d.CurrentMissionID())
		assert.Equal(t, drone.Idle, d.Status())
	})

	t.Run("should release to idle", func(t *testing.T) {
		d := newDrone(t, 80)
		require.NoError(t, d.Reserve(kernel.NewUUID()))

		d.Release()

		assert.Equal(t, drone.Idle, d.Status())
		assert.Nil(t, d.CurrentMissionID())
	})

	t.Run("should not leak the slot through the accessor", func(t *testing.T) {
		d := newDrone(t, 80)
		id := kernel.NewUUID()
		require.NoError(t, d.Reserve(id))

		got := d.CurrentMissionID()
		*got = kernel.NewUUID()

		assert.True(t, kernel.EqualPtr(&id, d.CurrentMissionID()))
	})
}

func TestDrone_MirrorMissionStatus(t *testing.T) {
	tests := []struct {
		mission  mission.Status
		expected drone.Status
		released bool
	}{
		{mission.Queued, drone.Preparing, false},
		{mission.Preparing, drone.Preparing, false},
		{mission.Takeoff, drone.InFlight, false},
		{mission.Cruising, drone.InFlight, false},
		{mission.Approaching, drone.InFlight, false},
		{mission.Landing, drone.Preparing, false},
		{mission.Delivered, drone.Returning, false},
		{mission.Returning, drone.Returning, false},
		{mission.Completed, drone.Idle, true},
		{mission.Aborted, drone.Idle, true},
		{mission.Failed, drone.Idle, true},
	}

	for _, tt := range tests {
		t.Run(tt.mission.String(), func(t *testing.T) {
			d := newDrone(t, 80)
			missionID := kernel.NewUUID()
			require.NoError(t, d.Reserve(missionID))

			require.NoError(t, d.MirrorMissionStatus(missionID, tt.mission))

			assert.Equal(t, tt.expected, d.Status())
			assert.Equal(t, tt.released, d.CurrentMissionID() == nil)
		})
	}

	t.Run("should reject another mission", func(t *testing.T) {
		d := newDrone(t, 80)
		require.NoError(t, d.Reserve(kernel.NewUUID()))

		err := d.MirrorMissionStatus(kernel.NewUUID(), mission.Takeoff)

		require.ErrorIs(t, err, errs.ErrStateConflict)
		assert.Equal(t, drone.Preparing, d.Status())
	})

	t.Run("should ignore terminal statuses on a released drone", func(t *testing.T) {
		d := newDrone(t, 80)

		require.NoError(t, d.MirrorMissionStatus(kernel.NewUUID(), mission.Aborted))
		require.ErrorIs(t, d.MirrorMissionStatus(kernel.NewUUID(), mission.Cruising), errs.ErrStateConflict)
		assert.Equal(t, drone.Idle, d.Status())
	})
}

func TestDrone_UpdateLocation(t *testing.T) {
	t.Run("should move inside the geofence", func(t *testing.T) {
		d := newDrone(t, 80)
		inside := kernel.MustLocation(40.73, -74.0060)

		require.NoError(t, d.UpdateLocation(at(t, inside)))

		assert.InDelta(t, 40.73, d.Position().Location().Lat(), 1e-9)
	})

	t.Run("should reject outside the geofence with distance and radius", func(t *testing.T) {
		d := newDrone(t, 80)
		outside := kernel.MustLocation(40.80, -74.0060)

		err := d.UpdateLocation(at(t, outside))

		var verr *errs.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, drone.ReasonOutsideGeofence, verr.Reason)
		assert.InDelta(t, 9.7, verr.Values["distanceKm"], 0.1)
		assert.InDelta(t, 5.0, verr.Values["radiusKm"], 1e-9)
		assert.Contains(t, err.Error(), "radius is 5km")
		assert.InDelta(t, base.Lat(), d.Position().Location().Lat(), 1e-9)
	})

	t.Run("telemetry is recorded even outside the geofence", func(t *testing.T) {
		d := newDrone(t, 80)
		outside := kernel.MustLocation(40.80, -74.0060)

		require.NoError(t, d.RecordTelemetry(at(t, outside), 64))

		assert.InDelta(t, 40.80, d.Position().Location().Lat(), 1e-9)
		assert.InDelta(t, 64.0, d.BatteryPercent(), 1e-9)
	})
}

func TestDrone_UpdateBattery(t *testing.T) {
	d := newDrone(t, 80)

	require.NoError(t, d.UpdateBattery(120))
	assert.InDelta(t, 100.0, d.BatteryPercent(), 1e-9)

	require.NoError(t, d.UpdateBattery(-3))
	assert.InDelta(t, 0.0, d.BatteryPercent(), 1e-9)

	require.NoError(t, d.UpdateBattery(42.5))
	assert.InDelta(t, 42.5, d.BatteryPercent(), 1e-9)

	require.ErrorIs(t, d.UpdateBattery(math.NaN()), errs.ErrValidation)
	assert.InDelta(t, 42.5, d.BatteryPercent(), 1e-9)
}

func TestDrone_SetOperationalStatus(t *testing.T) {
	t.Run("should take an idle drone to maintenance", func(t *testing.T) {
		d := newDrone(t, 80)

		require.NoError(t, d.SetOperationalStatus(drone.Maintenance, drone.Warning))

		assert.Equal(t, drone.Maintenance, d.Status())
		assert.Equal(t, drone.Warning, d.Health())
		assert.Equal(t, drone.ReasonDroneNotIdle, errs.ReasonOf(d.CheckEligibility()))
	})

	t.Run("should reject mission statuses", func(t *testing.T) {
		d := newDrone(t, 80)

		err := d.SetOperationalStatus(drone.InFlight, drone.Healthy)

		require.ErrorIs(t, err, errs.ErrValidation)
		assert.Equal(t, drone.Idle, d.Status())
	})

	t.Run("should reject a reserved drone", func(t *testing.T) {
		d := newDrone(t, 80)
		require.NoError(t, d.Reserve(kernel.NewUUID()))

		err := d.SetOperationalStatus(drone.Idle, drone.Healthy)

		require.ErrorIs(t, err, errs.ErrStateConflict)
		assert.Equal(t, drone.Preparing, d.Status())
	})
}

func TestStatusParsing(t *testing.T) {
	for _, name := range []string{"IDLE", "PREPARING", "CHARGING", "MAINTENANCE", "IN_FLIGHT", "RETURNING", "ERROR"} {
		s, err := drone.ParseStatus(name)
		require.NoError(t, err)
		assert.Equal(t, name, s.String())
	}
	for _, name := range []string{"HEALTHY", "WARNING", "CRITICAL"} {
		h, err := drone.ParseHealth(name)
		require.NoError(t, err)
		assert.Equal(t, name, h.String())
	}

	_, err := drone.ParseStatus("FLYING")
	require.ErrorIs(t, err, errs.ErrValidation)
	_, err = drone.ParseHealth("UNKNOWN")
	require.Error(t, err)
}
