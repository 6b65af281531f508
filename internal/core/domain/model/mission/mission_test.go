package mission_test

import (
	"testing"
	"time"

	"dronedispatch/internal/core/domain/geo"
	"dronedispatch/internal/core/domain/model/kernel"
	"dronedispatch/internal/core/domain/model/mission"
	"dronedispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func newPlan(t *testing.T) mission.Plan {
	t.Helper()

	pickup := kernel.MustLocation(40.7128, -74.0060)
	delivery := kernel.MustLocation(40.7300, -74.0060)
	plan, err := mission.NewPlan(
		mission.Route{
			Pickup:    pickup,
			Delivery:  delivery,
			Waypoints: geo.GenerateWaypoints(pickup, delivery, 5, 100),
		},
		mission.Estimates{DistanceKm: 1.9, EtaMinutes: 12, BatteryConsumption: 3},
		mission.Parameters{PayloadGrams: 500, CruiseAltitudeM: 100, SpeedKmh: 60, BatteryRequired: 23},
	)
	require.NoError(t, err)
	return plan
}

func newMission(t *testing.T) *mission.Mission {
	t.Helper()

	m, err := mission.NewMission(
		kernel.NewUUID(), "MSN2610180001",
		kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
		newPlan(t), t0,
	)
	require.NoError(t, err)
	return m
}

func sample(lat, lng, speed, battery float64) mission.Telemetry {
	return mission.Telemetry{
		Location:       kernel.MustLocation(lat, lng),
		AltitudeM:      100,
		Heading:        0,
		SpeedKmh:       speed,
		BatteryPercent: battery,
	}
}

func walk(t *testing.T, m *mission.Mission, at time.Time, statuses ...mission.Status) {
	t.Helper()
	for i, s := range statuses {
		require.NoError(t, m.Transition(s, "", at.Add(time.Duration(i)*time.Minute)), "transition to %s", s)
	}
}

func TestNewMission(t *testing.T) {
	t.Run("should start queued with one timeline entry", func(t *testing.T) {
		m := newMission(t)

		require.NoError(t, m.Validate())
		assert.Equal(t, mission.Queued, m.Status())
		assert.Equal(t, "MSN2610180001", m.Number())
		require.Len(t, m.Timeline(), 1)
		assert.Equal(t, mission.Queued, m.Timeline()[0].Status)
		assert.Equal(t, "Mission created and queued for dispatch", m.Timeline()[0].Note)
		assert.Equal(t, t0, m.CreatedAt())
		assert.Len(t, m.Route().Waypoints, 6)
		assert.Equal(t, 3, m.Estimates().BatteryConsumption)
		assert.Empty(t, m.Path())
		assert.Nil(t, m.Failure())
		assert.Nil(t, m.StartedAt())
		assert.Equal(t, 0, m.Version())
	})

	t.Run("should fail without number and ids", func(t *testing.T) {
		m, err := mission.NewMission(kernel.UUID{}, " ", kernel.NewUUID(), kernel.UUID{}, kernel.NewUUID(), newPlan(t), t0)

		require.Error(t, err)
		assert.Nil(t, m)
		require.ErrorIs(t, err, errs.ErrValidation)
		assert.Contains(t, err.Error(), "missionNumber")
		assert.Contains(t, err.Error(), "restaurantId")
	})

	t.Run("should fail with zero plan", func(t *testing.T) {
		m, err := mission.NewMission(kernel.NewUUID(), "MSN2610180001", kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), mission.Plan{}, t0)

		require.ErrorIs(t, err, mission.ErrPlanIsNotConstructed)
		assert.Nil(t, m)
	})
}

func TestMission_Transition(t *testing.T) {
	t.Run("should follow the happy path and stamp lifecycle times", func(t *testing.T) {
		m := newMission(t)

		walk(t, m, t0.Add(time.Minute),
			mission.Preparing, mission.Takeoff, mission.Cruising, mission.Approaching,
			mission.Landing, mission.Delivered, mission.Returning)

		assert.Equal(t, mission.Returning, m.Status())
		require.NotNil(t, m.StartedAt())
		assert.Equal(t, t0.Add(2*time.Minute), *m.StartedAt())
		require.NotNil(t, m.DeliveredAt())
		assert.Equal(t, t0.Add(6*time.Minute), *m.DeliveredAt())
		assert.Len(t, m.Timeline(), 8)
	})

	t.Run("should reject every transition outside the table and keep status", func(t *testing.T) {
		for _, from := range mission.AllStatuses() {
			for _, to := range mission.AllStatuses() {
				if from.CanTransitionTo(to) || from.IsTerminal() {
					continue
				}
				m := restoreAt(t, from)

				err := m.Transition(to, "", t0.Add(time.Hour))

				require.ErrorIs(t, err, errs.ErrStateConflict, "%s -> %s", from, to)
				assert.Equal(t, from, m.Status())
			}
		}
	})

	t.Run("should reject any transition out of a terminal state", func(t *testing.T) {
		m := newMission(t)
		require.NoError(t, m.Transition(mission.Aborted, "customer cancelled", t0.Add(time.Minute)))

		for _, to := range mission.AllStatuses() {
			err := m.Transition(to, "", t0.Add(time.Hour))
			require.ErrorIs(t, err, errs.ErrStateConflict)
		}
		assert.Equal(t, mission.Aborted, m.Status())
	})

	t.Run("should use the note or the default note", func(t *testing.T) {
		m := newMission(t)

		require.NoError(t, m.Transition(mission.Preparing, "loading", t0.Add(time.Minute)))
		require.NoError(t, m.Transition(mission.Takeoff, "  ", t0.Add(2*time.Minute)))

		timeline := m.Timeline()
		assert.Equal(t, "loading", timeline[1].Note)
		assert.Equal(t, "Drone is taking off", timeline[2].Note)
	})

	t.Run("should snapshot the last path point into the timeline", func(t *testing.T) {
		m := newMission(t)
		_, err := m.AddPathPoint(sample(40.7128, -74.0060, 0, 95), t0.Add(time.Second))
		require.NoError(t, err)

		require.NoError(t, m.Transition(mission.Preparing, "", t0.Add(time.Minute)))

		entry := m.Timeline()[1]
		require.NotNil(t, entry.Location)
		require.NotNil(t, entry.BatteryPercent)
		assert.InDelta(t, 40.7128, entry.Location.Lat(), 1e-9)
		assert.InDelta(t, 95.0, *entry.BatteryPercent, 1e-9)
		assert.Nil(t, m.Timeline()[0].Location)
	})

	t.Run("should keep timeline timestamps strictly increasing", func(t *testing.T) {
		m := newMission(t)

		require.NoError(t, m.Transition(mission.Preparing, "", t0))
		require.NoError(t, m.Transition(mission.Takeoff, "", t0.Add(-time.Hour)))

		timeline := m.Timeline()
		for i := 1; i < len(timeline); i++ {
			assert.True(t, timeline[i].Timestamp.After(timeline[i-1].Timestamp))
		}
	})

	t.Run("should record a failure on a generic update to FAILED", func(t *testing.T) {
		m := newMission(t)
		walk(t, m, t0.Add(time.Minute), mission.Preparing, mission.Takeoff)

		require.NoError(t, m.Transition(mission.Failed, "motor fault", t0.Add(time.Hour)))

		require.NotNil(t, m.Failure())
		assert.Equal(t, "motor fault", m.Failure().Reason)
		assert.Equal(t, mission.CodeUnspecified, m.Failure().Code)
	})

	t.Run("should reject FAILED before takeoff", func(t *testing.T) {
		m := newMission(t)

		err := m.Transition(mission.Failed, "", t0.Add(time.Minute))

		require.ErrorIs(t, err, errs.ErrStateConflict)
		assert.Nil(t, m.Failure())
	})

	t.Run("should reject an invalid status", func(t *testing.T) {
		m := newMission(t)

		err := m.Transition(mission.Unknown, "", t0)

		require.ErrorIs(t, err, errs.ErrValidation)
	})
}

func TestMission_Complete(t *testing.T) {
	t.Run("should complete a returning mission and compute actuals", func(t *testing.T) {
		m := newMission(t)
		walk(t, m, t0.Add(time.Minute), mission.Preparing, mission.Takeoff)
		for i, p := range []mission.Telemetry{
			sample(40.7128, -74.0060, 0, 95),
			sample(40.7200, -74.0060, 72, 92),
			sample(40.7300, -74.0060, 55, 88),
		} {
			_, err := m.AddPathPoint(p, t0.Add(time.Duration(3+i)*time.Minute))
			require.NoError(t, err)
		}
		walk(t, m, t0.Add(10*time.Minute),
			mission.Cruising, mission.Approaching, mission.Landing, mission.Delivered, mission.Returning)

		require.NoError(t, m.Complete(t0.Add(20*time.Minute)))

		assert.Equal(t, mission.Completed, m.Status())
		require.NotNil(t, m.CompletedAt())
		actuals := m.Actuals()
		path := m.Path()
		assert.InDelta(t, path[0].BatteryPercent-path[len(path)-1].BatteryPercent, actuals.BatteryConsumption, 1e-9)
		assert.Equal(t, 20, actuals.DurationMinutes)
		assert.InDelta(t, 72.0, actuals.MaxSpeed, 1e-9)
		assert.InDelta(t, m.TravelledKm(), actuals.DistanceKm, 1e-9)
		assert.InDelta(t, 1.91, actuals.DistanceKm, 0.01)
		assert.InDelta(t, actuals.DistanceKm/(20.0/60), actuals.AverageSpeed, 1e-9)
		assert.Equal(t, 100, mission.ProgressPercent(m))
	})

	t.Run("should fail unless returning", func(t *testing.T) {
		m := newMission(t)
		walk(t, m, t0.Add(time.Minute), mission.Preparing, mission.Takeoff, mission.Cruising)

		err := m.Complete(t0.Add(time.Hour))

		var conflict *errs.StateConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, "CRUISING", conflict.From)
		assert.Equal(t, "COMPLETED", conflict.To)
		assert.Equal(t, mission.Cruising, m.Status())
		assert.Equal(t, mission.Actuals{}, m.Actuals())
	})

	t.Run("should fail when already completed", func(t *testing.T) {
		m := restoreAt(t, mission.Returning)
		require.NoError(t, m.Complete(t0.Add(time.Hour)))

		err := m.Complete(t0.Add(2 * time.Hour))

		require.ErrorIs(t, err, errs.ErrStateConflict)
		assert.Contains(t, err.Error(), "already completed")
	})

	t.Run("should report zero average speed for an instant mission", func(t *testing.T) {
		m := restoreAt(t, mission.Returning)

		require.NoError(t, m.Complete(t0))

		assert.Equal(t, 0, m.Actuals().DurationMinutes)
		assert.Zero(t, m.Actuals().AverageSpeed)
	})
}

func TestMission_AbortAndFail(t *testing.T) {
	t.Run("should abort from cruising with failure at the last point", func(t *testing.T) {
		m := newMission(t)
		walk(t, m, t0.Add(time.Minute), mission.Preparing, mission.Takeoff, mission.Cruising)
		_, err := m.AddPathPoint(sample(40.72, -74.0060, 60, 70), t0.Add(5*time.Minute))
		require.NoError(t, err)

		err = m.Abort(mission.FailureDetails{Reason: "weather", Code: "WX_WIND", Description: "gusts over 40km/h"}, t0.Add(6*time.Minute))

		require.NoError(t, err)
		assert.Equal(t, mission.Aborted, m.Status())
		f := m.Failure()
		require.NotNil(t, f)
		assert.Equal(t, "weather", f.Reason)
		assert.Equal(t, "WX_WIND", f.Code)
		assert.Equal(t, "gusts over 40km/h", f.Description)
		assert.Equal(t, t0.Add(6*time.Minute), f.OccurredAt)
		require.NotNil(t, f.Location)
		assert.InDelta(t, 40.72, f.Location.Lat(), 1e-9)
		assert.Equal(t, "weather", m.Timeline()[len(m.Timeline())-1].Note)
		assert.Equal(t, 0, mission.ProgressPercent(m))
		assert.Equal(t, 6, mission.DurationMinutes(m, t0.Add(24*time.Hour)))
	})

	t.Run("should abort a queued mission without location", func(t *testing.T) {
		m := newMission(t)

		require.NoError(t, m.Abort(mission.FailureDetails{Reason: "cancelled", Code: "CUSTOMER"}, t0.Add(time.Minute)))

		assert.Nil(t, m.Failure().Location)
	})

	t.Run("should require reason and code", func(t *testing.T) {
		m := newMission(t)

		err := m.Abort(mission.FailureDetails{}, t0)

		require.ErrorIs(t, err, errs.ErrValidation)
		assert.Contains(t, err.Error(), "reason")
		assert.Contains(t, err.Error(), "code")
		assert.Equal(t, mission.Queued, m.Status())
	})

	t.Run("should use an explicit failure location", func(t *testing.T) {
		m := newMission(t)
		walk(t, m, t0.Add(time.Minute), mission.Preparing, mission.Takeoff)
		crash := kernel.MustLocation(40.715, -74.0)

		require.NoError(t, m.Fail(mission.FailureDetails{Reason: "lost link", Code: "C2_LOSS", Location: &crash}, t0.Add(time.Hour)))

		assert.Equal(t, mission.Failed, m.Status())
		require.NotNil(t, m.Failure().Location)
		assert.InDelta(t, 40.715, m.Failure().Location.Lat(), 1e-9)
	})

	t.Run("should not fail a queued mission", func(t *testing.T) {
		m := newMission(t)

		err := m.Fail(mission.FailureDetails{Reason: "lost link", Code: "C2_LOSS"}, t0)

		require.ErrorIs(t, err, errs.ErrStateConflict)
		assert.Nil(t, m.Failure())
	})
}

func TestMission_AddPathPoint(t *testing.T) {
	t.Run("should accumulate distance and keep timestamps increasing", func(t *testing.T) {
		m := newMission(t)

		p1, err := m.AddPathPoint(sample(40.7128, -74.0060, 0, 90), t0)
		require.NoError(t, err)
		p2, err := m.AddPathPoint(sample(40.7300, -74.0060, 50, 88), t0)
		require.NoError(t, err)
		p3, err := m.AddPathPoint(sample(40.7300, -74.0060, 0, 87), t0.Add(-time.Minute))
		require.NoError(t, err)

		assert.Equal(t, t0, p1.Timestamp)
		assert.Equal(t, t0.Add(time.Millisecond), p2.Timestamp)
		assert.Equal(t, t0.Add(2*time.Millisecond), p3.Timestamp)
		assert.Len(t, m.Path(), 3)
		assert.InDelta(t, 1.91, m.TravelledKm(), 0.01)
		assert.Equal(t, mission.Actuals{}, m.Actuals())
	})

	t.Run("should reject telemetry on a terminal mission", func(t *testing.T) {
		m := restoreAt(t, mission.Returning)
		require.NoError(t, m.Complete(t0))

		_, err := m.AddPathPoint(sample(40.7, -74, 0, 50), t0.Add(time.Minute))

		require.ErrorIs(t, err, errs.ErrStateConflict)
	})

	t.Run("should reject invalid samples", func(t *testing.T) {
		m := newMission(t)
		bad := sample(40.7, -74, -1, 120)
		bad.Heading = 360

		_, err := m.AddPathPoint(bad, t0)

		require.ErrorIs(t, err, errs.ErrValidation)
		assert.Contains(t, err.Error(), "speed")
		assert.Contains(t, err.Error(), "heading")
		assert.Contains(t, err.Error(), "batteryPercent")
		assert.Empty(t, m.Path())
	})
}

func TestRestoreMission(t *testing.T) {
	t.Run("should require a failure for aborted missions", func(t *testing.T) {
		s := snapshotAt(mission.Aborted)

		m, err := mission.RestoreMission(s)

		require.ErrorIs(t, err, errs.ErrValidation)
		assert.Nil(t, m)
	})

	t.Run("should copy slices", func(t *testing.T) {
		s := snapshotAt(mission.Cruising)
		s.Path = []mission.PathPoint{{Telemetry: sample(40.7, -74, 10, 80), Timestamp: t0}}

		m, err := mission.RestoreMission(s)
		require.NoError(t, err)
		s.Path[0].BatteryPercent = 1

		assert.InDelta(t, 80.0, m.Path()[0].BatteryPercent, 1e-9)
		assert.Equal(t, 3, m.Version())
	})
}

func TestMetrics(t *testing.T) {
	m := newMission(t)

	assert.Equal(t, 0, mission.ProgressPercent(m))
	assert.Equal(t, 15, mission.DurationMinutes(m, t0.Add(15*time.Minute+20*time.Second)))
	assert.Equal(t, 0, mission.DurationMinutes(m, t0.Add(-time.Hour)))

	walk(t, m, t0.Add(time.Minute), mission.Preparing, mission.Takeoff, mission.Cruising, mission.Approaching)
	assert.Equal(t, 70, mission.ProgressPercent(m))
	assert.Equal(t, 100, mission.ProgressFor(mission.Completed))
	assert.Equal(t, 0, mission.ProgressFor(mission.Aborted))
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "MSN2610180042", mission.FormatNumber(t0, 42))
	assert.Equal(t, "MSN26101812345", mission.FormatNumber(t0, 12345))
	assert.Equal(t, "261018", mission.SequenceDay(time.Date(2026, 10, 19, 1, 0, 0, 0, time.FixedZone("UTC+3", 3*3600))))
}

func snapshotAt(status mission.Status) mission.Snapshot {
	pickup := kernel.MustLocation(40.7128, -74.0060)
	delivery := kernel.MustLocation(40.7300, -74.0060)
	return mission.Snapshot{
		ID:           kernel.NewUUID(),
		Number:       "MSN2610180007",
		OrderID:      kernel.NewUUID(),
		RestaurantID: kernel.NewUUID(),
		DroneID:      kernel.NewUUID(),
		Status:       status,
		Route: mission.Route{
			Pickup:    pickup,
			Delivery:  delivery,
			Waypoints: geo.GenerateWaypoints(pickup, delivery, 5, 100),
		},
		Timeline:  []mission.TimelineEntry{{Status: status, Timestamp: t0}},
		CreatedAt: t0,
		Version:   3,
	}
}

func restoreAt(t *testing.T, status mission.Status) *mission.Mission {
	t.Helper()

	s := snapshotAt(status)
	if status.IsFailure() {
		s.Failure = &mission.Failure{Reason: "test", Code: "TEST", OccurredAt: t0}
	}
	m, err := mission.RestoreMission(s)
	require.NoError(t, err)
	return m
}
