// Package dbtest opens migrated databases and builds persisted fixtures for tests.
package dbtest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"dronedispatch/internal/adapters/out/postgres"
	"dronedispatch/internal/core/domain/geo"
	"dronedispatch/internal/core/domain/model/drone"
	"dronedispatch/internal/core/domain/model/kernel"
	"dronedispatch/internal/core/domain/model/mission"
	"dronedispatch/internal/core/domain/model/order"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

// Tables lists every table Migrate creates, in truncation order.
var Tables = []string{"missions", "drones", "orders", "mission_sequences"}

// Restaurant is the pickup point shared by the fixtures.
var Restaurant = kernel.MustLocation(40.7128, -74.0060)

// OpenSQLite returns a migrated in-memory sqlite database private to the test.
func OpenSQLite(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := postgres.Open(postgres.DatabaseConfig{
		Driver: postgres.DriverSqlite,
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", kernel.NewUUID()),
	})
	require.NoError(t, err)
	require.NoError(t, postgres.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// PostgresContainer is a disposable PostgreSQL instance.
type PostgresContainer struct {
	container *pgcontainer.PostgresContainer
	DB        *gorm.DB
}

// StartPostgres runs postgres:15-alpine and returns a migrated connection to it.
func StartPostgres(ctx context.Context) (*PostgresContainer, error) {
	container, err := pgcontainer.Run(ctx,
		"postgres:15-alpine",
		pgcontainer.WithDatabase("testdb"),
		pgcontainer.WithUsername("testuser"),
		pgcontainer.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, err
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}

	db, err := postgres.Open(postgres.DatabaseConfig{Driver: postgres.DriverPgx, DSN: dsn, MaxOpenConns: 10})
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}
	if err = postgres.Migrate(db); err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}

	return &PostgresContainer{container: container, DB: db}, nil
}

// Truncate empties every table.
func (c *PostgresContainer) Truncate() error {
	for _, table := range Tables {
		if err := c.DB.Exec("TRUNCATE TABLE " + table).Error; err != nil {
			return err
		}
	}
	return nil
}

func (c *PostgresContainer) Terminate(ctx context.Context) error {
	if sqlDB, err := c.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	return c.container.Terminate(ctx)
}

// DroneOption tweaks a fixture drone.
type DroneOption func(*droneFixture)

type droneFixture struct {
	specs    drone.Specs
	battery  float64
	location kernel.Location
	fence    *geo.Geofence
}

func WithBattery(percent float64) DroneOption {
	return func(f *droneFixture) { f.battery = percent }
}

func WithSpecs(specs drone.Specs) DroneOption {
	return func(f *droneFixture) { f.specs = specs }
}

func WithGeofence(fence geo.Geofence) DroneOption {
	return func(f *droneFixture) { f.fence = &fence }
}

func WithLocation(location kernel.Location) DroneOption {
	return func(f *droneFixture) { f.location = location }
}

// NewDrone builds an IDLE drone parked at Restaurant with 2kg payload, 10km range
// and a full battery.
func NewDrone(t testing.TB, restaurantID kernel.UUID, serial string, opts ...DroneOption) *drone.Drone {
	t.Helper()

	f := droneFixture{
		specs:    drone.Specs{PayloadMaxGrams: 2000, RangeKm: 10, SpeedKmh: 60},
		battery:  100,
		location: Restaurant,
	}
	for _, opt := range opts {
		opt(&f)
	}

	position, err := kernel.NewPosition(f.location, 0, 0)
	require.NoError(t, err)

	d, err := drone.NewDrone(kernel.NewUUID(), restaurantID, serial, "DJI FlyCart", f.specs, position, f.battery, f.fence)
	require.NoError(t, err)
	return d
}

// NewOrder builds a READY_FOR_PICKUP order of 500g delivered to delivery.
func NewOrder(t testing.TB, restaurantID kernel.UUID, delivery kernel.Location) *order.Order {
	t.Helper()

	o, err := order.NewOrder(
		kernel.NewUUID(), restaurantID, kernel.NewUUID(),
		[]order.Item{{Name: "Pad thai", WeightGrams: 250, Quantity: 2}},
		Restaurant, &delivery,
		order.ReadyForPickup, "restaurant-staff",
		time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return o
}

// NewMission builds a QUEUED mission serving o with d.
func NewMission(t testing.TB, number string, o *order.Order, d *drone.Drone, now time.Time) *mission.Mission {
	t.Helper()

	delivery := o.DeliveryLocation()
	require.NotNil(t, delivery)

	distance := geo.DistanceKm(o.RestaurantLocation(), *delivery)
	plan, err := mission.NewPlan(
		mission.Route{
			Pickup:    o.RestaurantLocation(),
			Delivery:  *delivery,
			Waypoints: geo.GenerateWaypoints(o.RestaurantLocation(), *delivery, geo.DefaultWaypointSegments, geo.DefaultCruiseAltitudeM),
		},
		mission.Estimates{
			DistanceKm:         distance,
			EtaMinutes:         geo.EstimateEtaMinutes(distance, d.Specs().SpeedKmh, geo.DefaultEtaBufferMinutes),
			BatteryConsumption: geo.EstimateBatteryConsumption(distance, float64(o.TotalWeightGrams()), geo.DefaultBatteryEfficiency),
		},
		mission.Parameters{
			PayloadGrams:    o.TotalWeightGrams(),
			CruiseAltitudeM: geo.DefaultCruiseAltitudeM,
			SpeedKmh:        d.Specs().SpeedKmh,
			BatteryRequired: 25,
		},
	)
	require.NoError(t, err)

	m, err := mission.NewMission(kernel.NewUUID(), number, o.ID(), o.RestaurantID(), d.ID(), plan, now)
	require.NoError(t, err)
	return m
}

// Tracker satisfies the repositories' aggregate tracker and records every call.
type Tracker struct {
	IDs []kernel.UUID
}

func (t *Tracker) TrackAggregate(id kernel.UUID, _ any) {
	t.IDs = append(t.IDs, id)
}
