package commands_test

import (
	"context"
	"time"

	"dronedispatch/internal/core/application/usecases/commands"
	"dronedispatch/internal/core/domain/model/drone"
	"dronedispatch/internal/core/domain/model/kernel"
	"dronedispatch/internal/core/domain/model/mission"
	"dronedispatch/internal/core/domain/model/order"
	"dronedispatch/internal/core/ports"

	"github.com/stretchr/testify/mock"
)

type MockDroneRepository struct{ mock.Mock }

func (m *MockDroneRepository) Add(ctx context.Context, d *drone.Drone) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDroneRepository) Update(ctx context.Context, d *drone.Drone) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDroneRepository) Reserve(ctx context.Context, d *drone.Drone) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDroneRepository) Get(ctx context.Context, id kernel.UUID) (*drone.Drone, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*drone.Drone), args.Error(1)
}

func (m *MockDroneRepository) GetIdleByRestaurant(ctx context.Context, restaurantID kernel.UUID) ([]*drone.Drone, error) {
	args := m.Called(ctx, restaurantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*drone.Drone), args.Error(1)
}

type MockMissionRepository struct{ mock.Mock }

func (m *MockMissionRepository) Add(ctx context.Context, ms *mission.Mission) error {
	args := m.Called(ctx, ms)
	return args.Error(0)
}

func (m *MockMissionRepository) Update(ctx context.Context, ms *mission.Mission) error {
	args := m.Called(ctx, ms)
	return args.Error(0)
}

func (m *MockMissionRepository) Get(ctx context.Context, id kernel.UUID) (*mission.Mission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mission.Mission), args.Error(1)
}

func (m *MockMissionRepository) GetByOrderID(ctx context.Context, orderID kernel.UUID) (*mission.Mission, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mission.Mission), args.Error(1)
}

func (m *MockMissionRepository) GetStale(ctx context.Context, before time.Time) ([]*mission.Mission, error) {
	args := m.Called(ctx, before)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*mission.Mission), args.Error(1)
}

type MockSequenceRepository struct{ mock.Mock }

func (m *MockSequenceRepository) Next(ctx context.Context, day string) (int, error) {
	args := m.Called(ctx, day)
	return args.Int(0), args.Error(1)
}

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

// MockUoW satisfies UoW, DroneUoW and OrderUoW.
type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) DroneRepository() ports.DroneRepository {
	args := m.Called()
	return args.Get(0).(ports.DroneRepository)
}

func (m *MockUoW) MissionRepository() ports.MissionRepository {
	args := m.Called()
	return args.Get(0).(ports.MissionRepository)
}

func (m *MockUoW) MissionSequenceRepository() ports.MissionSequenceRepository {
	args := m.Called()
	return args.Get(0).(ports.MissionSequenceRepository)
}

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type MockDroneUoWFactory struct{ mock.Mock }

func (m *MockDroneUoWFactory) Create() commands.DroneUoW {
	args := m.Called()
	return args.Get(0).(commands.DroneUoW)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) Emit(ctx context.Context, channel, event string, payload any) error {
	args := m.Called(ctx, channel, event, payload)
	return args.Error(0)
}

type MockMissionCache struct{ mock.Mock }

func (m *MockMissionCache) Get(ctx context.Context, id kernel.UUID, dst any) (bool, error) {
	args := m.Called(ctx, id, dst)
	return args.Bool(0), args.Error(1)
}

func (m *MockMissionCache) Set(ctx context.Context, id kernel.UUID, view any) error {
	args := m.Called(ctx, id, view)
	return args.Error(0)
}

func (m *MockMissionCache) Invalidate(ctx context.Context, id kernel.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockTelemetryArchive struct{ mock.Mock }

func (m *MockTelemetryArchive) Archive(ctx context.Context, records ...ports.TelemetryRecord) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}
