package commands_test

import (
	"sync"
	"testing"

	postgresadapter "dronedispatch/internal/adapters/out/postgres"
	"dronedispatch/internal/adapters/out/postgres/dbtest"
	"dronedispatch/internal/core/application/usecases/commands"
	"dronedispatch/internal/core/domain/model/drone"
	"dronedispatch/internal/core/domain/model/kernel"
	"dronedispatch/internal/core/domain/model/mission"
	"dronedispatch/internal/core/domain/model/order"
	"dronedispatch/internal/core/domain/services"
	"dronedispatch/internal/core/ports"
	"dronedispatch/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// DispatchFlowSuite drives the command handlers against a migrated sqlite database.
type DispatchFlowSuite struct {
	suite.Suite

	store        *postgresadapter.GormUnitOfWorkFactory
	notifier     *MockNotifier
	restaurantID kernel.UUID

	registerDrone  commands.RegisterDroneCommandHandler
	registerOrder  commands.RegisterOrderCommandHandler
	updateOrder    commands.UpdateOrderStatusCommandHandler
	createMission  commands.CreateMissionCommandHandler
	updateStatus   commands.UpdateMissionStatusCommandHandler
	appendSample   commands.AppendTelemetryCommandHandler
	completeFlight commands.CompleteMissionCommandHandler
	abortFlight    commands.AbortMissionCommandHandler
	failFlight     commands.FailMissionCommandHandler
	setStatus      commands.SetDroneStatusCommandHandler
}

func TestDispatchFlow(t *testing.T) {
	suite.Run(t, new(DispatchFlowSuite))
}

func (s *DispatchFlowSuite) SetupTest() {
	s.store = postgresadapter.NewGormUnitOfWorkFactory(dbtest.OpenSQLite(s.T()))
	s.notifier = new(MockNotifier)
	s.notifier.On("Emit", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	s.restaurantID = kernel.NewUUID()

	uowFactory := commands.UoWFactoryFunc(func() commands.UoW { return s.store.Create() })
	droneFactory := commands.DroneUoWFactoryFunc(func() commands.DroneUoW { return s.store.Create() })
	orderFactory := commands.OrderUoWFactoryFunc(func() commands.OrderUoW { return s.store.Create() })
	publisher := commands.NewPublisher(s.notifier, nil, nil, nil)

	s.registerDrone = commands.NewRegisterDroneCommandHandler(droneFactory, publisher)
	s.registerOrder = commands.NewRegisterOrderCommandHandler(orderFactory, publisher)
	s.updateOrder = commands.NewUpdateOrderStatusCommandHandler(orderFactory, publisher)
	s.createMission = commands.NewCreateMissionCommandHandler(uowFactory,
		services.NewMissionPlanner(services.DefaultPlannerPolicy()), publisher)
	s.updateStatus = commands.NewUpdateMissionStatusCommandHandler(uowFactory, publisher)
	s.appendSample = commands.NewAppendTelemetryCommandHandler(uowFactory, publisher)
	s.completeFlight = commands.NewCompleteMissionCommandHandler(uowFactory, publisher)
	s.abortFlight = commands.NewAbortMissionCommandHandler(uowFactory, publisher)
	s.failFlight = commands.NewFailMissionCommandHandler(uowFactory, publisher)
	s.setStatus = commands.NewSetDroneStatusCommandHandler(droneFactory, publisher)
}

func (s *DispatchFlowSuite) newDrone(serial string, battery float64) *drone.Drone {
	position, err := kernel.PositionAt(dbtest.Restaurant)
	s.Require().NoError(err)

	cmd, err := commands.NewRegisterDroneCommand(s.restaurantID, serial, "DJI FlyCart",
		drone.Specs{PayloadMaxGrams: 2000, RangeKm: 10, SpeedKmh: 60}, position, battery, nil)
	s.Require().NoError(err)

	d, err := s.registerDrone.Handle(s.T().Context(), cmd)
	s.Require().NoError(err)
	return d
}

func (s *DispatchFlowSuite) newOrder(delivery kernel.Location) *order.Order {
	cmd, err := commands.NewRegisterOrderCommand(kernel.NewUUID(), s.restaurantID, kernel.NewUUID(),
		[]order.Item{{Name: "Pad thai", WeightGrams: 250, Quantity: 2}},
		dbtest.Restaurant, &delivery, order.ReadyForPickup, "restaurant-staff")
	s.Require().NoError(err)

	o, err := s.registerOrder.Handle(s.T().Context(), cmd)
	s.Require().NoError(err)
	return o
}

func (s *DispatchFlowSuite) dispatch(o *order.Order, d *drone.Drone) *mission.Mission {
	droneID := d.ID()
	cmd, err := commands.NewCreateMissionCommand(o.ID(), &droneID, "dispatcher-7")
	s.Require().NoError(err)

	m, err := s.createMission.Handle(s.T().Context(), cmd)
	s.Require().NoError(err)
	return m
}

func (s *DispatchFlowSuite) advance(missionID kernel.UUID, statuses ...mission.Status) *mission.Mission {
	var m *mission.Mission
	for _, status := range statuses {
		cmd, err := commands.NewUpdateMissionStatusCommand(missionID, status, "")
		s.Require().NoError(err)

		m, err = s.updateStatus.Handle(s.T().Context(), cmd)
		s.Require().NoError(err, "moving to %s", status)
	}
	return m
}

func (s *DispatchFlowSuite) report(missionID kernel.UUID, lat float64, battery float64) {
	cmd, err := commands.NewAppendTelemetryCommand(missionID, mission.Telemetry{
		Location:       kernel.MustLocation(lat, -74.0060),
		AltitudeM:      120,
		Heading:        0,
		SpeedKmh:       55,
		BatteryPercent: battery,
	})
	s.Require().NoError(err)

	_, err = s.appendSample.Handle(s.T().Context(), cmd)
	s.Require().NoError(err)
}

func (s *DispatchFlowSuite) storedDrone(id kernel.UUID) *drone.Drone {
	d, err := s.store.Create().DroneRepository().Get(s.T().Context(), id)
	s.Require().NoError(err)
	return d
}

func (s *DispatchFlowSuite) storedOrder(id kernel.UUID) *order.Order {
	o, err := s.store.Create().OrderRepository().Get(s.T().Context(), id)
	s.Require().NoError(err)
	return o
}

func (s *DispatchFlowSuite) emitted(channel, event string) int {
	count := 0
	for _, call := range s.notifier.Calls {
		if call.Method == "Emit" && call.Arguments.String(1) == channel && call.Arguments.String(2) == event {
			count++
		}
	}
	return count
}

func (s *DispatchFlowSuite) TestHappyPath() {
	ctx := s.T().Context()
	d := s.newDrone("DR-001", 100)
	o := s.newOrder(kernel.MustLocation(40.7308, -74.0060))

	m := s.dispatch(o, d)
	s.Equal(mission.Queued, m.Status())
	s.Equal(drone.Preparing, s.storedDrone(d.ID()).Status())
	s.Equal(order.InFlight, s.storedOrder(o.ID()).Status())

	s.advance(m.ID(), mission.Preparing, mission.Takeoff, mission.Cruising)
	s.Equal(drone.InFlight, s.storedDrone(d.ID()).Status())

	s.report(m.ID(), 40.7150, 95)
	s.report(m.ID(), 40.7230, 91)
	s.report(m.ID(), 40.7308, 88)

	s.advance(m.ID(), mission.Approaching, mission.Landing, mission.Delivered)
	s.Equal(order.Delivered, s.storedOrder(o.ID()).Status())
	s.Equal(drone.Returning, s.storedDrone(d.ID()).Status())

	s.advance(m.ID(), mission.Returning)
	s.report(m.ID(), 40.7128, 80)

	cmd, err := commands.NewCompleteMissionCommand(m.ID())
	s.Require().NoError(err)
	completed, err := s.completeFlight.Handle(ctx, cmd)
	s.Require().NoError(err)

	s.Equal(mission.Completed, completed.Status())
	path := completed.Path()
	s.Require().Len(path, 4)
	s.InDelta(path[0].BatteryPercent-path[len(path)-1].BatteryPercent, completed.Actuals().BatteryConsumption, 1e-9)
	s.InDelta(15.0, completed.Actuals().BatteryConsumption, 1e-9)
	s.Greater(completed.Actuals().DistanceKm, 3.5)
	s.Len(completed.Timeline(), 9)

	stored := s.storedDrone(d.ID())
	s.Equal(drone.Idle, stored.Status())
	s.Nil(stored.CurrentMissionID())
	s.InDelta(80.0, stored.BatteryPercent(), 1e-9)
	s.Equal(order.Delivered, s.storedOrder(o.ID()).Status())

	s.Equal(1, s.emitted(ports.ChannelMission, ports.EventMissionCompleted))
	s.Equal(4, s.emitted(ports.ChannelMission, ports.EventMissionTelemetry))
	s.Zero(s.emitted(ports.ChannelAlerts, ports.EventMissionCompleted))
}

func (s *DispatchFlowSuite) TestAbortWhileCruising() {
	d := s.newDrone("DR-001", 100)
	o := s.newOrder(kernel.MustLocation(40.7308, -74.0060))
	m := s.dispatch(o, d)

	s.advance(m.ID(), mission.Preparing, mission.Takeoff, mission.Cruising)
	s.report(m.ID(), 40.7200, 93)

	cmd, err := commands.NewAbortMissionCommand(m.ID(), "Customer cancelled", "CUSTOMER_CANCELLED", "")
	s.Require().NoError(err)
	aborted, err := s.abortFlight.Handle(s.T().Context(), cmd)
	s.Require().NoError(err)

	s.Equal(mission.Aborted, aborted.Status())
	failure := aborted.Failure()
	s.Require().NotNil(failure)
	s.Equal("Customer cancelled", failure.Reason)
	s.Equal("CUSTOMER_CANCELLED", failure.Code)
	s.Require().NotNil(failure.Location)
	s.InDelta(40.7200, failure.Location.Lat(), 1e-9)

	stored := s.storedDrone(d.ID())
	s.Equal(drone.Idle, stored.Status())
	s.Nil(stored.CurrentMissionID())

	storedOrder := s.storedOrder(o.ID())
	s.Equal(order.Failed, storedOrder.Status())
	history := storedOrder.History()
	s.Equal(commands.SystemActorID, history[len(history)-1].ActorID)
	s.Contains(history[len(history)-1].Note, m.Number())

	s.Equal(1, s.emitted(ports.ChannelAlerts, ports.EventMissionAborted))
}

func (s *DispatchFlowSuite) TestFailureDuringApproach() {
	d := s.newDrone("DR-001", 100)
	o := s.newOrder(kernel.MustLocation(40.7308, -74.0060))
	m := s.dispatch(o, d)
	s.advance(m.ID(), mission.Preparing, mission.Takeoff, mission.Cruising, mission.Approaching)

	location := kernel.MustLocation(40.7290, -74.0050)
	cmd, err := commands.NewFailMissionCommand(m.ID(), "Motor failure", "MOTOR_FAILURE", "rear left motor stalled", &location)
	s.Require().NoError(err)
	failed, err := s.failFlight.Handle(s.T().Context(), cmd)
	s.Require().NoError(err)

	s.Equal(mission.Failed, failed.Status())
	s.Equal("rear left motor stalled", failed.Failure().Description)
	s.Equal(drone.Idle, s.storedDrone(d.ID()).Status())
	s.Equal(order.Failed, s.storedOrder(o.ID()).Status())
	s.Equal(1, s.emitted(ports.ChannelAlerts, ports.EventMissionFailed))
}

func (s *DispatchFlowSuite) TestRangeExceededLeavesNoTrace() {
	d := s.newDrone("DR-001", 100)
	o := s.newOrder(kernel.MustLocation(40.8208, -74.0060))
	droneID := d.ID()

	cmd, err := commands.NewCreateMissionCommand(o.ID(), &droneID, "")
	s.Require().NoError(err)
	_, err = s.createMission.Handle(s.T().Context(), cmd)

	s.Require().ErrorIs(err, errs.ErrValidation)
	s.Equal(services.ReasonRangeExceeded, errs.ReasonOf(err))

	_, err = s.store.Create().MissionRepository().GetByOrderID(s.T().Context(), o.ID())
	s.Require().ErrorIs(err, errs.ErrObjectNotFound)
	stored := s.storedDrone(d.ID())
	s.Equal(drone.Idle, stored.Status())
	s.Nil(stored.CurrentMissionID())
	s.Equal(order.ReadyForPickup, s.storedOrder(o.ID()).Status())
}

func (s *DispatchFlowSuite) TestSecondMissionForOrderIsRejected() {
	o := s.newOrder(kernel.MustLocation(40.7308, -74.0060))
	s.dispatch(o, s.newDrone("DR-001", 100))

	spare := s.newDrone("DR-002", 100)
	spareID := spare.ID()
	cmd, err := commands.NewCreateMissionCommand(o.ID(), &spareID, "")
	s.Require().NoError(err)

	_, err = s.createMission.Handle(s.T().Context(), cmd)

	s.Require().ErrorIs(err, errs.ErrStateConflict)
	s.Equal(drone.Idle, s.storedDrone(spareID).Status())
}

func (s *DispatchFlowSuite) TestConcurrentMissionsForOneDrone() {
	d := s.newDrone("DR-001", 100)
	orders := []*order.Order{
		s.newOrder(kernel.MustLocation(40.7308, -74.0060)),
		s.newOrder(kernel.MustLocation(40.7200, -74.0000)),
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created []*mission.Mission
		failed  []error
	)
	for _, o := range orders {
		wg.Add(1)
		go func(o *order.Order) {
			defer wg.Done()
			droneID := d.ID()
			cmd, err := commands.NewCreateMissionCommand(o.ID(), &droneID, "")
			if err == nil {
				var m *mission.Mission
				m, err = s.createMission.Handle(s.T().Context(), cmd)
				if err == nil {
					mu.Lock()
					created = append(created, m)
					mu.Unlock()
					return
				}
			}
			mu.Lock()
			failed = append(failed, err)
			mu.Unlock()
		}(o)
	}
	wg.Wait()

	s.Require().Len(created, 1)
	s.Require().Len(failed, 1)
	s.ErrorIs(failed[0], errs.ErrStateConflict)

	stored := s.storedDrone(d.ID())
	s.Require().NotNil(stored.CurrentMissionID())
	s.Equal(created[0].ID(), *stored.CurrentMissionID())
}

func (s *DispatchFlowSuite) TestTelemetryAfterCompletionIsRejected() {
	d := s.newDrone("DR-001", 100)
	m := s.dispatch(s.newOrder(kernel.MustLocation(40.7308, -74.0060)), d)

	cmd, err := commands.NewAbortMissionCommand(m.ID(), "Weather", "WEATHER", "")
	s.Require().NoError(err)
	_, err = s.abortFlight.Handle(s.T().Context(), cmd)
	s.Require().NoError(err)

	sample, err := commands.NewAppendTelemetryCommand(m.ID(), mission.Telemetry{
		Location: dbtest.Restaurant, BatteryPercent: 90,
	})
	s.Require().NoError(err)
	_, err = s.appendSample.Handle(s.T().Context(), sample)
	s.Require().ErrorIs(err, errs.ErrStateConflict)
}

func (s *DispatchFlowSuite) TestIllegalTransitions() {
	d := s.newDrone("DR-001", 100)
	m := s.dispatch(s.newOrder(kernel.MustLocation(40.7308, -74.0060)), d)

	for _, status := range []mission.Status{mission.Completed, mission.Delivered, mission.Failed} {
		cmd, err := commands.NewUpdateMissionStatusCommand(m.ID(), status, "")
		s.Require().NoError(err)
		_, err = s.updateStatus.Handle(s.T().Context(), cmd)
		s.Require().ErrorIs(err, errs.ErrStateConflict, "QUEUED -> %s", status)
	}

	complete, err := commands.NewCompleteMissionCommand(m.ID())
	s.Require().NoError(err)
	_, err = s.completeFlight.Handle(s.T().Context(), complete)
	s.Require().ErrorIs(err, errs.ErrStateConflict)

	unknown, err := commands.NewCompleteMissionCommand(kernel.NewUUID())
	s.Require().NoError(err)
	_, err = s.completeFlight.Handle(s.T().Context(), unknown)
	s.Require().ErrorIs(err, errs.ErrObjectNotFound)

	s.Equal(drone.Preparing, s.storedDrone(d.ID()).Status())
}

func (s *DispatchFlowSuite) TestReservedDroneCannotBeTakenOutOfService() {
	d := s.newDrone("DR-001", 100)
	s.dispatch(s.newOrder(kernel.MustLocation(40.7308, -74.0060)), d)

	cmd, err := commands.NewSetDroneStatusCommand(d.ID(), drone.Maintenance, drone.Warning)
	s.Require().NoError(err)
	_, err = s.setStatus.Handle(s.T().Context(), cmd)
	s.Require().ErrorIs(err, errs.ErrStateConflict)

	spare := s.newDrone("DR-002", 100)
	cmd, err = commands.NewSetDroneStatusCommand(spare.ID(), drone.Maintenance, drone.Warning)
	s.Require().NoError(err)
	updated, err := s.setStatus.Handle(s.T().Context(), cmd)
	s.Require().NoError(err)
	s.Equal(drone.Maintenance, updated.Status())
	s.Equal(2, s.emitted(ports.ChannelDrone, ports.EventDroneUpdated), "reservation and maintenance switch")
}

func (s *DispatchFlowSuite) TestOrderStatusUpdates() {
	o := s.newOrder(kernel.MustLocation(40.7308, -74.0060))

	cmd, err := commands.NewUpdateOrderStatusCommand(o.ID(), order.Cancelled, "customer", "changed mind")
	s.Require().NoError(err)
	cancelled, err := s.updateOrder.Handle(s.T().Context(), cmd)
	s.Require().NoError(err)
	s.Equal(order.Cancelled, cancelled.Status())
	s.Equal(order.Cancelled, s.storedOrder(o.ID()).Status())

	again, err := s.updateOrder.Handle(s.T().Context(), cmd)
	s.Require().NoError(err, "repeating the current status is a no-op")
	s.Len(again.History(), 2)

	cmd, err = commands.NewUpdateOrderStatusCommand(o.ID(), order.Preparing, "restaurant-staff", "")
	s.Require().NoError(err)
	_, err = s.updateOrder.Handle(s.T().Context(), cmd)
	s.Require().ErrorIs(err, errs.ErrStateConflict)

	register, err := commands.NewRegisterOrderCommand(o.ID(), s.restaurantID, kernel.NewUUID(),
		o.Items(), dbtest.Restaurant, nil, order.Pending, "")
	s.Require().NoError(err)
	_, err = s.registerOrder.Handle(s.T().Context(), register)
	s.Require().ErrorIs(err, errs.ErrStateConflict)
}
