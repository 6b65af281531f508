package commands

import (
	"context"
	"time"

	"dronedispatch/internal/core/domain/model/mission"
	"dronedispatch/internal/core/ports"
)

// AppendTelemetryCommandHandler appends a path point to a mission and mirrors
// position and battery onto the drone serving it. Terminal missions reject
// telemetry with a StateConflictError.
type AppendTelemetryCommandHandler struct {
	uowFactory UoWFactory
	publisher  *Publisher
}

// NewAppendTelemetryCommandHandler creates a handler for append telemetry requests.
func NewAppendTelemetryCommandHandler(uowFactory UoWFactory, publisher *Publisher) AppendTelemetryCommandHandler {
	return AppendTelemetryCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
	}
}

// Handle stores the sample and mirrors it on the drone. The sample is archived
// and broadcast after commit; archive failures are only logged.
//
// Business rules:
//   - Terminal missions reject the sample with a StateConflictError.
//   - The travelled distance grows by the great circle distance to the previous point.
//   - Drone position and battery follow the sample in the same transaction.
//
// State changes:
//   - The cached mission view is invalidated.
//   - mission.telemetry goes to the mission and restaurant channels.
//   - The sample is written to the telemetry archive.
func (h AppendTelemetryCommandHandler) Handle(ctx context.Context, command AppendTelemetryCommand) (*mission.Mission, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	var (
		m     *mission.Mission
		point mission.PathPoint
	)
	err := retryOnStaleVersion(ctx, func() error {
		var err error
		m, point, err = h.append(ctx, command)
		return err
	})
	if err != nil {
		return nil, err
	}

	h.publisher.InvalidateMission(ctx, m.ID())
	event := newTelemetryEvent(m, point)
	h.publisher.Emit(ctx, ports.ChannelMission, ports.EventMissionTelemetry, event)
	h.publisher.Emit(ctx, ports.ChannelRestaurant, ports.EventMissionTelemetry, event)
	h.publisher.Archive(ctx, ports.TelemetryRecord{
		MissionID:     m.ID(),
		MissionNumber: m.Number(),
		DroneID:       m.DroneID(),
		RestaurantID:  m.RestaurantID(),
		Point:         point,
	})

	return m, nil
}

// append stores the point and mirrors it on the drone in one transaction.
func (h AppendTelemetryCommandHandler) append(
	ctx context.Context,
	command AppendTelemetryCommand,
) (*mission.Mission, mission.PathPoint, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, mission.PathPoint{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	m, err := uow.MissionRepository().Get(ctx, command.MissionID())
	if err != nil {
		return nil, mission.PathPoint{}, err
	}

	point, err := m.AddPathPoint(command.Sample(), time.Now().UTC())
	if err != nil {
		return nil, mission.PathPoint{}, err
	}
	if err = uow.MissionRepository().Update(ctx, m); err != nil {
		return nil, mission.PathPoint{}, err
	}

	d, err := uow.DroneRepository().Get(ctx, m.DroneID())
	if err != nil {
		return nil, mission.PathPoint{}, err
	}
	position, err := point.Position()
	if err != nil {
		return nil, mission.PathPoint{}, err
	}
	if err = d.RecordTelemetry(position, point.BatteryPercent); err != nil {
		return nil, mission.PathPoint{}, err
	}
	if err = uow.DroneRepository().Update(ctx, d); err != nil {
		return nil, mission.PathPoint{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, mission.PathPoint{}, err
	}

	return m, point, nil
}
