package commands

import (
	"context"

	"dronedispatch/internal/core/domain/model/drone"
	"dronedispatch/internal/core/domain/model/kernel"
	"dronedispatch/internal/core/ports"
)

// RegisterDroneCommandHandler creates an IDLE, HEALTHY drone. Specs, battery and
// the geofence are checked by the drone itself; a serial already in the fleet is
// a StateConflictError.
type RegisterDroneCommandHandler struct {
	uowFactory DroneUoWFactory
	publisher  *Publisher
}

// NewRegisterDroneCommandHandler creates a handler for register drone requests.
func NewRegisterDroneCommandHandler(uowFactory DroneUoWFactory, publisher *Publisher) RegisterDroneCommandHandler {
	return RegisterDroneCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
	}
}

// Handle registers the drone. A serial already in use is a StateConflictError.
func (h RegisterDroneCommandHandler) Handle(ctx context.Context, command RegisterDroneCommand) (*drone.Drone, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	d, err := drone.NewDrone(
		kernel.NewUUID(),
		command.RestaurantID(),
		command.Serial(),
		command.Model(),
		command.Specs(),
		command.Position(),
		command.BatteryPercent(),
		command.Geofence(),
	)
	if err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	// The unique index on serial turns a duplicate into a StateConflictError.
	if err = uow.DroneRepository().Add(ctx, d); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.publisher.Emit(ctx, ports.ChannelDrone, ports.EventDroneRegistered, newDroneEvent(d))
	return d, nil
}
