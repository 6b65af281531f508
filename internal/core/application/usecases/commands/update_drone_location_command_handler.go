package commands

import (
	"context"

	"dronedispatch/internal/core/domain/model/drone"
	"dronedispatch/internal/core/ports"
)

// UpdateDroneLocationCommandHandler stores a reported position. A position
// outside the drone's geofence is rejected with a ValidationError and nothing
// is written.
type UpdateDroneLocationCommandHandler struct {
	uowFactory DroneUoWFactory
	publisher  *Publisher
}

// NewUpdateDroneLocationCommandHandler creates a handler for update drone location requests.
func NewUpdateDroneLocationCommandHandler(uowFactory DroneUoWFactory, publisher *Publisher) UpdateDroneLocationCommandHandler {
	return UpdateDroneLocationCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
	}
}

// Handle stores the position and broadcasts the updated drone. A write that
// lost to a concurrent update is reloaded and applied again.
func (h UpdateDroneLocationCommandHandler) Handle(ctx context.Context, command UpdateDroneLocationCommand) (*drone.Drone, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	d, err := applyDroneChange(ctx, h.uowFactory, command.DroneID(), func(d *drone.Drone) error {
		return d.UpdateLocation(command.Position())
	})
	if err != nil {
		return nil, err
	}

	h.publisher.Emit(ctx, ports.ChannelDrone, ports.EventDroneUpdated, newDroneEvent(d))
	return d, nil
}
