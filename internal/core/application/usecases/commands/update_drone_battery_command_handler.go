package commands

import (
	"context"

	"dronedispatch/internal/core/domain/model/drone"
	"dronedispatch/internal/core/ports"
)

// UpdateDroneBatteryCommandHandler stores battery readings sent by drones while
// they are parked or charging.
type UpdateDroneBatteryCommandHandler struct {
	uowFactory DroneUoWFactory
	publisher  *Publisher
}

// NewUpdateDroneBatteryCommandHandler creates a handler for update drone battery requests.
func NewUpdateDroneBatteryCommandHandler(uowFactory DroneUoWFactory, publisher *Publisher) UpdateDroneBatteryCommandHandler {
	return UpdateDroneBatteryCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
	}
}

// Handle records the reading and broadcasts the updated drone.
func (h UpdateDroneBatteryCommandHandler) Handle(ctx context.Context, command UpdateDroneBatteryCommand) (*drone.Drone, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	d, err := applyDroneChange(ctx, h.uowFactory, command.DroneID(), func(d *drone.Drone) error {
		return d.UpdateBattery(command.BatteryPercent())
	})
	if err != nil {
		return nil, err
	}

	h.publisher.Emit(ctx, ports.ChannelDrone, ports.EventDroneUpdated, newDroneEvent(d))
	return d, nil
}
