package commands

import (
	"context"

	"dronedispatch/internal/core/domain/model/drone"
	"dronedispatch/internal/core/ports"
)

// SetDroneStatusCommandHandler changes the operational status of an unreserved
// drone. Statuses that only a mission can set are rejected.
type SetDroneStatusCommandHandler struct {
	uowFactory DroneUoWFactory
	publisher  *Publisher
}

// NewSetDroneStatusCommandHandler creates a handler for set drone status requests.
func NewSetDroneStatusCommandHandler(uowFactory DroneUoWFactory, publisher *Publisher) SetDroneStatusCommandHandler {
	return SetDroneStatusCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
	}
}

// Handle applies the operator status. Reserved drones reject the change.
func (h SetDroneStatusCommandHandler) Handle(ctx context.Context, command SetDroneStatusCommand) (*drone.Drone, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	d, err := applyDroneChange(ctx, h.uowFactory, command.DroneID(), func(d *drone.Drone) error {
		return d.SetOperationalStatus(command.Status(), command.Health())
	})
	if err != nil {
		return nil, err
	}

	h.publisher.Emit(ctx, ports.ChannelDrone, ports.EventDroneUpdated, newDroneEvent(d))
	return d, nil
}
