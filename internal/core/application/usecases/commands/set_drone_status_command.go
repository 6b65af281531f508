package commands

import (
	"errors"

	"dronedispatch/internal/core/domain/model/drone"
	"dronedispatch/internal/core/domain/model/kernel"
	"dronedispatch/internal/pkg/guard"
)

var ErrSetDroneStatusCommandIsNotConstructed = errors.New(
	"SetDroneStatusCommand must be created via NewSetDroneStatusCommand constructor",
)

// SetDroneStatusCommand takes a drone in or out of service, e.g. for charging or
// maintenance.
type SetDroneStatusCommand struct {
	droneID kernel.UUID
	status  drone.Status
	health  drone.Health

	guard guard.ConstructorGuard
}

// NewSetDroneStatusCommand validates the input and creates the command.
// Returns a validation error for invalid input.
func NewSetDroneStatusCommand(droneID kernel.UUID, status drone.Status, health drone.Health) (SetDroneStatusCommand, error) {
	if err := errors.Join(droneID.Validate(), status.Validate(), health.Validate()); err != nil {
		return SetDroneStatusCommand{}, err
	}

	return SetDroneStatusCommand{
		droneID: droneID,
		status:  status,
		health:  health,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrSetDroneStatusCommandIsNotConstructed if validation fails.
func (c SetDroneStatusCommand) Validate() error {
	return c.guard.Validate(ErrSetDroneStatusCommandIsNotConstructed)
}

// DroneID returns the identifier of the target drone.
func (c SetDroneStatusCommand) DroneID() kernel.UUID {
	return c.droneID
}

// Status returns the requested status.
func (c SetDroneStatusCommand) Status() drone.Status {
	return c.status
}

// Health returns the reported health.
func (c SetDroneStatusCommand) Health() drone.Health {
	return c.health
}
