package commands

import (
	"errors"

	"dronedispatch/internal/core/domain/model/kernel"
	"dronedispatch/internal/pkg/guard"
)

var ErrUpdateDroneLocationCommandIsNotConstructed = errors.New(
	"UpdateDroneLocationCommand must be created via NewUpdateDroneLocationCommand constructor",
)

// UpdateDroneLocationCommand reports where a drone is while it is not flying a mission.
type UpdateDroneLocationCommand struct {
	droneID  kernel.UUID
	position kernel.Position

	guard guard.ConstructorGuard
}

// NewUpdateDroneLocationCommand validates the input and creates the command.
// Returns a validation error for invalid input.
func NewUpdateDroneLocationCommand(droneID kernel.UUID, position kernel.Position) (UpdateDroneLocationCommand, error) {
	if err := errors.Join(droneID.Validate(), position.Validate()); err != nil {
		return UpdateDroneLocationCommand{}, err
	}

	return UpdateDroneLocationCommand{
		droneID:  droneID,
		position: position,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrUpdateDroneLocationCommandIsNotConstructed if validation fails.
func (c UpdateDroneLocationCommand) Validate() error {
	return c.guard.Validate(ErrUpdateDroneLocationCommandIsNotConstructed)
}

func (c UpdateDroneLocationCommand) DroneID() kernel.UUID {
	return c.droneID
}

// Position is the reported position, including altitude and heading.
func (c UpdateDroneLocationCommand) Position() kernel.Position {
	return c.position
}
