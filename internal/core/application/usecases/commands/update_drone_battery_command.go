package commands

import (
	"errors"
	"math"

	"dronedispatch/internal/core/domain/model/kernel"
	"dronedispatch/internal/pkg/errs"
	"dronedispatch/internal/pkg/guard"
)

var ErrUpdateDroneBatteryCommandIsNotConstructed = errors.New(
	"UpdateDroneBatteryCommand must be created via NewUpdateDroneBatteryCommand constructor",
)

// UpdateDroneBatteryCommand reports a battery reading. Readings outside 0..100
// are clamped by the drone.
type UpdateDroneBatteryCommand struct {
	droneID        kernel.UUID
	batteryPercent float64

	guard guard.ConstructorGuard
}

// NewUpdateDroneBatteryCommand creates a command for a battery reading.
func NewUpdateDroneBatteryCommand(droneID kernel.UUID, batteryPercent float64) (UpdateDroneBatteryCommand, error) {
	if err := droneID.Validate(); err != nil {
		return UpdateDroneBatteryCommand{}, err
	}
	if math.IsNaN(batteryPercent) || math.IsInf(batteryPercent, 0) {
		return UpdateDroneBatteryCommand{}, errs.NewValueIsInvalidError("batteryPercent")
	}

	return UpdateDroneBatteryCommand{
		droneID:        droneID,
		batteryPercent: batteryPercent,
		guard:          guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrUpdateDroneBatteryCommandIsNotConstructed if validation fails.
func (c UpdateDroneBatteryCommand) Validate() error {
	return c.guard.Validate(ErrUpdateDroneBatteryCommandIsNotConstructed)
}

// DroneID returns the identifier of the target drone.
func (c UpdateDroneBatteryCommand) DroneID() kernel.UUID {
	return c.droneID
}

// BatteryPercent returns the battery level in percent.
func (c UpdateDroneBatteryCommand) BatteryPercent() float64 {
	return c.batteryPercent
}
