package commands

import (
	"errors"
	"strings"

	"dronedispatch/internal/core/domain/geo"
	"dronedispatch/internal/core/domain/model/drone"
	"dronedispatch/internal/core/domain/model/kernel"
	"dronedispatch/internal/pkg/errs"
	"dronedispatch/internal/pkg/guard"
)

var ErrRegisterDroneCommandIsNotConstructed = errors.New(
	"RegisterDroneCommand must be created via NewRegisterDroneCommand constructor",
)

// RegisterDroneCommand adds a drone to a restaurant's fleet.
type RegisterDroneCommand struct { //nolint:recvcheck //using for validation
	restaurantID   kernel.UUID
	serial         string
	model          string
	specs          drone.Specs
	position       kernel.Position
	batteryPercent float64
	geofence       *geo.Geofence

	guard guard.ConstructorGuard
}

// NewRegisterDroneCommand creates a command to register a drone.
//
// Parameters:
//   - restaurantID: the restaurant the drone is based at
//   - serial: unique airframe serial, surrounding spaces trimmed
//   - model: free form model name, may be empty
//   - specs: payload, range and speed limits, all positive
//   - position: the drone's parked position
//   - batteryPercent: current level in [0, 100]
//   - geofence: nil for an unrestricted drone
//
// Returns all validation errors joined.
func NewRegisterDroneCommand(
	restaurantID kernel.UUID,
	serial string,
	model string,
	specs drone.Specs,
	position kernel.Position,
	batteryPercent float64,
	geofence *geo.Geofence,
) (RegisterDroneCommand, error) {
	c := RegisterDroneCommand{
		model:          strings.TrimSpace(model),
		specs:          specs,
		batteryPercent: batteryPercent,
		guard:          guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		c.setRestaurantID(restaurantID),
		c.setSerial(serial),
		c.setPosition(position),
	); err != nil {
		return RegisterDroneCommand{}, err
	}

	if geofence != nil {
		fence := *geofence
		c.geofence = &fence
	}
	return c, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrRegisterDroneCommandIsNotConstructed if validation fails.
func (c RegisterDroneCommand) Validate() error {
	return c.guard.Validate(ErrRegisterDroneCommandIsNotConstructed)
}

// RestaurantID returns the owning restaurant.
func (c RegisterDroneCommand) RestaurantID() kernel.UUID {
	return c.restaurantID
}

// Serial returns the unique airframe serial number.
func (c RegisterDroneCommand) Serial() string {
	return c.serial
}

// Model returns the airframe model name.
func (c RegisterDroneCommand) Model() string {
	return c.model
}

// Specs returns the payload, range and speed limits.
func (c RegisterDroneCommand) Specs() drone.Specs {
	return c.specs
}

// Position returns the reported position.
func (c RegisterDroneCommand) Position() kernel.Position {
	return c.position
}

// BatteryPercent returns the battery level in percent.
func (c RegisterDroneCommand) BatteryPercent() float64 {
	return c.batteryPercent
}

// Geofence returns the operating area, nil when unrestricted.
func (c RegisterDroneCommand) Geofence() *geo.Geofence {
	if c.geofence == nil {
		return nil
	}
	fence := *c.geofence
	return &fence
}

func (c *RegisterDroneCommand) setRestaurantID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.restaurantID = id
	return nil
}

func (c *RegisterDroneCommand) setSerial(serial string) error {
	serial = strings.TrimSpace(serial)
	if serial == "" {
		return errs.NewValueIsRequiredError("serial")
	}
	c.serial = serial
	return nil
}

func (c *RegisterDroneCommand) setPosition(position kernel.Position) error {
	if err := position.Validate(); err != nil {
		return err
	}
	c.position = position
	return nil
}
