package kernel

import (
	"errors"
	"math"

	"dronedispatch/internal/pkg/errs"
	"dronedispatch/internal/pkg/guard"
)

// MaxHeading is the exclusive upper bound of a heading in degrees.
const MaxHeading = 360.0

// ErrPositionIsNotConstructed is returned when a zero Position reaches code that
// expects a validated one.
var ErrPositionIsNotConstructed = errs.NewValueIsRequiredError("position must be created via NewPosition")

// Position is where a drone is: a location, altitude above ground in meters,
// and heading in degrees within [0, 360).
//
// Drones report positions in telemetry and in location updates. Like Location,
// Position is an immutable value object and its zero value fails Validate.
//
// Example:
//
//	pos, err := kernel.NewPosition(kernel.MustLocation(40.7128, -74.0060), 80, 270)
//	if err != nil {
//	    // Handle validation error
//	}
//	fmt.Println(pos.Altitude()) // 80
type Position struct {
	location Location
	altitude float64
	heading  float64
	guard    guard.ConstructorGuard
}

// NewPosition validates and combines a location, altitude and heading.
//
// Parameters:
//   - location: a constructed Location
//   - altitude: meters above ground, not negative
//   - heading: degrees clockwise from north, within [0, MaxHeading)
//
// Returns:
//   - Position: a valid position
//   - error: the location's validation error, or the joined altitude and heading errors
func NewPosition(location Location, altitude, heading float64) (Position, error) {
	if err := location.Validate(); err != nil {
		return Position{}, err
	}

	var errList []error
	if altitude < 0 || math.IsNaN(altitude) {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("altitude", errors.New("must not be negative")))
	}
	if heading < 0 || heading >= MaxHeading || math.IsNaN(heading) {
		errList = append(errList, errs.NewValueIsOutOfRangeError("heading", heading, 0, MaxHeading))
	}
	if err := errors.Join(errList...); err != nil {
		return Position{}, err
	}

	return Position{
		location: location,
		altitude: altitude,
		heading:  heading,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

// PositionAt is a ground-level position with heading 0.
func PositionAt(location Location) (Position, error) {
	return NewPosition(location, 0, 0)
}

// Validate reports ErrPositionIsNotConstructed for the zero value.
func (p Position) Validate() error {
	return p.guard.Validate(ErrPositionIsNotConstructed)
}

// Location returns the horizontal part of the position.
func (p Position) Location() Location {
	return p.location
}

// Altitude returns the height above ground in meters.
func (p Position) Altitude() float64 {
	return p.altitude
}

// Heading returns the course in degrees clockwise from north.
func (p Position) Heading() float64 {
	return p.heading
}
