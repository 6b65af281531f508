package kernel

import (
	"errors"
	"fmt"
	"math"

	"dronedispatch/internal/pkg/errs"
	"dronedispatch/internal/pkg/guard"
)

// Coordinate bounds of a Location, in decimal degrees.
const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

// ErrLocationIsNotConstructed is returned when a zero Location reaches code that
// expects a validated one. Locations must be created with NewLocation.
var ErrLocationIsNotConstructed = errs.NewValueIsRequiredError("location must be created via NewLocation")

// Location is a WGS84 coordinate in decimal degrees.
// Location is an immutable value object: latitude is always within
// [MinLatitude..MaxLatitude] and longitude within [MinLongitude..MaxLongitude].
// The zero value fails Validate, so a Location that skipped the constructor is
// caught as soon as an aggregate receives it.
//
// Example:
//
//	loc, err := kernel.NewLocation(40.7128, -74.0060)
//	if err != nil {
//	    // Handle validation error
//	}
//	fmt.Println(loc) // Location(40.712800,-74.006000)
type Location struct { //nolint:recvcheck //using for validation
	lat   float64
	lng   float64
	guard guard.ConstructorGuard
}

// NewLocation creates a Location from latitude and longitude.
//
// Parameters:
//   - lat: latitude in degrees, between MinLatitude and MaxLatitude inclusive
//   - lng: longitude in degrees, between MinLongitude and MaxLongitude inclusive
//
// Returns:
//   - Location: a valid location
//   - error: ValueIsOutOfRangeError for each coordinate out of bounds or NaN,
//     joined when both are wrong
//
// Example:
//
//	pickup, err := kernel.NewLocation(40.7128, -74.0060)
//	if err != nil {
//	    return err
//	}
func NewLocation(lat, lng float64) (Location, error) {
	loc := Location{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(loc.setLat(lat), loc.setLng(lng)); err != nil {
		return Location{}, err
	}

	return loc, nil
}

// MustLocation panics on invalid input. Only for literals in tests and fixtures.
func MustLocation(lat, lng float64) Location {
	loc, err := NewLocation(lat, lng)
	if err != nil {
		panic(err)
	}
	return loc
}

// Validate reports ErrLocationIsNotConstructed for the zero value.
func (l Location) Validate() error {
	return l.guard.Validate(ErrLocationIsNotConstructed)
}

// Lat returns the latitude in decimal degrees.
func (l Location) Lat() float64 {
	return l.lat
}

// Lng returns the longitude in decimal degrees.
func (l Location) Lng() float64 {
	return l.lng
}

// String formats the location with six decimals, roughly 10 cm of precision.
func (l Location) String() string {
	return fmt.Sprintf("Location(%.6f,%.6f)", l.lat, l.lng)
}

// IsEqual reports whether both locations hold exactly the same coordinates.
// It fails when either location was not constructed.
func (l Location) IsEqual(other Location) (bool, error) {
	if err := errors.Join(l.Validate(), other.Validate()); err != nil {
		return false, err
	}

	return l == other, nil
}

// setLat sets the latitude with validation.
// This is an internal setter used during location construction.
func (l *Location) setLat(lat float64) error {
	if lat < MinLatitude || lat > MaxLatitude || math.IsNaN(lat) {
		return errs.NewValueIsOutOfRangeError("lat", lat, MinLatitude, MaxLatitude)
	}

	l.lat = lat
	return nil
}

// setLng sets the longitude with validation.
// This is an internal setter used during location construction.
func (l *Location) setLng(lng float64) error {
	if lng < MinLongitude || lng > MaxLongitude || math.IsNaN(lng) {
		return errs.NewValueIsOutOfRangeError("lng", lng, MinLongitude, MaxLongitude)
	}

	l.lng = lng
	return nil
}
