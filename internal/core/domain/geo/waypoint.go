package geo

import (
	"fmt"

	"dronedispatch/internal/core/domain/model/kernel"
	"dronedispatch/internal/pkg/errs"
)

// WaypointAction is what the drone does when it reaches a waypoint.
type WaypointAction string

const (
	ActionTakeoff  WaypointAction = "TAKEOFF"
	ActionCruising WaypointAction = "CRUISING"
	ActionLanding  WaypointAction = "LANDING"
)

// Validate checks that a is one of the defined actions.
func (a WaypointAction) Validate() error {
	switch a {
	case ActionTakeoff, ActionCruising, ActionLanding:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("action", fmt.Errorf("%q is not a waypoint action", string(a)))
	}
}

// Waypoint is a planned point of a route, as opposed to a reported telemetry point.
type Waypoint struct {
	// Location is the interpolated point.
	Location kernel.Location
	// AltitudeM is the cruise altitude in meters.
	AltitudeM float64
	// Action tells the autopilot what to do at this point.
	Action WaypointAction
}

// GenerateWaypoints interpolates latitude and longitude linearly between start and
// end over segments legs, yielding segments+1 waypoints at altitudeM. The first is
// a TAKEOFF, the last a LANDING and every other one CRUISING. A non-positive
// segments falls back to DefaultWaypointSegments.
//
// Linear interpolation is accurate enough for the short legs a delivery drone
// flies; the great-circle path differs by meters over 10km.
//
// Example:
//
//	waypoints := geo.GenerateWaypoints(restaurant, customer, 5, 100)
//	// len(waypoints) == 6, waypoints[0].Action == geo.ActionTakeoff
func GenerateWaypoints(start, end kernel.Location, segments int, altitudeM float64) []Waypoint {
	if segments <= 0 {
		segments = DefaultWaypointSegments
	}

	waypoints := make([]Waypoint, 0, segments+1)
	for i := 0; i <= segments; i++ {
		fraction := float64(i) / float64(segments)
		lat := start.Lat() + (end.Lat()-start.Lat())*fraction
		lng := start.Lng() + (end.Lng()-start.Lng())*fraction

		action := ActionCruising
		switch i {
		case 0:
			action = ActionTakeoff
		case segments:
			action = ActionLanding
		}

		waypoints = append(waypoints, Waypoint{
			Location:  clampLocation(lat, lng),
			AltitudeM: altitudeM,
			Action:    action,
		})
	}

	return waypoints
}
