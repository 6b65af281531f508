package mission

import (
	"errors"

	"dronedispatch/internal/core/domain/geo"
	"dronedispatch/internal/core/domain/model/kernel"
	"dronedispatch/internal/pkg/errs"
	"dronedispatch/internal/pkg/guard"
)

// ErrPlanIsNotConstructed is returned when a zero Plan is used to create a mission.
var ErrPlanIsNotConstructed = errs.NewValueIsRequiredError("plan must be created via NewPlan")

// Route is the planned flight path from the restaurant to the customer.
type Route struct {
	// Pickup is the restaurant location.
	Pickup kernel.Location
	// Delivery is the customer location.
	Delivery kernel.Location
	// Waypoints run from pickup to delivery, both ends included.
	Waypoints []geo.Waypoint
}

// Estimates are the planner's predictions for the flight.
// EtaMinutes already includes the buffer; BatteryConsumption is in percent.
type Estimates struct {
	// DistanceKm is the great circle distance from restaurant to customer.
	DistanceKm float64
	// EtaMinutes is the outbound flight time plus the ETA buffer.
	EtaMinutes int
	// BatteryConsumption is the estimated drain of that distance with the payload.
	BatteryConsumption int
}

// Parameters are the inputs the plan was computed with.
type Parameters struct {
	// PayloadGrams is the total weight of the order items.
	PayloadGrams int
	// CruiseAltitudeM is the altitude of the cruise waypoints.
	CruiseAltitudeM float64
	// SpeedKmh is the drone's rated speed.
	SpeedKmh float64
	// BatteryRequired is the estimated consumption plus the reserve.
	BatteryRequired int
}

// Plan is a feasible flight plan for one (order, drone) pairing.
//
// Plans are produced by the mission planner and consumed by NewMission. They
// are values: copying a Plan is safe and the waypoints are never shared.
//
// Example:
//
//	plan, err := planner.Plan(o, d)
//	if err != nil {
//	    return err
//	}
//	m, err := mission.NewMission(kernel.NewUUID(), number, o.ID(), o.RestaurantID(), d.ID(), plan, now)
type Plan struct {
	route      Route
	estimates  Estimates
	parameters Parameters
	guard      guard.ConstructorGuard
}

// NewPlan validates and freezes a flight plan.
//
// Parameters:
//   - route: pickup and delivery must be valid locations with at least two waypoints
//   - estimates: planner predictions
//   - parameters: planner inputs
//
// Returns:
//   - Plan: an immutable plan, its waypoints copied from route
//   - error: a validation error for an invalid location or too few waypoints
func NewPlan(route Route, estimates Estimates, parameters Parameters) (Plan, error) {
	if err := errors.Join(route.Pickup.Validate(), route.Delivery.Validate()); err != nil {
		return Plan{}, err
	}
	if len(route.Waypoints) < 2 {
		return Plan{}, errs.NewValueIsRequiredError("waypoints")
	}

	route.Waypoints = append([]geo.Waypoint(nil), route.Waypoints...)
	return Plan{
		route:      route,
		estimates:  estimates,
		parameters: parameters,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

// Validate checks that the plan was created through NewPlan.
func (p Plan) Validate() error {
	return p.guard.Validate(ErrPlanIsNotConstructed)
}

// Route returns a copy of the planned route.
func (p Plan) Route() Route {
	r := p.route
	r.Waypoints = append([]geo.Waypoint(nil), p.route.Waypoints...)
	return r
}

// Estimates are the planner figures copied onto the mission.
func (p Plan) Estimates() Estimates {
	return p.estimates
}

// Parameters are the flight parameters chosen for the mission.
func (p Plan) Parameters() Parameters {
	return p.parameters
}
