package services

import (
	"fmt"
	"strings"

	"dronedispatch/internal/core/domain/geo"
	"dronedispatch/internal/core/domain/model/drone"
	"dronedispatch/internal/core/domain/model/mission"
	"dronedispatch/internal/core/domain/model/order"
	"dronedispatch/internal/pkg/errs"
)

// Rejection reasons of MissionPlanner.Plan, in check order.
const (
	ReasonOrderNotReady           = "ORDER_NOT_READY"
	ReasonDeliveryLocationMissing = "DELIVERY_LOCATION_MISSING"
	ReasonOrderHasNoItems         = "ORDER_HAS_NO_ITEMS"
	ReasonDroneNotInRestaurant    = "DRONE_NOT_IN_RESTAURANT"
	ReasonPayloadExceeded         = "PAYLOAD_EXCEEDED"
	ReasonRangeExceeded           = "RANGE_EXCEEDED"
	ReasonDeliveryOutsideGeofence = "DELIVERY_OUTSIDE_GEOFENCE"
	ReasonBatteryReserveShortfall = "BATTERY_RESERVE_SHORTFALL"
)

// MissionPlanner decides whether a drone can carry an order and computes the
// flight plan.
//
// Checks run in a fixed order and the first failure is returned:
//  1. the order is READY_FOR_PICKUP, has a delivery location and weighted items
//  2. the drone belongs to the order's restaurant
//  3. the drone is eligible (idle, charged, healthy, unreserved)
//  4. the order weight fits the drone payload
//  5. the delivery location is within drone range of the restaurant
//  6. the delivery location is inside the drone geofence
//  7. the battery covers the estimated consumption plus the reserve
//
// Rejections are ValidationErrors with a reason code and the offending values,
// except a reserved drone which is a StateConflictError. Plan never mutates its inputs.
type MissionPlanner struct {
	policy PlannerPolicy
}

// NewMissionPlanner creates a planner. Zero policy fields take their defaults.
//
// Example:
//
//	planner := services.NewMissionPlanner(services.PlannerPolicy{BatteryReservePercent: 25})
//	plan, err := planner.Plan(o, d)
func NewMissionPlanner(policy PlannerPolicy) MissionPlanner {
	return MissionPlanner{policy: policy.withDefaults()}
}

// Policy returns the effective policy, defaults applied.
func (p MissionPlanner) Policy() PlannerPolicy {
	return p.policy
}

// Plan runs the checks listed on MissionPlanner and, when all pass, builds
// waypoints and estimates for the restaurant to delivery leg.
//
// Parameters:
//   - o: the order to deliver
//   - d: the candidate drone
//
// Returns:
//   - mission.Plan: route, estimates and the parameters used
//   - error: the first failed check
//
// Estimates:
//   - distance is the haversine distance from restaurant to delivery
//   - battery consumption follows geo.EstimateBatteryConsumption with the policy
//     efficiency; the battery required adds the policy reserve
//   - ETA is the flight time at the drone's cruise speed plus the policy buffer
//
// Example:
//
//	planner := services.NewMissionPlanner(services.DefaultPlannerPolicy())
//	plan, err := planner.Plan(o, d)
//	if reason := errs.ReasonOf(err); reason == services.ReasonBatteryReserveShortfall {
//	    // Pick another drone or wait for charging
//	}
func (p MissionPlanner) Plan(o *order.Order, d *drone.Drone) (mission.Plan, error) {
	if err := o.Validate(); err != nil {
		return mission.Plan{}, err
	}
	if err := d.Validate(); err != nil {
		return mission.Plan{}, err
	}

	if err := checkOrderReady(o); err != nil {
		return mission.Plan{}, err
	}

	if !d.RestaurantID().IsEqual(o.RestaurantID()) {
		return mission.Plan{}, rejection(ReasonDroneNotInRestaurant,
			fmt.Sprintf("drone %s does not belong to the restaurant of order %s", d.Serial(), o.ID()),
			map[string]any{"droneId": d.ID().String(), "restaurantId": o.RestaurantID().String()})
	}

	if err := d.CheckEligibility(); err != nil {
		return mission.Plan{}, err
	}

	weight := o.TotalWeightGrams()
	if weight > d.Specs().PayloadMaxGrams {
		return mission.Plan{}, rejection(ReasonPayloadExceeded,
			fmt.Sprintf("order weight %dg exceeds drone payload limit %dg", weight, d.Specs().PayloadMaxGrams),
			map[string]any{"weightGrams": weight, "payloadMaxGrams": d.Specs().PayloadMaxGrams})
	}

	pickup := o.RestaurantLocation()
	delivery := *o.DeliveryLocation()
	distance := geo.DistanceKm(pickup, delivery)
	if distance > d.Specs().RangeKm {
		return mission.Plan{}, rejection(ReasonRangeExceeded,
			fmt.Sprintf("delivery location %skm exceeds drone range %skm", formatNumber(distance), formatNumber(d.Specs().RangeKm)),
			map[string]any{"distanceKm": distance, "rangeKm": d.Specs().RangeKm})
	}

	if !geo.IsWithinGeofence(delivery, d.Geofence()) {
		return mission.Plan{}, rejection(ReasonDeliveryOutsideGeofence,
			fmt.Sprintf("delivery location %s is outside the geofence of drone %s", delivery, d.Serial()),
			map[string]any{"lat": delivery.Lat(), "lng": delivery.Lng(), "droneId": d.ID().String()})
	}

	consumption := geo.EstimateBatteryConsumption(distance, float64(weight), p.policy.BatteryEfficiency)
	required := consumption + p.policy.BatteryReservePercent
	if float64(required) > d.BatteryPercent() {
		return mission.Plan{}, rejection(ReasonBatteryReserveShortfall,
			fmt.Sprintf("drone battery %s%% is below the %d%% required (%d%% flight + %d%% reserve)",
				formatNumber(d.BatteryPercent()), required, consumption, p.policy.BatteryReservePercent),
			map[string]any{
				"batteryPercent":     d.BatteryPercent(),
				"requiredPercent":    required,
				"consumptionPercent": consumption,
				"reservePercent":     p.policy.BatteryReservePercent,
			})
	}

	return mission.NewPlan(
		mission.Route{
			Pickup:    pickup,
			Delivery:  delivery,
			Waypoints: geo.GenerateWaypoints(pickup, delivery, p.policy.WaypointSegments, p.policy.CruiseAltitudeM),
		},
		mission.Estimates{
			DistanceKm:         distance,
			EtaMinutes:         geo.EstimateEtaMinutes(distance, d.Specs().SpeedKmh, p.policy.EtaBufferMinutes),
			BatteryConsumption: consumption,
		},
		mission.Parameters{
			PayloadGrams:    weight,
			CruiseAltitudeM: p.policy.CruiseAltitudeM,
			SpeedKmh:        d.Specs().SpeedKmh,
			BatteryRequired: required,
		},
	)
}

// checkOrderReady holds the order level checks. DroneSelector runs them once
// before trying drones since no drone can fix them.
func checkOrderReady(o *order.Order) error {
	if o.Status() != order.ReadyForPickup {
		return rejection(ReasonOrderNotReady,
			fmt.Sprintf("order %s is %s, not READY_FOR_PICKUP", o.ID(), o.Status()),
			map[string]any{"orderId": o.ID().String(), "status": o.Status().String()})
	}
	if o.DeliveryLocation() == nil {
		return rejection(ReasonDeliveryLocationMissing,
			fmt.Sprintf("order %s has no delivery location", o.ID()),
			map[string]any{"orderId": o.ID().String()})
	}
	if len(o.Items()) == 0 || o.TotalWeightGrams() <= 0 {
		return rejection(ReasonOrderHasNoItems,
			fmt.Sprintf("order %s has no items to carry", o.ID()),
			map[string]any{"orderId": o.ID().String()})
	}
	return nil
}

// formatNumber prints v with at most one decimal and no trailing zero.
func formatNumber(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.1f", v), "0"), ".")
}

// rejection builds the ValidationError returned for a failed planning check.
// reason is the machine readable code, values carry the numbers behind it.
func rejection(reason, message string, values map[string]any) error {
	return errs.NewValidationError(reason, message, values)
}
