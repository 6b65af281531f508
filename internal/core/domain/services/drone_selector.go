package services

import (
	"errors"
	"fmt"
	"sort"

	"dronedispatch/internal/core/domain/geo"
	"dronedispatch/internal/core/domain/model/drone"
	"dronedispatch/internal/core/domain/model/mission"
	"dronedispatch/internal/core/domain/model/order"
	"dronedispatch/internal/pkg/errs"
)

// ReasonNoEligibleDrone is reported when every candidate drone was rejected.
const ReasonNoEligibleDrone = "NO_ELIGIBLE_DRONE"

// DroneSelector picks a drone for an order when the caller did not name one.
//
// Candidates are tried closest to the restaurant first; the first drone whose
// plan succeeds wins, ties keep the input order. Order level rejections stop the
// search immediately since no other drone can fix them.
//
// Example:
//
//	selector := services.NewDroneSelector(services.NewMissionPlanner(policy))
//	d, plan, err := selector.Select(o, fleet)
//	if errs.ReasonOf(err) == services.ReasonNoEligibleDrone {
//	    // err.Values maps every serial to the reason it was skipped
//	}
type DroneSelector struct {
	planner MissionPlanner
}

// NewDroneSelector creates a selector that plans with planner.
func NewDroneSelector(planner MissionPlanner) DroneSelector {
	return DroneSelector{planner: planner}
}

// Select returns the first drone, closest to the restaurant first, whose plan
// succeeds together with that plan.
//
// Returns:
//   - the order's own validation error when the order is not ready
//   - a NO_ELIGIBLE_DRONE ValidationError whose values map each drone serial to
//     its rejection reason when no candidate fits
//   - any other error from the planner unchanged
func (s DroneSelector) Select(o *order.Order, drones []*drone.Drone) (*drone.Drone, mission.Plan, error) {
	if err := o.Validate(); err != nil {
		return nil, mission.Plan{}, err
	}
	if err := checkOrderReady(o); err != nil {
		return nil, mission.Plan{}, err
	}

	candidates := make([]*drone.Drone, 0, len(drones))
	for _, d := range drones {
		if err := d.Validate(); err != nil {
			return nil, mission.Plan{}, err
		}
		candidates = append(candidates, d)
	}

	pickup := o.RestaurantLocation()
	sort.SliceStable(candidates, func(i, j int) bool {
		return geo.DistanceKm(candidates[i].Position().Location(), pickup) <
			geo.DistanceKm(candidates[j].Position().Location(), pickup)
	})

	reasons := make(map[string]any, len(candidates))
	for _, d := range candidates {
		plan, err := s.planner.Plan(o, d)
		if err == nil {
			return d, plan, nil
		}
		if reason := errs.ReasonOf(err); reason != "" {
			reasons[d.Serial()] = reason
			continue
		}
		if errors.Is(err, errs.ErrStateConflict) {
			reasons[d.Serial()] = "DRONE_RESERVED"
			continue
		}
		return nil, mission.Plan{}, err
	}

	return nil, mission.Plan{}, errs.NewValidationError(ReasonNoEligibleDrone,
		fmt.Sprintf("no eligible drone for order %s among %d candidates", o.ID(), len(candidates)),
		reasons)
}
