// Package ports defines the contracts between the dispatch core and its adapters:
// repositories, the unit of work, and the outbound collaborators used after commit.
package ports

import (
	"context"

	"dronedispatch/internal/core/domain/model/drone"
	"dronedispatch/internal/core/domain/model/kernel"
)

// DroneRepository defines the persistence contract for drone aggregates.
type DroneRepository interface {
	// Add persists a newly registered drone. A duplicate serial is a StateConflictError.
	Add(ctx context.Context, aggregate *drone.Drone) error

	// Update persists the drone if its stored version still equals aggregate.Version()
	// and then advances aggregate to the stored version, so the same instance can be
	// updated again. A stale version is a StateConflictError and leaves aggregate as is.
	Update(ctx context.Context, aggregate *drone.Drone) error

	// Reserve persists a reservation made with drone.Reserve as one conditional write:
	// it succeeds only if the stored drone has the same version, is IDLE and holds no
	// mission. Otherwise nothing is written and a StateConflictError is returned.
	// Of two concurrent reservations of the same drone at most one succeeds.
	// On success aggregate is advanced to the stored version.
	Reserve(ctx context.Context, aggregate *drone.Drone) error

	// Get retrieves a drone by id. Unknown ids yield an ObjectNotFoundError.
	Get(ctx context.Context, id kernel.UUID) (*drone.Drone, error)

	// GetIdleByRestaurant returns the IDLE, unreserved drones of a restaurant.
	GetIdleByRestaurant(ctx context.Context, restaurantID kernel.UUID) ([]*drone.Drone, error)
}
