package queries

import (
	"errors"

	"dronedispatch/internal/core/domain/model/kernel"
	"dronedispatch/internal/pkg/guard"
)

var ErrGetDroneQueryIsNotConstructed = errors.New("GetDroneQuery must be created via NewGetDroneQuery constructor")

// GetDroneQuery retrieves the current state of one drone.
type GetDroneQuery struct {
	droneID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetDroneQuery validates the input and creates the query.
// Returns a validation error for invalid input.
func NewGetDroneQuery(droneID kernel.UUID) (GetDroneQuery, error) {
	if err := droneID.Validate(); err != nil {
		return GetDroneQuery{}, err
	}
	return GetDroneQuery{droneID: droneID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
// Returns ErrGetDroneQueryIsNotConstructed if validation fails.
func (q GetDroneQuery) Validate() error {
	return q.guard.Validate(ErrGetDroneQueryIsNotConstructed)
}

// DroneID returns the identifier of the target drone.
func (q GetDroneQuery) DroneID() kernel.UUID {
	return q.droneID
}
