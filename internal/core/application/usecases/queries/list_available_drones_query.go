package queries

import (
	"errors"

	"dronedispatch/internal/core/domain/model/kernel"
	"dronedispatch/internal/pkg/guard"
)

var ErrListAvailableDronesQueryIsNotConstructed = errors.New(
	"ListAvailableDronesQuery must be created via NewListAvailableDronesQuery constructor",
)

// ListAvailableDronesQuery lists the drones of a restaurant that could take a mission now.
type ListAvailableDronesQuery struct {
	restaurantID kernel.UUID

	guard guard.ConstructorGuard
}

// NewListAvailableDronesQuery validates the input and creates the query.
// Returns a validation error for invalid input.
func NewListAvailableDronesQuery(restaurantID kernel.UUID) (ListAvailableDronesQuery, error) {
	if err := restaurantID.Validate(); err != nil {
		return ListAvailableDronesQuery{}, err
	}
	return ListAvailableDronesQuery{restaurantID: restaurantID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
// Returns ErrListAvailableDronesQueryIsNotConstructed if validation fails.
func (q ListAvailableDronesQuery) Validate() error {
	return q.guard.Validate(ErrListAvailableDronesQueryIsNotConstructed)
}

// RestaurantID returns the owning restaurant.
func (q ListAvailableDronesQuery) RestaurantID() kernel.UUID {
	return q.restaurantID
}
