package queries

import (
	"errors"

	"dronedispatch/internal/core/domain/model/kernel"
	"dronedispatch/internal/pkg/guard"
)

var ErrListActiveMissionsQueryIsNotConstructed = errors.New(
	"ListActiveMissionsQuery must be created via NewListActiveMissionsQuery constructor",
)

// ListActiveMissionsQuery lists non-terminal missions, optionally of one restaurant.
type ListActiveMissionsQuery struct {
	restaurantID *kernel.UUID

	guard guard.ConstructorGuard
}

// NewListActiveMissionsQuery validates the input and creates the query.
// Returns a validation error for invalid input.
func NewListActiveMissionsQuery(restaurantID *kernel.UUID) (ListActiveMissionsQuery, error) {
	q := ListActiveMissionsQuery{guard: guard.NewConstructorGuard()}
	if restaurantID != nil {
		if err := restaurantID.Validate(); err != nil {
			return ListActiveMissionsQuery{}, err
		}
		id := *restaurantID
		q.restaurantID = &id
	}
	return q, nil
}

// Validate ensures the query was created through the constructor.
// Returns ErrListActiveMissionsQueryIsNotConstructed if validation fails.
func (q ListActiveMissionsQuery) Validate() error {
	return q.guard.Validate(ErrListActiveMissionsQueryIsNotConstructed)
}

// RestaurantID is nil when missions of every restaurant are requested.
func (q ListActiveMissionsQuery) RestaurantID() *kernel.UUID {
	return q.restaurantID
}
