package queries

import (
	"errors"

	"dronedispatch/internal/core/domain/model/kernel"
	"dronedispatch/internal/pkg/guard"
)

var ErrGetMissionQueryIsNotConstructed = errors.New(
	"GetMissionQuery must be created via NewGetMissionQuery constructor",
)

// GetMissionQuery retrieves the tracking view of one mission: route, path,
// timeline, estimates, actuals and failure details.
//
// Example:
//
//	query, err := NewGetMissionQuery(missionID)
//	if err != nil {
//	    return err
//	}
//	view, err := handler.Handle(ctx, query)
type GetMissionQuery struct {
	missionID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetMissionQuery validates the input and creates the query.
// Returns a validation error for invalid input.
func NewGetMissionQuery(missionID kernel.UUID) (GetMissionQuery, error) {
	if err := missionID.Validate(); err != nil {
		return GetMissionQuery{}, err
	}
	return GetMissionQuery{missionID: missionID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
// Returns ErrGetMissionQueryIsNotConstructed if validation fails.
func (q GetMissionQuery) Validate() error {
	return q.guard.Validate(ErrGetMissionQueryIsNotConstructed)
}

// MissionID returns the identifier of the target mission.
func (q GetMissionQuery) MissionID() kernel.UUID {
	return q.missionID
}
