package commands

import (
	"errors"

	"dronedispatch/internal/core/domain/model/kernel"
	"dronedispatch/internal/core/domain/model/mission"
	"dronedispatch/internal/pkg/guard"
)

var ErrAbortMissionCommandIsNotConstructed = errors.New(
	"AbortMissionCommand must be created via NewAbortMissionCommand constructor",
)

// AbortMissionCommand cancels a mission in any non-terminal status. The failure
// location is taken from the last telemetry sample.
type AbortMissionCommand struct {
	missionID kernel.UUID
	details   mission.FailureDetails

	guard guard.ConstructorGuard
}

// NewAbortMissionCommand validates the input and creates the command.
// Returns a validation error for invalid input.
func NewAbortMissionCommand(missionID kernel.UUID, reason, code, description string) (AbortMissionCommand, error) {
	details := mission.FailureDetails{Reason: reason, Code: code, Description: description}
	if err := errors.Join(missionID.Validate(), details.Validate()); err != nil {
		return AbortMissionCommand{}, err
	}

	return AbortMissionCommand{
		missionID: missionID,
		details:   details,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrAbortMissionCommandIsNotConstructed if validation fails.
func (c AbortMissionCommand) Validate() error {
	return c.guard.Validate(ErrAbortMissionCommandIsNotConstructed)
}

// MissionID returns the identifier of the target mission.
func (c AbortMissionCommand) MissionID() kernel.UUID {
	return c.missionID
}

// Details returns the failure description recorded on the mission.
func (c AbortMissionCommand) Details() mission.FailureDetails {
	return c.details
}
