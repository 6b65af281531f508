package commands

import (
	"errors"

	"dronedispatch/internal/core/domain/model/kernel"
	"dronedispatch/internal/core/domain/model/mission"
	"dronedispatch/internal/pkg/guard"
)

var ErrFailMissionCommandIsNotConstructed = errors.New(
	"FailMissionCommand must be created via NewFailMissionCommand constructor",
)

// FailMissionCommand records an in-flight failure such as a crash or a lost link.
// A nil location falls back to the last telemetry sample.
type FailMissionCommand struct {
	missionID kernel.UUID
	details   mission.FailureDetails

	guard guard.ConstructorGuard
}

// NewFailMissionCommand validates the input and creates the command.
// Returns a validation error for invalid input.
func NewFailMissionCommand(
	missionID kernel.UUID,
	reason, code, description string,
	location *kernel.Location,
) (FailMissionCommand, error) {
	details := mission.FailureDetails{Reason: reason, Code: code, Description: description}
	if location != nil {
		loc := *location
		details.Location = &loc
	}
	if err := errors.Join(missionID.Validate(), details.Validate()); err != nil {
		return FailMissionCommand{}, err
	}

	return FailMissionCommand{
		missionID: missionID,
		details:   details,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrFailMissionCommandIsNotConstructed if validation fails.
func (c FailMissionCommand) Validate() error {
	return c.guard.Validate(ErrFailMissionCommandIsNotConstructed)
}

// MissionID returns the identifier of the target mission.
func (c FailMissionCommand) MissionID() kernel.UUID {
	return c.missionID
}

// Details returns the failure description recorded on the mission.
func (c FailMissionCommand) Details() mission.FailureDetails {
	return c.details
}
