package commands

import (
	"errors"

	"dronedispatch/internal/core/domain/model/kernel"
	"dronedispatch/internal/pkg/guard"
)

var ErrCompleteMissionCommandIsNotConstructed = errors.New(
	"CompleteMissionCommand must be created via NewCompleteMissionCommand constructor",
)

// CompleteMissionCommand closes a mission whose drone is back at base.
type CompleteMissionCommand struct {
	missionID kernel.UUID

	guard guard.ConstructorGuard
}

// NewCompleteMissionCommand validates the input and creates the command.
// Returns a validation error for invalid input.
func NewCompleteMissionCommand(missionID kernel.UUID) (CompleteMissionCommand, error) {
	if err := missionID.Validate(); err != nil {
		return CompleteMissionCommand{}, err
	}

	return CompleteMissionCommand{
		missionID: missionID,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrCompleteMissionCommandIsNotConstructed if validation fails.
func (c CompleteMissionCommand) Validate() error {
	return c.guard.Validate(ErrCompleteMissionCommandIsNotConstructed)
}

func (c CompleteMissionCommand) MissionID() kernel.UUID {
	return c.missionID
}
