package commands

import (
	"errors"
	"strings"

	"dronedispatch/internal/core/domain/model/kernel"
	"dronedispatch/internal/core/domain/model/mission"
	"dronedispatch/internal/pkg/guard"
)

var ErrUpdateMissionStatusCommandIsNotConstructed = errors.New(
	"UpdateMissionStatusCommand must be created via NewUpdateMissionStatusCommand constructor",
)

// UpdateMissionStatusCommand reports the next lifecycle status of a mission,
// typically sent by the drone client. An empty note takes the status default.
type UpdateMissionStatusCommand struct {
	missionID kernel.UUID
	status    mission.Status
	note      string

	guard guard.ConstructorGuard
}

// NewUpdateMissionStatusCommand validates the input and creates the command.
// Returns a validation error for invalid input.
func NewUpdateMissionStatusCommand(missionID kernel.UUID, status mission.Status, note string) (UpdateMissionStatusCommand, error) {
	if err := errors.Join(missionID.Validate(), status.Validate()); err != nil {
		return UpdateMissionStatusCommand{}, err
	}

	return UpdateMissionStatusCommand{
		missionID: missionID,
		status:    status,
		note:      strings.TrimSpace(note),
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrUpdateMissionStatusCommandIsNotConstructed if validation fails.
func (c UpdateMissionStatusCommand) Validate() error {
	return c.guard.Validate(ErrUpdateMissionStatusCommandIsNotConstructed)
}

// MissionID returns the identifier of the target mission.
func (c UpdateMissionStatusCommand) MissionID() kernel.UUID {
	return c.missionID
}

// Status returns the requested status.
func (c UpdateMissionStatusCommand) Status() mission.Status {
	return c.status
}

// Note returns the timeline note, empty for the default note.
func (c UpdateMissionStatusCommand) Note() string {
	return c.note
}
