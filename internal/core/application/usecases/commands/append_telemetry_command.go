package commands

import (
	"errors"

	"dronedispatch/internal/core/domain/model/kernel"
	"dronedispatch/internal/core/domain/model/mission"
	"dronedispatch/internal/pkg/guard"
)

var ErrAppendTelemetryCommandIsNotConstructed = errors.New(
	"AppendTelemetryCommand must be created via NewAppendTelemetryCommand constructor",
)

// AppendTelemetryCommand carries one position, speed and battery sample reported
// by the drone while it flies a mission. The server assigns the timestamp.
type AppendTelemetryCommand struct {
	missionID kernel.UUID
	sample    mission.Telemetry

	guard guard.ConstructorGuard
}

// NewAppendTelemetryCommand validates the input and creates the command.
// Returns a validation error for invalid input.
func NewAppendTelemetryCommand(missionID kernel.UUID, sample mission.Telemetry) (AppendTelemetryCommand, error) {
	if err := errors.Join(missionID.Validate(), sample.Validate()); err != nil {
		return AppendTelemetryCommand{}, err
	}

	return AppendTelemetryCommand{
		missionID: missionID,
		sample:    sample,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrAppendTelemetryCommandIsNotConstructed if validation fails.
func (c AppendTelemetryCommand) Validate() error {
	return c.guard.Validate(ErrAppendTelemetryCommandIsNotConstructed)
}

// MissionID returns the identifier of the target mission.
func (c AppendTelemetryCommand) MissionID() kernel.UUID {
	return c.missionID
}

// Sample returns the reported telemetry sample.
func (c AppendTelemetryCommand) Sample() mission.Telemetry {
	return c.sample
}
