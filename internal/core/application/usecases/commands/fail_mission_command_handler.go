package commands

import (
	"context"
	"time"

	"dronedispatch/internal/core/domain/model/mission"
)

// FailMissionCommandHandler marks an airborne mission FAILED, releases the drone
// and fails the order. Missions that never took off must be aborted instead.
type FailMissionCommandHandler struct {
	uowFactory UoWFactory
	publisher  *Publisher
}

// NewFailMissionCommandHandler creates a handler for fail mission requests.
func NewFailMissionCommandHandler(uowFactory UoWFactory, publisher *Publisher) FailMissionCommandHandler {
	return FailMissionCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
	}
}

// Handle fails the mission and releases its drone. Only airborne missions can fail.
func (h FailMissionCommandHandler) Handle(ctx context.Context, command FailMissionCommand) (*mission.Mission, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	outcome, err := applyMissionChange(ctx, h.uowFactory, command.MissionID(),
		func(m *mission.Mission, now time.Time) error {
			return m.Fail(command.Details(), now)
		})
	if err != nil {
		return nil, err
	}

	publishMissionOutcome(ctx, h.publisher, outcome)
	return outcome.mission, nil
}
