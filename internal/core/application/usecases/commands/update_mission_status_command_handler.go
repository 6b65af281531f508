package commands

import (
	"context"
	"time"

	"dronedispatch/internal/core/domain/model/mission"
)

// UpdateMissionStatusCommandHandler applies a generic lifecycle step. Moving to
// ABORTED or FAILED this way records a failure with code UNSPECIFIED and the
// note as its reason; COMPLETED goes through the same checks as CompleteMission.
type UpdateMissionStatusCommandHandler struct {
	uowFactory UoWFactory
	publisher  *Publisher
}

// NewUpdateMissionStatusCommandHandler creates a handler for update mission status requests.
func NewUpdateMissionStatusCommandHandler(uowFactory UoWFactory, publisher *Publisher) UpdateMissionStatusCommandHandler {
	return UpdateMissionStatusCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
	}
}

// Handle applies the lifecycle step and projects it onto the drone and order.
func (h UpdateMissionStatusCommandHandler) Handle(ctx context.Context, command UpdateMissionStatusCommand) (*mission.Mission, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	outcome, err := applyMissionChange(ctx, h.uowFactory, command.MissionID(),
		func(m *mission.Mission, now time.Time) error {
			return m.Transition(command.Status(), command.Note(), now)
		})
	if err != nil {
		return nil, err
	}

	publishMissionOutcome(ctx, h.publisher, outcome)
	return outcome.mission, nil
}
