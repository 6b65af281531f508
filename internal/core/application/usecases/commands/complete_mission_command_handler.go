package commands

import (
	"context"
	"time"

	"dronedispatch/internal/core/domain/model/mission"
)

// CompleteMissionCommandHandler completes a RETURNING mission, computes its
// actuals and releases the drone. Completing twice is a StateConflictError.
type CompleteMissionCommandHandler struct {
	uowFactory UoWFactory
	publisher  *Publisher
}

// NewCompleteMissionCommandHandler creates a handler for complete mission requests.
func NewCompleteMissionCommandHandler(uowFactory UoWFactory, publisher *Publisher) CompleteMissionCommandHandler {
	return CompleteMissionCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
	}
}

// Handle completes the mission and returns the drone to IDLE. A mission that is
// not RETURNING yields a StateConflictError.
func (h CompleteMissionCommandHandler) Handle(ctx context.Context, command CompleteMissionCommand) (*mission.Mission, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	outcome, err := applyMissionChange(ctx, h.uowFactory, command.MissionID(),
		func(m *mission.Mission, now time.Time) error {
			return m.Complete(now)
		})
	if err != nil {
		return nil, err
	}

	publishMissionOutcome(ctx, h.publisher, outcome)
	return outcome.mission, nil
}
