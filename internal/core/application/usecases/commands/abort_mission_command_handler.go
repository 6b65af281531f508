package commands

import (
	"context"
	"time"

	"dronedispatch/internal/core/domain/model/mission"
)

// AbortMissionCommandHandler aborts a mission, releases its drone and fails the order.
//
// Example:
//
//	cmd, _ := NewAbortMissionCommand(missionID, "customer cancelled", "CANCELLED", "")
//	m, err := handler.Handle(ctx, cmd)
//	if errors.Is(err, errs.ErrStateConflict) {
//	    // The mission already ended
//	}
type AbortMissionCommandHandler struct {
	uowFactory UoWFactory
	publisher  *Publisher
}

// NewAbortMissionCommandHandler creates a handler for abort mission requests.
func NewAbortMissionCommandHandler(uowFactory UoWFactory, publisher *Publisher) AbortMissionCommandHandler {
	return AbortMissionCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
	}
}

// Handle aborts the mission and releases its drone in one transaction, then
// notifies the mission, drone and order channels. Stale versions are retried.
func (h AbortMissionCommandHandler) Handle(ctx context.Context, command AbortMissionCommand) (*mission.Mission, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	outcome, err := applyMissionChange(ctx, h.uowFactory, command.MissionID(),
		func(m *mission.Mission, now time.Time) error {
			return m.Abort(command.Details(), now)
		})
	if err != nil {
		return nil, err
	}

	publishMissionOutcome(ctx, h.publisher, outcome)
	return outcome.mission, nil
}
