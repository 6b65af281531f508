package commands

import (
	"context"
	"math"
	"time"

	"dronedispatch/internal/core/domain/model/mission"
	"dronedispatch/internal/core/ports"
)

// StaleMissionEvent is the alert raised for a mission that stopped reporting.
// StaleMinutes counts from the last timeline entry, DurationMinutes from creation.
type StaleMissionEvent struct {
	MissionEvent
	LastEventAt     time.Time `json:"lastEventAt"`
	StaleMinutes    int       `json:"staleMinutes"`
	DurationMinutes int       `json:"durationMinutes"`
}

// ReportStaleMissionsCommandHandler raises an alert for every open mission that
// has not reported within the configured window. It only reads missions.
//
// Example:
//
//	cmd, _ := NewReportStaleMissionsCommand(30 * time.Minute)
//	reported, err := handler.Handle(ctx, cmd)
type ReportStaleMissionsCommandHandler struct {
	uowFactory UoWFactory
	publisher  *Publisher
	now        func() time.Time
}

// NewReportStaleMissionsCommandHandler creates a handler for report stale missions requests.
func NewReportStaleMissionsCommandHandler(uowFactory UoWFactory, publisher *Publisher) ReportStaleMissionsCommandHandler {
	return ReportStaleMissionsCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		now:        time.Now,
	}
}

// Handle returns how many missions were reported.
//
// The missions are read in a transaction that is always rolled back, so a sweep
// never changes state. Notifier failures are logged by the publisher and do not
// stop the sweep.
func (h ReportStaleMissionsCommandHandler) Handle(ctx context.Context, command ReportStaleMissionsCommand) (int, error) {
	if err := command.Validate(); err != nil {
		return 0, err
	}

	now := h.now().UTC()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	stale, err := uow.MissionRepository().GetStale(ctx, now.Add(-command.StaleAfter()))
	if err != nil {
		return 0, err
	}

	for _, m := range stale {
		h.publisher.Emit(ctx, ports.ChannelAlerts, ports.EventMissionStale, newStaleMissionEvent(m, now))
	}
	return len(stale), nil
}

func newStaleMissionEvent(m *mission.Mission, now time.Time) StaleMissionEvent {
	event := StaleMissionEvent{MissionEvent: newMissionEvent(m, mission.Unknown)}
	event.LastEventAt = event.OccurredAt
	event.StaleMinutes = int(math.Floor(now.Sub(event.LastEventAt).Minutes()))
	event.DurationMinutes = mission.DurationMinutes(m, now)
	return event
}
