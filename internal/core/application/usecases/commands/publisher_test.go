package commands_test

import (
	"errors"
	"testing"

	"dronedispatch/internal/core/application/usecases/commands"
	"dronedispatch/internal/core/domain/model/kernel"
	"dronedispatch/internal/core/ports"

	"github.com/stretchr/testify/mock"
)

func TestPublisher_MissionChanged(t *testing.T) {
	ctx := t.Context()
	missionID := kernel.NewUUID()

	t.Run("failures also go to the alerts channel", func(t *testing.T) {
		notifier := new(MockNotifier)
		cache := new(MockMissionCache)
		event := commands.MissionEvent{MissionID: missionID.String(), Status: "FAILED", FailureCode: "MOTOR_FAILURE"}

		cache.On("Invalidate", ctx, missionID).Return(errors.New("redis down")).Once()
		for _, channel := range []string{ports.ChannelMission, ports.ChannelRestaurant, ports.ChannelAlerts} {
			notifier.On("Emit", ctx, channel, ports.EventMissionFailed, event).Return(nil).Once()
		}

		commands.NewPublisher(notifier, cache, nil, nil).MissionChanged(ctx, ports.EventMissionFailed, event)

		notifier.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("regular changes skip alerts", func(t *testing.T) {
		notifier := new(MockNotifier)
		event := commands.MissionEvent{MissionID: missionID.String(), Status: "CRUISING"}
		notifier.On("Emit", ctx, mock.Anything, ports.EventMissionStatus, event).Return(nil).Twice()

		commands.NewPublisher(notifier, nil, nil, nil).MissionChanged(ctx, ports.EventMissionStatus, event)

		notifier.AssertExpectations(t)
		notifier.AssertNotCalled(t, "Emit", ctx, ports.ChannelAlerts, mock.Anything, mock.Anything)
	})
}

func TestPublisher_Archive(t *testing.T) {
	ctx := t.Context()
	archive := new(MockTelemetryArchive)
	record := ports.TelemetryRecord{MissionID: kernel.NewUUID(), MissionNumber: "MSN2610180001"}
	archive.On("Archive", ctx, []ports.TelemetryRecord{record}).Return(errors.New("greptime unavailable")).Once()

	publisher := commands.NewPublisher(nil, nil, archive, nil)
	publisher.Archive(ctx, record)
	publisher.Archive(ctx)

	archive.AssertExpectations(t)
}

func TestPublisher_NilIsSafe(t *testing.T) {
	var publisher *commands.Publisher
	publisher.Emit(t.Context(), ports.ChannelDrone, ports.EventDroneUpdated, commands.DroneEvent{})
	publisher.MissionChanged(t.Context(), ports.EventMissionStatus, commands.MissionEvent{})
	publisher.InvalidateMission(t.Context(), kernel.NewUUID())
	commands.NopPublisher().Archive(t.Context(), ports.TelemetryRecord{})
}
