package commands_test

import (
	"errors"
	"testing"
	"time"

	"dronedispatch/internal/adapters/out/postgres/dbtest"
	"dronedispatch/internal/core/application/usecases/commands"
	"dronedispatch/internal/core/domain/model/kernel"
	"dronedispatch/internal/core/domain/model/mission"
	"dronedispatch/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestReportStaleMissionsCommandHandler_Handle(t *testing.T) {
	ctx := t.Context()
	restaurantID := kernel.NewUUID()
	o := dbtest.NewOrder(t, restaurantID, nearby)
	d := dbtest.NewDrone(t, restaurantID, "DR-001")
	stuck := dbtest.NewMission(t, "MSN2610180001", o, d, time.Now().UTC().Add(-45*time.Minute))

	uow := new(MockUoW)
	factory := new(MockUoWFactory)
	missions := new(MockMissionRepository)
	notifier := new(MockNotifier)

	uow.On("MissionRepository").Return(missions).Maybe()
	mock.InOrder(
		factory.On("Create").Return(uow).Once(),
		uow.On("Begin", ctx).Return(nil).Once(),
		missions.On("GetStale", ctx, mock.MatchedBy(func(before time.Time) bool {
			return time.Since(before) >= 30*time.Minute && time.Since(before) < 31*time.Minute
		})).Return([]*mission.Mission{stuck}, nil).Once(),
		notifier.On("Emit", ctx, ports.ChannelAlerts, ports.EventMissionStale,
			mock.MatchedBy(func(e commands.StaleMissionEvent) bool {
				return e.MissionNumber == "MSN2610180001" && e.Status == "QUEUED" &&
					e.StaleMinutes >= 44 && e.StaleMinutes <= 46 &&
					e.DurationMinutes >= 44 && e.DurationMinutes <= 46
			})).Return(errors.New("broker down")).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	command, err := commands.NewReportStaleMissionsCommand(30 * time.Minute)
	require.NoError(t, err)

	handler := commands.NewReportStaleMissionsCommandHandler(factory, commands.NewPublisher(notifier, nil, nil, nil))
	reported, err := handler.Handle(ctx, command)

	require.NoError(t, err)
	assert.Equal(t, 1, reported)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
	mock.AssertExpectationsForObjects(t, factory, uow, missions, notifier)
}

func TestReportStaleMissionsCommandHandler_Handle_RepositoryError(t *testing.T) {
	ctx := t.Context()
	uow := new(MockUoW)
	factory := new(MockUoWFactory)
	missions := new(MockMissionRepository)

	uow.On("MissionRepository").Return(missions).Maybe()
	factory.On("Create").Return(uow).Once()
	uow.On("Begin", ctx).Return(nil).Once()
	missions.On("GetStale", ctx, mock.Anything).Return(nil, errors.New("timeout")).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	command, err := commands.NewReportStaleMissionsCommand(time.Minute)
	require.NoError(t, err)

	reported, err := commands.NewReportStaleMissionsCommandHandler(factory, commands.NopPublisher()).Handle(ctx, command)

	require.EqualError(t, err, "timeout")
	assert.Zero(t, reported)
}

func TestNewReportStaleMissionsCommand(t *testing.T) {
	_, err := commands.NewReportStaleMissionsCommand(0)
	require.Error(t, err)

	_, err = commands.NewReportStaleMissionsCommandHandler(new(MockUoWFactory), nil).
		Handle(t.Context(), commands.ReportStaleMissionsCommand{})
	require.ErrorIs(t, err, commands.ErrReportStaleMissionsCommandIsNotConstructed)
}
