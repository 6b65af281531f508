package jobs

import (
	"context"

	"dronedispatch/internal/core/application/usecases/commands"
	"dronedispatch/internal/pkg/logger"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// StaleMissionHandler reports open missions that stopped changing.
type StaleMissionHandler interface {
	Handle(ctx context.Context, command commands.ReportStaleMissionsCommand) (int, error)
}

// StaleMissionJob raises an alert for every mission stuck in a non-terminal
// state longer than the policy allows. It never aborts a mission.
type StaleMissionJob struct {
	handler  StaleMissionHandler
	command  commands.ReportStaleMissionsCommand
	schedule string
	cron     *cron.Cron
	logger   *logrus.Entry
}

// NewStaleMissionJob creates the job. The schedule is only parsed by Start, so a
// bad expression surfaces there. A nil log discards output.
func NewStaleMissionJob(
	handler StaleMissionHandler,
	command commands.ReportStaleMissionsCommand,
	schedule string,
	log *logrus.Entry,
) *StaleMissionJob {
	if log == nil {
		log = logger.Discard()
	}
	return &StaleMissionJob{
		handler:  handler,
		command:  command,
		schedule: schedule,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger.Component(log, "stale_mission_job"),
	}
}

// Run performs one sweep.
func (j *StaleMissionJob) Run(ctx context.Context) {
	reported, err := j.handler.Handle(ctx, j.command)
	if err != nil {
		j.logger.WithError(err).Error("Stale mission sweep failed")
		return
	}
	if reported > 0 {
		j.logger.WithField("missions", reported).
			WithField("staleAfter", j.command.StaleAfter().String()).
			Warn("Stale missions reported")
	}
}

// Start registers the sweep with the cron scheduler and starts it.
func (j *StaleMissionJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		j.Run(context.Background())
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.WithField("schedule", j.schedule).Info("Stale mission job started")
	return nil
}

// Stop waits for a running sweep to finish.
func (j *StaleMissionJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("Stale mission job stopped")
}
