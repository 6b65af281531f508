package cmd

import (
	"context"
	"errors"

	httpadapter "dronedispatch/internal/adapters/in/http"
	"dronedispatch/internal/adapters/out/greptime"
	"dronedispatch/internal/adapters/out/notify"
	"dronedispatch/internal/adapters/out/postgres"
	"dronedispatch/internal/adapters/out/redis"
	"dronedispatch/internal/config"
	"dronedispatch/internal/core/application/usecases/commands"
	"dronedispatch/internal/core/application/usecases/queries"
	"dronedispatch/internal/core/domain/services"
	"dronedispatch/internal/core/ports"
	"dronedispatch/internal/jobs"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CompositionRoot owns the long-lived collaborators of the process and builds
// the handlers from them.
type CompositionRoot struct {
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory
	policy     config.Policy
	planner    services.MissionPlanner
	publisher  *commands.Publisher
	cache      ports.MissionCache
	log        *logrus.Entry
	closers    []func() error
}

// NewCompositionRoot connects the optional outbound adapters. An adapter whose
// settings are empty is skipped: notifications fall back to the log, and the
// cache and telemetry archive are disabled.
func NewCompositionRoot(
	ctx context.Context,
	cfg Config,
	policy config.Policy,
	gormDB *gorm.DB,
	log *logrus.Entry,
) (*CompositionRoot, error) {
	root := &CompositionRoot{
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB),
		policy:     policy,
		planner:    services.NewMissionPlanner(policy.Planner()),
		log:        log,
	}

	var notifier ports.Notifier = notify.NewLogNotifier(log)
	if len(cfg.KafkaBrokers) > 0 {
		kafka, err := notify.NewKafkaNotifier(notify.KafkaConfig{
			Brokers:     cfg.KafkaBrokers,
			TopicPrefix: cfg.KafkaTopicPrefix,
			ClientID:    "dronedispatch",
		}, log)
		if err != nil {
			return nil, root.failed(err)
		}
		notifier = kafka
		root.closers = append(root.closers, kafka.Close)
	}

	if cfg.RedisAddr != "" {
		cache, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      policy.MissionCacheTTL,
		}, log)
		if err != nil {
			return nil, root.failed(err)
		}
		root.cache = cache
		root.closers = append(root.closers, cache.Close)
	}

	var archive ports.TelemetryArchive
	if cfg.GreptimeHost != "" {
		a, err := greptime.NewTelemetryArchive(greptime.Config{
			Host:     cfg.GreptimeHost,
			Port:     cfg.GreptimePort,
			Database: cfg.GreptimeDatabase,
		}, log)
		if err != nil {
			return nil, root.failed(err)
		}
		archive = a
	}

	root.publisher = commands.NewPublisher(notifier, root.cache, archive, log)
	return root, nil
}

func (c *CompositionRoot) failed(err error) error {
	return errors.Join(err, c.Close())
}

// Close releases the outbound adapters in reverse order of creation.
func (c *CompositionRoot) Close() error {
	var errList []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		errList = append(errList, c.closers[i]())
	}
	c.closers = nil
	return errors.Join(errList...)
}

func (c *CompositionRoot) missionUoW() commands.UoWFactory {
	return commands.UoWFactoryFunc(func() commands.UoW { return c.uowFactory.Create() })
}

func (c *CompositionRoot) droneUoW() commands.DroneUoWFactory {
	return commands.DroneUoWFactoryFunc(func() commands.DroneUoW { return c.uowFactory.Create() })
}

func (c *CompositionRoot) orderUoW() commands.OrderUoWFactory {
	return commands.OrderUoWFactoryFunc(func() commands.OrderUoW { return c.uowFactory.Create() })
}

// HTTPHandlers builds every use case the API exposes.
func (c *CompositionRoot) HTTPHandlers() httpadapter.Handlers {
	return httpadapter.Handlers{
		CreateMission:       commands.NewCreateMissionCommandHandler(c.missionUoW(), c.planner, c.publisher),
		UpdateMissionStatus: commands.NewUpdateMissionStatusCommandHandler(c.missionUoW(), c.publisher),
		AppendTelemetry:     commands.NewAppendTelemetryCommandHandler(c.missionUoW(), c.publisher),
		AbortMission:        commands.NewAbortMissionCommandHandler(c.missionUoW(), c.publisher),
		FailMission:         commands.NewFailMissionCommandHandler(c.missionUoW(), c.publisher),
		CompleteMission:     commands.NewCompleteMissionCommandHandler(c.missionUoW(), c.publisher),
		RegisterDrone:       commands.NewRegisterDroneCommandHandler(c.droneUoW(), c.publisher),
		UpdateDroneLocation: commands.NewUpdateDroneLocationCommandHandler(c.droneUoW(), c.publisher),
		UpdateDroneBattery:  commands.NewUpdateDroneBatteryCommandHandler(c.droneUoW(), c.publisher),
		SetDroneStatus:      commands.NewSetDroneStatusCommandHandler(c.droneUoW(), c.publisher),
		RegisterOrder:       commands.NewRegisterOrderCommandHandler(c.orderUoW(), c.publisher),
		UpdateOrderStatus:   commands.NewUpdateOrderStatusCommandHandler(c.orderUoW(), c.publisher),
		GetMission:          queries.NewGetMissionQueryHandler(c.gormDB, c.cache, c.log),
		ListActiveMissions:  queries.NewListActiveMissionsQueryHandler(c.gormDB),
		GetDrone:            queries.NewGetDroneQueryHandler(c.gormDB),
		ListAvailableDrones: queries.NewListAvailableDronesQueryHandler(c.gormDB),
	}
}

// Jobs builds the scheduled jobs.
func (c *CompositionRoot) Jobs() (*jobs.JobManager, error) {
	command, err := commands.NewReportStaleMissionsCommand(c.policy.StaleMissionAfter)
	if err != nil {
		return nil, err
	}
	watchdog := jobs.NewStaleMissionJob(
		commands.NewReportStaleMissionsCommandHandler(c.missionUoW(), c.publisher),
		command,
		c.policy.WatchdogSchedule,
		c.log,
	)
	return jobs.NewJobManager(watchdog), nil
}
