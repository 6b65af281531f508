package commands

import (
	"context"

	"dronedispatch/internal/core/domain/model/kernel"
	"dronedispatch/internal/core/ports"
	"dronedispatch/internal/pkg/logger"

	"github.com/sirupsen/logrus"
)

// Publisher carries out the effects that follow a committed change: notifications,
// mission cache invalidation and telemetry archiving. None of them can undo the
// change, so failures are logged and swallowed. Nil collaborators are skipped.
type Publisher struct {
	notifier ports.Notifier
	cache    ports.MissionCache
	archive  ports.TelemetryArchive
	log      *logrus.Entry
}

// NewPublisher wires the post-commit collaborators. Any of them may be nil.
func NewPublisher(
	notifier ports.Notifier,
	cache ports.MissionCache,
	archive ports.TelemetryArchive,
	log *logrus.Entry,
) *Publisher {
	if log == nil {
		log = logger.Discard()
	}
	return &Publisher{
		notifier: notifier,
		cache:    cache,
		archive:  archive,
		log:      logger.Component(log, "publisher"),
	}
}

// NopPublisher drops every effect. Useful for tools and tests that only care
// about persisted state.
func NopPublisher() *Publisher {
	return NewPublisher(nil, nil, nil, nil)
}

// Emit sends one notification and logs a failure at warn level.
func (p *Publisher) Emit(ctx context.Context, channel, event string, payload any) {
	if p == nil || p.notifier == nil {
		return
	}
	if err := p.notifier.Emit(ctx, channel, event, payload); err != nil {
		logger.FromContext(ctx, p.log).WithError(err).
			WithFields(logrus.Fields{"channel": channel, "event": event}).
			Warn("notification dropped")
	}
}

// MissionChanged invalidates the cached view of the mission and broadcasts event
// to the mission and restaurant channels. Failures also go to the alerts channel.
func (p *Publisher) MissionChanged(ctx context.Context, event string, payload MissionEvent) {
	if p == nil {
		return
	}

	if id, err := kernel.UUIDFromString(payload.MissionID); err == nil {
		p.InvalidateMission(ctx, id)
	}

	p.Emit(ctx, ports.ChannelMission, event, payload)
	p.Emit(ctx, ports.ChannelRestaurant, event, payload)
	if payload.FailureCode != "" {
		p.Emit(ctx, ports.ChannelAlerts, event, payload)
	}
}

// InvalidateMission drops the cached tracking view of a mission.
func (p *Publisher) InvalidateMission(ctx context.Context, id kernel.UUID) {
	if p == nil || p.cache == nil {
		return
	}
	if err := p.cache.Invalidate(ctx, id); err != nil {
		logger.FromContext(ctx, p.log).WithError(err).
			WithField("missionId", id.String()).
			Warn("mission cache invalidation failed")
	}
}

// Archive forwards telemetry records to the archive, if one is configured.
func (p *Publisher) Archive(ctx context.Context, records ...ports.TelemetryRecord) {
	if p == nil || p.archive == nil || len(records) == 0 {
		return
	}
	if err := p.archive.Archive(ctx, records...); err != nil {
		logger.FromContext(ctx, p.log).WithError(err).
			WithField("records", len(records)).
			Warn("telemetry archive write failed")
	}
}
