package ports

import (
	"context"

	"dronedispatch/internal/core/domain/model/kernel"
	"dronedispatch/internal/core/domain/model/mission"
)

// TelemetryRecord is one path point with the identifiers needed to query it later.
type TelemetryRecord struct {
	MissionID     kernel.UUID
	MissionNumber string
	DroneID       kernel.UUID
	RestaurantID  kernel.UUID
	Point         mission.PathPoint
}

// TelemetryArchive stores telemetry for analytics outside the transactional store.
type TelemetryArchive interface {
	// Archive writes records in one batch. Callers treat a failure as non fatal.
	Archive(ctx context.Context, records ...TelemetryRecord) error
}
