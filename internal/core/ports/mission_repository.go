package ports

import (
	"context"
	"time"

	"dronedispatch/internal/core/domain/model/kernel"
	"dronedispatch/internal/core/domain/model/mission"
)

// MissionRepository defines the persistence contract for mission aggregates.
// Missions are never deleted.
type MissionRepository interface {
	// Add persists a new QUEUED mission. A second mission for the same order is a
	// StateConflictError.
	Add(ctx context.Context, aggregate *mission.Mission) error

	// Update persists the mission if its stored version still equals aggregate.Version()
	// and then advances aggregate to the stored version, so the same instance can be
	// updated again. A stale version is a StateConflictError and leaves aggregate as is.
	Update(ctx context.Context, aggregate *mission.Mission) error

	// Get retrieves a mission by id. Unknown ids yield an ObjectNotFoundError.
	Get(ctx context.Context, id kernel.UUID) (*mission.Mission, error)

	// GetByOrderID returns the mission of an order or an ObjectNotFoundError.
	GetByOrderID(ctx context.Context, orderID kernel.UUID) (*mission.Mission, error)

	// GetStale returns non-terminal missions whose last timeline entry is older than before.
	GetStale(ctx context.Context, before time.Time) ([]*mission.Mission, error)
}

// MissionSequenceRepository hands out the daily mission counter.
type MissionSequenceRepository interface {
	// Next atomically increments and returns the counter of day, starting at 1.
	// It must run inside the transaction that inserts the mission.
	Next(ctx context.Context, day string) (int, error)
}
