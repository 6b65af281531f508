package ports

import (
	"context"

	"dronedispatch/internal/core/domain/model/kernel"
)

// MissionCache keeps serialized mission views for tracking screens that poll a
// mission many times per minute. A miss is (false, nil).
type MissionCache interface {
	// Get decodes the cached view of mission id into dst.
	Get(ctx context.Context, id kernel.UUID, dst any) (bool, error)

	// Set stores view under mission id for the configured TTL.
	Set(ctx context.Context, id kernel.UUID, view any) error

	// Invalidate drops the cached view. Every committed mission change calls it.
	Invalidate(ctx context.Context, id kernel.UUID) error
}
