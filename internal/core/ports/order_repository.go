package ports

import (
	"context"

	"dronedispatch/internal/core/domain/model/kernel"
	"dronedispatch/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for the local order projection.
type OrderRepository interface {
	// Add persists an order imported from the order service. A known id is a
	// StateConflictError.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists the status, delivery location and history of an existing order.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order by id. Unknown ids yield an ObjectNotFoundError.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)
}
