// Package commands contains the operations that change dispatch state: mission
// creation and lifecycle, drone telemetry and registration, and the local order
// projection. Every handler validates its command, runs one unit of work and only
// after a successful commit publishes notifications.
package commands

import (
	"context"

	"dronedispatch/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
// Handlers depend on the narrowest one that covers the aggregates they touch.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	DroneRepoFactory interface {
		DroneRepository() ports.DroneRepository
	}

	MissionRepoFactory interface {
		MissionRepository() ports.MissionRepository
		MissionSequenceRepository() ports.MissionSequenceRepository
	}

	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// DroneUoW manages transactions for drone-only operations.
	DroneUoW interface {
		TxManager
		DroneRepoFactory
	}

	DroneUoWFactory interface {
		Create() DroneUoW
	}

	// OrderUoW manages transactions for order-only operations.
	OrderUoW interface {
		TxManager
		OrderRepoFactory
	}

	OrderUoWFactory interface {
		Create() OrderUoW
	}

	// UoW spans missions, drones and orders. Mission commands use it because a
	// status change is mirrored onto the drone and projected onto the order in
	// the same transaction.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   m, err := uow.MissionRepository().Get(ctx, id)
	//   d, err := uow.DroneRepository().Get(ctx, m.DroneID())
	//   // ... mutate and update both
	//
	//   err = uow.Commit(ctx)
	UoW interface {
		TxManager
		DroneRepoFactory
		MissionRepoFactory
		OrderRepoFactory
	}

	UoWFactory interface {
		Create() UoW
	}
)

// Func adapters let a ports.UnitOfWorkFactory serve every handler:
//
//	factory := commands.UoWFactoryFunc(func() commands.UoW { return gormFactory.Create() })
type (
	UoWFactoryFunc      func() UoW
	DroneUoWFactoryFunc func() DroneUoW
	OrderUoWFactoryFunc func() OrderUoW
)

// Create calls f.
func (f UoWFactoryFunc) Create() UoW {
	return f()
}

func (f DroneUoWFactoryFunc) Create() DroneUoW {
	return f()
}

func (f OrderUoWFactoryFunc) Create() OrderUoW {
	return f()
}
