package commands

import (
	"context"

	"dronedispatch/internal/core/domain/model/drone"
	"dronedispatch/internal/core/domain/model/kernel"
)

// applyDroneChange loads a drone, applies change and stores it, reloading and
// retrying when a concurrent write won the compare-and-swap.
//
// change runs on a fresh copy on every attempt and must not keep state between
// calls. Its errors end the loop, since only stale version errors are retried.
//
// Returns the stored drone, or the last error once retryOnStaleVersion gives up.
func applyDroneChange(
	ctx context.Context,
	factory DroneUoWFactory,
	droneID kernel.UUID,
	change func(d *drone.Drone) error,
) (*drone.Drone, error) {
	var result *drone.Drone
	err := retryOnStaleVersion(ctx, func() error {
		uow := factory.Create()
		if err := uow.Begin(ctx); err != nil {
			return err
		}

		defer func() {
			_ = uow.Rollback(ctx)
		}()

		d, err := uow.DroneRepository().Get(ctx, droneID)
		if err != nil {
			return err
		}
		if err = change(d); err != nil {
			return err
		}
		if err = uow.DroneRepository().Update(ctx, d); err != nil {
			return err
		}
		if err = uow.Commit(ctx); err != nil {
			return err
		}

		result = d
		return nil
	})
	return result, err
}
