package commands

import (
	"context"
	"time"

	"dronedispatch/internal/core/domain/model/drone"
	"dronedispatch/internal/core/domain/model/kernel"
	"dronedispatch/internal/core/domain/model/mission"
	"dronedispatch/internal/core/domain/model/order"
	"dronedispatch/internal/core/domain/services"
	"dronedispatch/internal/core/ports"
)

// SystemActorID is recorded in the order history for changes made by the dispatcher.
const SystemActorID = "drone-dispatch"

// missionChange mutates a loaded mission. It must not touch other aggregates.
type missionChange func(m *mission.Mission, now time.Time) error

// missionOutcome is what a committed mission change wrote.
type missionOutcome struct {
	mission  *mission.Mission
	previous mission.Status
	drone    *drone.Drone
	order    *order.Order
}

// applyMissionChange runs change in its own transaction and mirrors the resulting
// status onto the drone and the order. A lost compare-and-swap reloads everything
// and applies change again, so concurrent status updates serialise.
func applyMissionChange(
	ctx context.Context,
	factory UoWFactory,
	missionID kernel.UUID,
	change missionChange,
) (missionOutcome, error) {
	var outcome missionOutcome
	err := retryOnStaleVersion(ctx, func() error {
		var err error
		outcome, err = applyMissionChangeOnce(ctx, factory, missionID, change)
		return err
	})
	return outcome, err
}

// applyMissionChangeOnce is one attempt of applyMissionChange. The drone and the
// order are only touched when the mission status actually changed.
func applyMissionChangeOnce(
	ctx context.Context,
	factory UoWFactory,
	missionID kernel.UUID,
	change missionChange,
) (missionOutcome, error) {
	uow := factory.Create()
	if err := uow.Begin(ctx); err != nil {
		return missionOutcome{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	m, err := uow.MissionRepository().Get(ctx, missionID)
	if err != nil {
		return missionOutcome{}, err
	}

	outcome := missionOutcome{mission: m, previous: m.Status()}
	now := time.Now().UTC()
	if err = change(m, now); err != nil {
		return missionOutcome{}, err
	}

	if err = uow.MissionRepository().Update(ctx, m); err != nil {
		return missionOutcome{}, err
	}

	if m.Status() != outcome.previous {
		if outcome.drone, err = mirrorOnDrone(ctx, uow, m); err != nil {
			return missionOutcome{}, err
		}
		if outcome.order, err = projectOnOrder(ctx, uow, m, now); err != nil {
			return missionOutcome{}, err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return missionOutcome{}, err
	}

	return outcome, nil
}

// mirrorOnDrone returns the drone only when the mirror changed it.
func mirrorOnDrone(ctx context.Context, uow UoW, m *mission.Mission) (*drone.Drone, error) {
	d, err := uow.DroneRepository().Get(ctx, m.DroneID())
	if err != nil {
		return nil, err
	}

	status, reserved := d.Status(), d.IsReserved()
	if err = d.MirrorMissionStatus(m.ID(), m.Status()); err != nil {
		return nil, err
	}
	if d.Status() == status && d.IsReserved() == reserved {
		return nil, nil //nolint:nilnil // nothing to persist
	}

	if err = uow.DroneRepository().Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// projectOnOrder returns the order only when its status changed. Orders that
// reached a terminal status elsewhere are left alone.
func projectOnOrder(ctx context.Context, uow UoW, m *mission.Mission, now time.Time) (*order.Order, error) {
	target, ok := services.OrderStatusFor(m.Status())
	if !ok {
		return nil, nil //nolint:nilnil // status has no order counterpart
	}

	o, err := uow.OrderRepository().Get(ctx, m.OrderID())
	if err != nil {
		return nil, err
	}
	if o.Status() == target || o.Status().IsTerminal() {
		return nil, nil //nolint:nilnil // already projected
	}

	timeline := m.Timeline()
	note := m.Number() + ": " + timeline[len(timeline)-1].Note
	if err = o.UpdateStatus(target, SystemActorID, note, now); err != nil {
		return nil, err
	}
	if err = uow.OrderRepository().Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// publishMissionOutcome announces the mission change and, when they changed,
// the drone and the order.
func publishMissionOutcome(ctx context.Context, publisher *Publisher, outcome missionOutcome) {
	publisher.MissionChanged(ctx, missionEventFor(outcome.mission.Status()),
		newMissionEvent(outcome.mission, outcome.previous))
	if outcome.drone != nil {
		publisher.Emit(ctx, ports.ChannelDrone, ports.EventDroneUpdated, newDroneEvent(outcome.drone))
	}
	if outcome.order != nil {
		publisher.Emit(ctx, ports.ChannelRestaurant, ports.EventOrderStatus, newOrderEvent(outcome.order))
	}
}

// missionEventFor picks the event name: terminal statuses have their own events.
func missionEventFor(status mission.Status) string {
	switch status {
	case mission.Completed:
		return ports.EventMissionCompleted
	case mission.Aborted:
		return ports.EventMissionAborted
	case mission.Failed:
		return ports.EventMissionFailed
	default:
		return ports.EventMissionStatus
	}
}
