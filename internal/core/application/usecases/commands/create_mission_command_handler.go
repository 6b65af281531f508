package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dronedispatch/internal/core/domain/model/drone"
	"dronedispatch/internal/core/domain/model/kernel"
	"dronedispatch/internal/core/domain/model/mission"
	"dronedispatch/internal/core/domain/model/order"
	"dronedispatch/internal/core/domain/services"
	"dronedispatch/internal/core/ports"
	"dronedispatch/internal/pkg/errs"
)

// CreateMissionCommandHandler plans, numbers and persists a new mission, reserves
// its drone and moves the order IN_FLIGHT in one transaction. Every feasibility
// check runs before the first write, so a rejected request leaves no trace.
//
// Example:
//
//	handler := NewCreateMissionCommandHandler(uowFactory, planner, publisher)
//	cmd, _ := NewCreateMissionCommand(orderID, nil, "dispatcher-7")
//	m, err := handler.Handle(ctx, cmd)
//	switch {
//	case errs.ReasonOf(err) != "":
//	    log.Printf("order cannot be flown: %v", err)
//	case errors.Is(err, errs.ErrStateConflict):
//	    log.Println("order already dispatched or drone taken")
//	case err != nil:
//	    log.Printf("dispatch failed: %v", err)
//	default:
//	    log.Printf("mission %s created", m.Number())
//	}
type CreateMissionCommandHandler struct {
	uowFactory UoWFactory
	planner    services.MissionPlanner
	selector   services.DroneSelector
	publisher  *Publisher
}

// NewCreateMissionCommandHandler creates a handler for create mission requests.
func NewCreateMissionCommandHandler(
	uowFactory UoWFactory,
	planner services.MissionPlanner,
	publisher *Publisher,
) CreateMissionCommandHandler {
	return CreateMissionCommandHandler{
		uowFactory: uowFactory,
		planner:    planner,
		selector:   services.NewDroneSelector(planner),
		publisher:  publisher,
	}
}

// Handle creates the mission and returns it with its number and plan.
//
// Returns:
//   - ValidationError with a reason code when the pairing is infeasible
//   - StateConflictError when the order already has a mission or the drone was
//     reserved concurrently
//   - ObjectNotFoundError for an unknown order or drone
func (h CreateMissionCommandHandler) Handle(ctx context.Context, command CreateMissionCommand) (*mission.Mission, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	m, d, o, err := h.create(ctx, command)
	if err != nil {
		return nil, err
	}

	h.publisher.MissionChanged(ctx, ports.EventMissionCreated, newMissionEvent(m, mission.Unknown))
	h.publisher.Emit(ctx, ports.ChannelDrone, ports.EventDroneUpdated, newDroneEvent(d))
	h.publisher.Emit(ctx, ports.ChannelRestaurant, ports.EventOrderStatus, newOrderEvent(o))

	return m, nil
}

// create runs the whole dispatch in one transaction: load the order, pick a drone,
// number the mission, then write mission, reservation and order together.
func (h CreateMissionCommandHandler) create(
	ctx context.Context,
	command CreateMissionCommand,
) (*mission.Mission, *drone.Drone, *order.Order, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	o, err := uow.OrderRepository().Get(ctx, command.OrderID())
	if err != nil {
		return nil, nil, nil, err
	}

	if err = h.ensureNoMission(ctx, uow, o); err != nil {
		return nil, nil, nil, err
	}

	d, plan, err := h.choose(ctx, uow, o, command.DroneID())
	if err != nil {
		return nil, nil, nil, err
	}

	// The counter row is locked until commit, so numbers are never reused.
	now := time.Now().UTC()
	seq, err := uow.MissionSequenceRepository().Next(ctx, mission.SequenceDay(now))
	if err != nil {
		return nil, nil, nil, err
	}

	m, err := mission.NewMission(
		kernel.NewUUID(), mission.FormatNumber(now, seq),
		o.ID(), o.RestaurantID(), d.ID(),
		plan, now,
	)
	if err != nil {
		return nil, nil, nil, err
	}

	if err = d.Reserve(m.ID()); err != nil {
		return nil, nil, nil, err
	}
	if err = o.UpdateStatus(order.InFlight, command.ActorID(),
		fmt.Sprintf("Mission %s assigned to drone %s", m.Number(), d.Serial()), now); err != nil {
		return nil, nil, nil, err
	}

	if err = uow.MissionRepository().Add(ctx, m); err != nil {
		return nil, nil, nil, err
	}
	// Loses with a StateConflictError when another mission reserved d first.
	if err = uow.DroneRepository().Reserve(ctx, d); err != nil {
		return nil, nil, nil, err
	}
	if err = uow.OrderRepository().Update(ctx, o); err != nil {
		return nil, nil, nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, nil, nil, err
	}

	return m, d, o, nil
}

// ensureNoMission rejects a second mission for the same order. The unique index
// on missions.order_id still guards the race between two requests.
func (h CreateMissionCommandHandler) ensureNoMission(ctx context.Context, uow UoW, o *order.Order) error {
	existing, err := uow.MissionRepository().GetByOrderID(ctx, o.ID())
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return nil
	case err != nil:
		return err
	default:
		return errs.NewStateConflictError("order", o.ID(),
			fmt.Sprintf("order %s already has mission %s", o.ID(), existing.Number()))
	}
}

// choose plans with the requested drone or, without one, lets the selector pick
// among the restaurant's idle drones.
func (h CreateMissionCommandHandler) choose(
	ctx context.Context,
	uow UoW,
	o *order.Order,
	droneID *kernel.UUID,
) (*drone.Drone, mission.Plan, error) {
	if droneID != nil {
		d, err := uow.DroneRepository().Get(ctx, *droneID)
		if err != nil {
			return nil, mission.Plan{}, err
		}
		plan, err := h.planner.Plan(o, d)
		if err != nil {
			return nil, mission.Plan{}, err
		}
		return d, plan, nil
	}

	drones, err := uow.DroneRepository().GetIdleByRestaurant(ctx, o.RestaurantID())
	if err != nil {
		return nil, mission.Plan{}, err
	}
	return h.selector.Select(o, drones)
}
