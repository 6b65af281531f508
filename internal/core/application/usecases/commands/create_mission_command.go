package commands

import (
	"errors"

	"dronedispatch/internal/core/domain/model/kernel"
	"dronedispatch/internal/pkg/guard"
)

var ErrCreateMissionCommandIsNotConstructed = errors.New(
	"CreateMissionCommand must be created via NewCreateMissionCommand constructor",
)

// CreateMissionCommand asks for a mission that delivers an order. Without a drone
// id the closest feasible drone of the order's restaurant is chosen.
//
// Example:
//
//	cmd, err := NewCreateMissionCommand(orderID, &droneID, actorID)
//	if err != nil {
//	    return err
//	}
//	m, err := handler.Handle(ctx, cmd)
type CreateMissionCommand struct {
	orderID kernel.UUID
	droneID *kernel.UUID
	actorID string

	guard guard.ConstructorGuard
}

// NewCreateMissionCommand creates a command to dispatch an order.
// A nil droneID lets the handler pick the closest feasible drone; the id is
// copied so later changes by the caller have no effect.
func NewCreateMissionCommand(orderID kernel.UUID, droneID *kernel.UUID, actorID string) (CreateMissionCommand, error) {
	if err := orderID.Validate(); err != nil {
		return CreateMissionCommand{}, err
	}
	if droneID != nil {
		if err := droneID.Validate(); err != nil {
			return CreateMissionCommand{}, err
		}
		id := *droneID
		droneID = &id
	}
	if actorID == "" {
		actorID = SystemActorID
	}

	return CreateMissionCommand{
		orderID: orderID,
		droneID: droneID,
		actorID: actorID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrCreateMissionCommandIsNotConstructed if validation fails.
func (c CreateMissionCommand) Validate() error {
	return c.guard.Validate(ErrCreateMissionCommandIsNotConstructed)
}

// OrderID returns the identifier of the order.
func (c CreateMissionCommand) OrderID() kernel.UUID {
	return c.orderID
}

// DroneID returns the requested drone, or nil when the dispatcher should choose.
func (c CreateMissionCommand) DroneID() *kernel.UUID {
	if c.droneID == nil {
		return nil
	}
	id := *c.droneID
	return &id
}

// ActorID returns who requested the change, recorded in the history.
func (c CreateMissionCommand) ActorID() string {
	return c.actorID
}
