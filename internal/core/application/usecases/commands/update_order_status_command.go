package commands

import (
	"errors"
	"strings"

	"dronedispatch/internal/core/domain/model/kernel"
	"dronedispatch/internal/core/domain/model/order"
	"dronedispatch/internal/pkg/guard"
)

var ErrUpdateOrderStatusCommandIsNotConstructed = errors.New(
	"UpdateOrderStatusCommand must be created via NewUpdateOrderStatusCommand constructor",
)

// UpdateOrderStatusCommand mirrors a status change made in the order service,
// for instance the kitchen marking the order READY_FOR_PICKUP.
type UpdateOrderStatusCommand struct {
	orderID kernel.UUID
	status  order.Status
	actorID string
	note    string

	guard guard.ConstructorGuard
}

// NewUpdateOrderStatusCommand validates the input and creates the command.
// Returns a validation error for invalid input.
func NewUpdateOrderStatusCommand(orderID kernel.UUID, status order.Status, actorID, note string) (UpdateOrderStatusCommand, error) {
	if err := errors.Join(orderID.Validate(), status.Validate()); err != nil {
		return UpdateOrderStatusCommand{}, err
	}

	return UpdateOrderStatusCommand{
		orderID: orderID,
		status:  status,
		actorID: strings.TrimSpace(actorID),
		note:    strings.TrimSpace(note),
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrUpdateOrderStatusCommandIsNotConstructed if validation fails.
func (c UpdateOrderStatusCommand) Validate() error {
	return c.guard.Validate(ErrUpdateOrderStatusCommandIsNotConstructed)
}

// OrderID returns the identifier of the order.
func (c UpdateOrderStatusCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Status returns the requested status.
func (c UpdateOrderStatusCommand) Status() order.Status {
	return c.status
}

// ActorID returns who requested the change, recorded in the history.
func (c UpdateOrderStatusCommand) ActorID() string {
	return c.actorID
}

// Note returns the timeline note, empty for the default note.
func (c UpdateOrderStatusCommand) Note() string {
	return c.note
}
