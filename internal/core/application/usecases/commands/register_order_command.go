package commands

import (
	"errors"

	"dronedispatch/internal/core/domain/model/kernel"
	"dronedispatch/internal/core/domain/model/order"
	"dronedispatch/internal/pkg/errs"
	"dronedispatch/internal/pkg/guard"
)

var ErrRegisterOrderCommandIsNotConstructed = errors.New(
	"RegisterOrderCommand must be created via NewRegisterOrderCommand constructor",
)

// RegisterOrderCommand imports an order from the order service into the local
// projection the dispatcher plans against.
type RegisterOrderCommand struct {
	orderID            kernel.UUID
	restaurantID       kernel.UUID
	customerID         kernel.UUID
	items              []order.Item
	restaurantLocation kernel.Location
	deliveryLocation   *kernel.Location
	status             order.Status
	actorID            string

	guard guard.ConstructorGuard
}

// NewRegisterOrderCommand validates the input and creates the command.
// Returns a validation error for invalid input.
func NewRegisterOrderCommand(
	orderID, restaurantID, customerID kernel.UUID,
	items []order.Item,
	restaurantLocation kernel.Location,
	deliveryLocation *kernel.Location,
	status order.Status,
	actorID string,
) (RegisterOrderCommand, error) {
	var itemErrs []error
	if len(items) == 0 {
		itemErrs = append(itemErrs, errs.NewValueIsRequiredError("items"))
	}
	for _, item := range items {
		itemErrs = append(itemErrs, item.Validate())
	}

	if err := errors.Join(
		orderID.Validate(),
		restaurantID.Validate(),
		customerID.Validate(),
		restaurantLocation.Validate(),
		status.Validate(),
		errors.Join(itemErrs...),
	); err != nil {
		return RegisterOrderCommand{}, err
	}

	c := RegisterOrderCommand{
		orderID:            orderID,
		restaurantID:       restaurantID,
		customerID:         customerID,
		items:              append([]order.Item(nil), items...),
		restaurantLocation: restaurantLocation,
		status:             status,
		actorID:            actorID,
		guard:              guard.NewConstructorGuard(),
	}
	if deliveryLocation != nil {
		if err := deliveryLocation.Validate(); err != nil {
			return RegisterOrderCommand{}, err
		}
		loc := *deliveryLocation
		c.deliveryLocation = &loc
	}
	return c, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrRegisterOrderCommandIsNotConstructed if validation fails.
func (c RegisterOrderCommand) Validate() error {
	return c.guard.Validate(ErrRegisterOrderCommandIsNotConstructed)
}

// OrderID returns the identifier of the order.
func (c RegisterOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// RestaurantID returns the owning restaurant.
func (c RegisterOrderCommand) RestaurantID() kernel.UUID {
	return c.restaurantID
}

// CustomerID returns the customer who placed the order.
func (c RegisterOrderCommand) CustomerID() kernel.UUID {
	return c.customerID
}

// Items returns a copy of the order lines.
func (c RegisterOrderCommand) Items() []order.Item {
	return append([]order.Item(nil), c.items...)
}

// RestaurantLocation returns the pickup point.
func (c RegisterOrderCommand) RestaurantLocation() kernel.Location {
	return c.restaurantLocation
}

// DeliveryLocation returns the drop-off point, nil while not geocoded.
func (c RegisterOrderCommand) DeliveryLocation() *kernel.Location {
	if c.deliveryLocation == nil {
		return nil
	}
	loc := *c.deliveryLocation
	return &loc
}

// Status returns the requested status.
func (c RegisterOrderCommand) Status() order.Status {
	return c.status
}

// ActorID returns who requested the change, recorded in the history.
func (c RegisterOrderCommand) ActorID() string {
	return c.actorID
}
