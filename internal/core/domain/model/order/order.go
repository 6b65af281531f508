package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"dronedispatch/internal/core/domain/model/kernel"
	"dronedispatch/internal/pkg/errs"
	"dronedispatch/internal/pkg/guard"
)

// ErrOrderIsNotConstructed is returned when an Order instance was not created through
// NewOrder or RestoreOrder.
var ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder constructor")

// Item is one line of an order.
type Item struct {
	// Name is the menu item name.
	Name string
	// WeightGrams is the weight of a single unit.
	WeightGrams int
	// Quantity is the number of units, at least one.
	Quantity int
}

// Validate requires a name and a positive weight and quantity.
func (i Item) Validate() error {
	var errList []error
	if strings.TrimSpace(i.Name) == "" {
		errList = append(errList, errs.NewValueIsRequiredError("item.name"))
	}
	if i.WeightGrams <= 0 {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("item.weightGrams",
			fmt.Errorf("%d is not greater than 0", i.WeightGrams)))
	}
	if i.Quantity <= 0 {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("item.quantity",
			fmt.Errorf("%d is not greater than 0", i.Quantity)))
	}
	return errors.Join(errList...)
}

// StatusChange is one entry of the order status history.
type StatusChange struct {
	// Status is the status entered.
	Status Status
	// ActorID names who made the change, a user id or a service name.
	ActorID string
	// Note is optional free text.
	Note string
	// At is when the change was applied.
	At time.Time
}

// Order is the aggregate root of the local order projection.
//
// Invariants:
//   - id, restaurantID and customerID are valid UUIDs
//   - restaurantLocation is a valid location, deliveryLocation is nil until geocoded
//   - every item is valid
//   - the last history entry, when present, carries the current status
//
// Example usage:
//
//	o, err := order.NewOrder(id, restaurantID, customerID, items, restaurantLoc, &deliveryLoc,
//	    order.ReadyForPickup, "order-service", time.Now())
//	if err != nil {
//	    // Handle error
//	}
//	grams := o.TotalWeightGrams()
type Order struct {
	// id is the identifier assigned by the order service.
	id kernel.UUID
	// restaurantID references the restaurant preparing the order.
	restaurantID kernel.UUID
	// customerID references the customer receiving the order.
	customerID kernel.UUID
	// status is the current order status.
	status Status
	// items are the order lines, at least one.
	items []Item
	// restaurantLocation is the pickup point.
	restaurantLocation kernel.Location
	// deliveryLocation is nil until the address is geocoded.
	deliveryLocation *kernel.Location
	// history lists every status change, oldest first.
	history []StatusChange
	// guard ensures the order was built by a constructor.
	guard guard.ConstructorGuard
}

// NewOrder registers an order imported from the order service. The initial status
// is recorded as the first history entry on behalf of actorID.
//
// Parameters:
//   - id, restaurantID, customerID: valid identifiers
//   - items: at least one valid item
//   - restaurantLocation: pickup point
//   - deliveryLocation: nil until the address is geocoded
//   - status: initial status
//   - actorID, now: author and time of the first history entry
//
// Returns:
//   - *Order: the registered order
//   - error: all validation errors joined
func NewOrder(
	id kernel.UUID,
	restaurantID kernel.UUID,
	customerID kernel.UUID,
	items []Item,
	restaurantLocation kernel.Location,
	deliveryLocation *kernel.Location,
	status Status,
	actorID string,
	now time.Time,
) (*Order, error) {
	o := &Order{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setIDs(id, restaurantID, customerID),
		o.setItems(items),
		o.setLocations(restaurantLocation, deliveryLocation),
		status.Validate(),
	); err != nil {
		return nil, err
	}

	o.status = status
	o.history = []StatusChange{{Status: status, ActorID: actorID, Note: "Order registered", At: now}}
	return o, nil
}

// RestoreOrder rehydrates a persisted order. The history is taken as stored
// and no entry is added.
func RestoreOrder(
	id kernel.UUID,
	restaurantID kernel.UUID,
	customerID kernel.UUID,
	items []Item,
	restaurantLocation kernel.Location,
	deliveryLocation *kernel.Location,
	status Status,
	history []StatusChange,
) (*Order, error) {
	o := &Order{
		history: append([]StatusChange(nil), history...),
		guard:   guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setIDs(id, restaurantID, customerID),
		o.setItems(items),
		o.setLocations(restaurantLocation, deliveryLocation),
		status.Validate(),
	); err != nil {
		return nil, err
	}

	o.status = status
	return o, nil
}

// Validate checks that the order was created through a constructor.
func (o *Order) Validate() error {
	if o == nil {
		return ErrOrderIsNotConstructed
	}
	return o.guard.Validate(ErrOrderIsNotConstructed)
}

// IsEqual compares orders by identity.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// RestaurantID is the restaurant that prepares the order and owns the drones
// that may deliver it.
func (o *Order) RestaurantID() kernel.UUID {
	return o.restaurantID
}

// CustomerID is the customer the order is delivered to.
func (o *Order) CustomerID() kernel.UUID {
	return o.customerID
}

// Status returns the current order status.
func (o *Order) Status() Status {
	return o.status
}

// Items returns a copy of the order lines.
func (o *Order) Items() []Item {
	return append([]Item(nil), o.items...)
}

// RestaurantLocation is the pickup point of every mission for this order.
func (o *Order) RestaurantLocation() kernel.Location {
	return o.restaurantLocation
}

// DeliveryLocation returns nil while the delivery address is not geocoded.
func (o *Order) DeliveryLocation() *kernel.Location {
	if o.deliveryLocation == nil {
		return nil
	}
	loc := *o.deliveryLocation
	return &loc
}

// History returns the status changes in the order they happened.
func (o *Order) History() []StatusChange {
	return append([]StatusChange(nil), o.history...)
}

// TotalWeightGrams is the payload of the order, sum of weight times quantity.
func (o *Order) TotalWeightGrams() int {
	total := 0
	for _, item := range o.items {
		total += item.WeightGrams * item.Quantity
	}
	return total
}

// UpdateStatus moves the order to newStatus and appends a history entry.
//
// Business rules:
//   - newStatus must be a valid status
//   - setting the current status again is a no-op
//   - any move the Status table does not list, including every change of a
//     terminal order, is rejected with a StateConflictError
//
// Example:
//
//	if err := o.UpdateStatus(order.InFlight, "dispatch", "Mission MSN2610180001 created", time.Now()); err != nil {
//	    // errs.ErrStateConflict: the order is not READY_FOR_PICKUP
//	}
func (o *Order) UpdateStatus(newStatus Status, actorID, note string, now time.Time) error {
	if err := newStatus.Validate(); err != nil {
		return err
	}
	if o.status == newStatus {
		return nil
	}
	if !o.status.CanTransitionTo(newStatus) {
		return errs.NewTransitionError("order", o.id, o.status.String(), newStatus.String())
	}

	o.status = newStatus
	o.history = append(o.history, StatusChange{Status: newStatus, ActorID: actorID, Note: note, At: now})
	return nil
}

// SetDeliveryLocation stores the geocoded delivery address.
//
// Returns:
//   - error: a validation error for an invalid location, or a StateConflictError
//     for a DELIVERED, FAILED or CANCELLED order
func (o *Order) SetDeliveryLocation(location kernel.Location) error {
	if err := location.Validate(); err != nil {
		return err
	}
	if o.status.IsTerminal() {
		return errs.NewStateConflictError("order", o.id,
			fmt.Sprintf("order is %s and its delivery location is final", o.status))
	}
	o.deliveryLocation = &location
	return nil
}

// setIDs sets the order, restaurant and customer identifiers with validation.
// All three are checked before any is assigned, so the errors are reported together.
// This is an internal setter used during order construction and restoration.
func (o *Order) setIDs(id, restaurantID, customerID kernel.UUID) error {
	var errList []error
	if err := id.Validate(); err != nil {
		errList = append(errList, err)
	}
	if err := restaurantID.Validate(); err != nil {
		errList = append(errList, errs.NewValueIsRequiredErrorWithCause("restaurantId", err))
	}
	if err := customerID.Validate(); err != nil {
		errList = append(errList, errs.NewValueIsRequiredErrorWithCause("customerId", err))
	}
	if err := errors.Join(errList...); err != nil {
		return err
	}

	o.id = id
	o.restaurantID = restaurantID
	o.customerID = customerID
	return nil
}

// setItems validates every item and stores a copy of the slice.
// This is an internal setter used during order construction and restoration.
func (o *Order) setItems(items []Item) error {
	var errList []error
	for _, item := range items {
		if err := item.Validate(); err != nil {
			errList = append(errList, err)
		}
	}
	if err := errors.Join(errList...); err != nil {
		return err
	}

	o.items = append([]Item(nil), items...)
	return nil
}

// setLocations sets the pickup location and the optional delivery location.
// A nil delivery leaves the order waiting for geocoding.
func (o *Order) setLocations(restaurant kernel.Location, delivery *kernel.Location) error {
	if err := restaurant.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("restaurantLocation", err)
	}
	o.restaurantLocation = restaurant

	if delivery != nil {
		if err := delivery.Validate(); err != nil {
			return errs.NewValueIsRequiredErrorWithCause("deliveryLocation", err)
		}
		loc := *delivery
		o.deliveryLocation = &loc
	}
	return nil
}
