package order

import (
	"fmt"

	"dronedispatch/internal/pkg/errs"
)

// Status mirrors the lifecycle state of an order owned by the order service.
//
// Allowed moves:
//
//	PENDING -> CONFIRMED -> PREPARING -> READY_FOR_PICKUP -> IN_FLIGHT -> DELIVERED
//	                                                            |
//	                                                            +-------> FAILED
//
// The restaurant may skip ahead along the kitchen part of the chain (for example
// PENDING -> READY_FOR_PICKUP) but never move back. CANCELLED is reachable from
// every non-terminal state. DELIVERED, FAILED and CANCELLED are terminal.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	Unknown Status = iota

	// Pending is an order placed but not yet confirmed by the restaurant.
	Pending

	// Confirmed orders were accepted by the restaurant.
	Confirmed

	// Preparing orders are being cooked.
	Preparing

	// ReadyForPickup is the only status a mission can be planned from.
	ReadyForPickup

	// InFlight orders are carried by a drone.
	InFlight

	// Delivered is the terminal success state.
	Delivered

	// Failed orders lost their mission to an abort or a failure.
	Failed

	// Cancelled orders were withdrawn by the customer or the restaurant.
	Cancelled
)

// getStatusStrings maps statuses to their wire names.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:        "UNKNOWN",
		Pending:        "PENDING",
		Confirmed:      "CONFIRMED",
		Preparing:      "PREPARING",
		ReadyForPickup: "READY_FOR_PICKUP",
		InFlight:       "IN_FLIGHT",
		Delivered:      "DELIVERED",
		Failed:         "FAILED",
		Cancelled:      "CANCELLED",
	}
}

// ParseStatus converts the wire name of a status, as used by the order service.
func ParseStatus(s string) (Status, error) {
	for status, name := range getStatusStrings() {
		if status != Unknown && name == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not an order status", s))
}

// Validate checks if the Status value is one of the defined statuses.
//
// This method is used to ensure Status values from external sources
// (e.g., database, API) are valid before use.
func (s Status) Validate() error {
	if s <= Unknown || s > Cancelled {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid order status", s))
	}
	return nil
}

// String returns the wire name of the status, "UNKNOWN" for invalid values.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// getTransitions returns the successors of each non-terminal status.
func getTransitions() map[Status][]Status {
	return map[Status][]Status{
		Pending:        {Confirmed, Preparing, ReadyForPickup, Cancelled},
		Confirmed:      {Preparing, ReadyForPickup, Cancelled},
		Preparing:      {ReadyForPickup, Cancelled},
		ReadyForPickup: {InFlight, Cancelled},
		InFlight:       {Delivered, Failed, Cancelled},
	}
}

// CanTransitionTo reports whether the order may move from s to next.
//
// Example:
//
//	order.Preparing.CanTransitionTo(order.ReadyForPickup) // true
//	order.InFlight.CanTransitionTo(order.Pending)         // false
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range getTransitions()[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the order can no longer change.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Failed || s == Cancelled
}
