package mission

import (
	"fmt"

	"dronedispatch/internal/pkg/errs"
)

// Status is the state of a mission.
//
//	QUEUED -> PREPARING -> TAKEOFF -> CRUISING -> APPROACHING -> LANDING -> DELIVERED -> RETURNING -> COMPLETED
//	                                     |                                                  ^
//	                                     +--------------------------------------------------+
//
// Every non-terminal state can move to ABORTED, and every state from TAKEOFF on can
// move to FAILED. COMPLETED, ABORTED and FAILED are terminal.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	Unknown Status = iota

	// Queued missions are planned and hold a reserved drone.
	Queued
	// Preparing missions are being loaded at the restaurant.
	Preparing
	// Takeoff is the first airborne status; the mission start time is set here.
	Takeoff
	// Cruising missions fly to the customer, or turn back early to RETURNING.
	Cruising
	// Approaching missions are near the delivery location.
	Approaching
	// Landing missions are descending to drop off the order.
	Landing
	// Delivered missions have dropped off the order; the delivery time is set here.
	Delivered
	// Returning missions fly the drone back to the restaurant.
	Returning

	// Completed missions are closed and have actuals.
	Completed
	// Aborted missions were cancelled before they finished.
	Aborted
	// Failed missions ended in flight because of a fault.
	Failed
)

// getStatusStrings maps statuses to their wire names.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:     "UNKNOWN",
		Queued:      "QUEUED",
		Preparing:   "PREPARING",
		Takeoff:     "TAKEOFF",
		Cruising:    "CRUISING",
		Approaching: "APPROACHING",
		Landing:     "LANDING",
		Delivered:   "DELIVERED",
		Returning:   "RETURNING",
		Completed:   "COMPLETED",
		Aborted:     "ABORTED",
		Failed:      "FAILED",
	}
}

// getTransitions is the transition table. Terminal statuses have no entry.
func getTransitions() map[Status][]Status {
	return map[Status][]Status{
		Queued:      {Preparing, Aborted},
		Preparing:   {Takeoff, Aborted},
		Takeoff:     {Cruising, Aborted, Failed},
		Cruising:    {Approaching, Returning, Aborted, Failed},
		Approaching: {Landing, Aborted, Failed},
		Landing:     {Delivered, Aborted, Failed},
		Delivered:   {Returning, Aborted, Failed},
		Returning:   {Completed, Aborted, Failed},
	}
}

// getDefaultNotes holds the timeline note of each status.
func getDefaultNotes() map[Status]string {
	return map[Status]string{
		Queued:      "Mission created and queued for dispatch",
		Preparing:   "Drone is preparing for flight",
		Takeoff:     "Drone is taking off",
		Cruising:    "Drone is cruising to the delivery location",
		Approaching: "Drone is approaching the delivery location",
		Landing:     "Drone is landing at the delivery location",
		Delivered:   "Package delivered",
		Returning:   "Drone is returning to base",
		Completed:   "Mission completed",
		Aborted:     "Mission aborted",
		Failed:      "Mission failed",
	}
}

// ParseStatus converts the wire name of a status.
func ParseStatus(s string) (Status, error) {
	for status, name := range getStatusStrings() {
		if status != Unknown && name == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a mission status", s))
}

// Validate checks that s is one of the defined statuses.
func (s Status) Validate() error {
	if s <= Unknown || s > Failed {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid mission status", s))
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

// IsTerminal reports whether no transition leaves s.
func (s Status) IsTerminal() bool {
	return s == Completed || s == Aborted || s == Failed
}

// IsFailure reports whether s records a failure block.
func (s Status) IsFailure() bool {
	return s == Aborted || s == Failed
}

// CanTransitionTo reports whether the transition table lists s -> next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range getTransitions()[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// AllowedTransitions lists the successors of s in table order.
func (s Status) AllowedTransitions() []Status {
	return append([]Status(nil), getTransitions()[s]...)
}

// DefaultNote is the timeline note used when a transition carries none.
func (s Status) DefaultNote() string {
	return getDefaultNotes()[s]
}

// AllStatuses lists every valid status in lifecycle order.
func AllStatuses() []Status {
	return []Status{Queued, Preparing, Takeoff, Cruising, Approaching, Landing, Delivered, Returning, Completed, Aborted, Failed}
}
