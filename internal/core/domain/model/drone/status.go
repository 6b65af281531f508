package drone

import (
	"fmt"

	"dronedispatch/internal/pkg/errs"
)

// Status is the operational state of a drone.
//
// Statuses fall in two groups. IDLE, CHARGING, MAINTENANCE and ERROR are set by
// operators through SetOperationalStatus. PREPARING, IN_FLIGHT and RETURNING
// are only reachable while the drone holds a mission and follow its progress:
//
//	IDLE -> PREPARING -> IN_FLIGHT -> RETURNING -> IDLE
//	          |              |
//	          +--------------+-------> IDLE (mission aborted or failed)
type Status int

const (
	// StatusUnknown represents an invalid or undefined status.
	StatusUnknown Status = iota

	// Idle drones are parked and free; the only status a drone is dispatched from.
	Idle

	// Preparing drones hold a mission that has not taken off yet.
	Preparing

	// Charging drones are docked and unavailable until an operator sets them IDLE.
	Charging

	// Maintenance drones are out of service.
	Maintenance

	// InFlight drones are carrying an order.
	InFlight

	// Returning drones have delivered and are flying back.
	Returning

	// Error drones reported a fault and wait for an operator.
	Error
)

// getStatusStrings maps each status to its wire name.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		StatusUnknown: "UNKNOWN",
		Idle:          "IDLE",
		Preparing:     "PREPARING",
		Charging:      "CHARGING",
		Maintenance:   "MAINTENANCE",
		InFlight:      "IN_FLIGHT",
		Returning:     "RETURNING",
		Error:         "ERROR",
	}
}

// ParseStatus converts a wire name such as "IN_FLIGHT" into a Status.
// It returns a ValueIsInvalidError for unknown names, including "UNKNOWN".
func ParseStatus(s string) (Status, error) {
	for status, name := range getStatusStrings() {
		if status != StatusUnknown && name == s {
			return status, nil
		}
	}
	return StatusUnknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a drone status", s))
}

// Validate checks that s is one of the defined statuses.
// Used on values read from the database or the API before they reach the aggregate.
func (s Status) Validate() error {
	if s <= StatusUnknown || s > Error {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid drone status", s))
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

// IsOnMission reports whether s is only reachable through a reservation.
func (s Status) IsOnMission() bool {
	return s == Preparing || s == InFlight || s == Returning
}

// Health is the self-reported condition of a drone.
// Only CRITICAL affects dispatch; WARNING is informational.
type Health int

const (
	// HealthUnknown represents an invalid or undefined health.
	HealthUnknown Health = iota

	// Healthy drones report no fault.
	Healthy

	// Warning drones report a degraded component but may still fly.
	Warning

	// Critical drones must not be dispatched.
	Critical
)

// getHealthStrings maps health levels to their wire names.
func getHealthStrings() map[Health]string {
	return map[Health]string{
		HealthUnknown: "UNKNOWN",
		Healthy:       "HEALTHY",
		Warning:       "WARNING",
		Critical:      "CRITICAL",
	}
}

// ParseHealth converts a wire name such as "WARNING" into a Health.
func ParseHealth(s string) (Health, error) {
	for health, name := range getHealthStrings() {
		if health != HealthUnknown && name == s {
			return health, nil
		}
	}
	return HealthUnknown, errs.NewValueIsInvalidErrorWithCause("health", fmt.Errorf("%q is not a drone health", s))
}

// Validate checks that h is one of the defined health values.
func (h Health) Validate() error {
	if h <= HealthUnknown || h > Critical {
		return errs.NewValueIsInvalidErrorWithCause("health", fmt.Errorf("%d is not a valid drone health", h))
	}
	return nil
}

// String returns the wire name of the health, "UNKNOWN" for invalid values.
func (h Health) String() string {
	if str, ok := getHealthStrings()[h]; ok {
		return str
	}
	return "UNKNOWN"
}
