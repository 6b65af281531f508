package drone

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"dronedispatch/internal/core/domain/geo"
	"dronedispatch/internal/core/domain/model/kernel"
	"dronedispatch/internal/core/domain/model/mission"
	"dronedispatch/internal/pkg/errs"
	"dronedispatch/internal/pkg/guard"
)

// Battery thresholds in percent.
const (
	// MinDispatchBatteryPercent is the lowest charge a drone may be dispatched with,
	// whatever the flight needs.
	MinDispatchBatteryPercent = 30.0

	MinBatteryPercent = 0.0
	MaxBatteryPercent = 100.0
)

// Validation reasons reported by CheckEligibility and UpdateLocation.
const (
	ReasonDroneNotIdle        = "DRONE_NOT_IDLE"
	ReasonDroneBatteryLow     = "DRONE_BATTERY_LOW"
	ReasonDroneHealthCritical = "DRONE_HEALTH_CRITICAL"
	ReasonOutsideGeofence     = "OUTSIDE_GEOFENCE"
)

// Domain errors for drone operations.
var (
	// ErrSerialIsRequired is returned when a drone is registered without a serial.
	ErrSerialIsRequired = errs.NewValueIsRequiredError("serial")
	// ErrDroneIsNotConstructed is returned when using an improperly initialized Drone.
	ErrDroneIsNotConstructed = errors.New("Drone must be created via NewDrone or RestoreDrone constructor")
)

// Drone represents one delivery drone of a restaurant's fleet.
// It is the aggregate root for drone availability and physical state, and the
// owner of the exclusive mission slot that guarantees a drone serves at most one
// active mission.
//
// Key responsibilities:
//   - Deciding whether the drone may be dispatched (CheckEligibility)
//   - Holding the mission slot (Reserve, Release)
//   - Following the mission it serves (MirrorMissionStatus)
//   - Accepting location and battery reports within its limits
//
// Business rules:
//   - A drone is eligible only when IDLE, charged to MinDispatchBatteryPercent,
//     not CRITICAL and not reserved
//   - A reserved drone is PREPARING, IN_FLIGHT or RETURNING, never anything else
//   - Location updates outside the drone's geofence are rejected
//   - Battery readings are clamped to [0, 100]
//   - Operators may not change the status of a reserved drone
//
// Example usage:
//
//	d, err := drone.NewDrone(kernel.NewUUID(), restaurantID, "DR-001", "Quad X4",
//	    drone.Specs{PayloadMaxGrams: 2000, RangeKm: 10, SpeedKmh: 60},
//	    position, 100, nil)
//	if err != nil {
//	    // Handle construction error
//	}
//	if err = d.Reserve(missionID); err != nil {
//	    // Drone is busy, low or grounded
//	}
type Drone struct {
	// id uniquely identifies the drone
	id kernel.UUID
	// restaurantID is the restaurant that owns and dispatches the drone
	restaurantID kernel.UUID
	// serial is the unique airframe serial number
	serial string
	// model is the free-form airframe model name
	model string
	// specs are the payload, range and speed limits used by the planner
	specs Specs
	// status is the operational state, driven by missions while reserved
	status Status
	// health is the self-reported condition; CRITICAL blocks dispatch
	health Health
	// position is the last reported position
	position kernel.Position
	// batteryPercent is the last battery reading, always within [0, 100]
	batteryPercent float64
	// geofence restricts where the drone may fly; nil means unrestricted
	geofence *geo.Geofence
	// currentMissionID is the exclusive mission slot; nil when free
	currentMissionID *kernel.UUID
	// version is the optimistic concurrency counter of the stored row
	version int
	// guard ensures the drone was properly constructed
	guard guard.ConstructorGuard
}

// NewDrone registers an IDLE, HEALTHY drone.
// This is the way to create a drone that did not exist before; stored drones are
// rehydrated with RestoreDrone.
//
// Parameters:
//   - id: unique identifier of the drone
//   - restaurantID: owning restaurant
//   - serial: airframe serial, must not be blank
//   - model: free-form model name, may be empty
//   - specs: capability limits, all strictly positive
//   - position: initial position, must lie inside geofence
//   - batteryPercent: initial charge within [0, 100]
//   - geofence: allowed area; nil leaves the drone unrestricted
//
// Returns:
//   - *Drone: the registered drone with version 0
//   - error: joined validation errors of every invalid argument, or a
//     ValidationError with reason OUTSIDE_GEOFENCE for the position
func NewDrone(
	id kernel.UUID,
	restaurantID kernel.UUID,
	serial string,
	model string,
	specs Specs,
	position kernel.Position,
	batteryPercent float64,
	geofence *geo.Geofence,
) (*Drone, error) {
	d := &Drone{
		model:  model,
		status: Idle,
		health: Healthy,
		guard:  guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		d.setID(id),
		d.setRestaurantID(restaurantID),
		d.setSerial(serial),
		d.setSpecs(specs),
		d.setGeofence(geofence),
		d.setBattery(batteryPercent),
	); err != nil {
		return nil, err
	}

	if err := d.UpdateLocation(position); err != nil {
		return nil, err
	}

	return d, nil
}

// RestoreDrone rehydrates a persisted drone. Position is not checked against the
// geofence here because telemetry may legitimately have recorded a stray reading.
// The status must be consistent with the slot: a drone holding a mission must be
// PREPARING, IN_FLIGHT or RETURNING.
func RestoreDrone(
	id kernel.UUID,
	restaurantID kernel.UUID,
	serial string,
	model string,
	specs Specs,
	status Status,
	health Health,
	position kernel.Position,
	batteryPercent float64,
	geofence *geo.Geofence,
	currentMissionID *kernel.UUID,
	version int,
) (*Drone, error) {
	d := &Drone{
		model:   model,
		version: version,
		guard:   guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		d.setID(id),
		d.setRestaurantID(restaurantID),
		d.setSerial(serial),
		d.setSpecs(specs),
		d.setGeofence(geofence),
		d.setBattery(batteryPercent),
		d.setPosition(position),
		d.setStatus(status, currentMissionID),
		health.Validate(),
	); err != nil {
		return nil, err
	}
	d.health = health

	return d, nil
}

// Validate reports ErrDroneIsNotConstructed for a nil drone or one that was not
// created with NewDrone or RestoreDrone.
func (d *Drone) Validate() error {
	if d == nil {
		return ErrDroneIsNotConstructed
	}
	return d.guard.Validate(ErrDroneIsNotConstructed)
}

// IsEqual compares drones by identity.
func (d *Drone) IsEqual(other *Drone) bool {
	return other != nil && d.id.IsEqual(other.id)
}

// ID returns the drone identifier.
func (d *Drone) ID() kernel.UUID {
	return d.id
}

// RestaurantID returns the owning restaurant.
func (d *Drone) RestaurantID() kernel.UUID {
	return d.restaurantID
}

// Serial returns the airframe serial number.
func (d *Drone) Serial() string {
	return d.serial
}

// Model returns the airframe model name.
func (d *Drone) Model() string {
	return d.model
}

// Specs returns the capability limits the planner checks orders against.
func (d *Drone) Specs() Specs {
	return d.specs
}

// Status returns the operational state.
func (d *Drone) Status() Status {
	return d.status
}

// Health returns the self-reported condition.
func (d *Drone) Health() Health {
	return d.health
}

// Position returns the last reported position.
func (d *Drone) Position() kernel.Position {
	return d.position
}

// BatteryPercent returns the last battery reading.
func (d *Drone) BatteryPercent() float64 {
	return d.batteryPercent
}

// Geofence returns a copy of the fence, or nil when the drone is unrestricted.
func (d *Drone) Geofence() *geo.Geofence {
	if d.geofence == nil {
		return nil
	}
	fence := *d.geofence
	return &fence
}

// CurrentMissionID returns a copy of the mission slot, nil when the drone is free.
func (d *Drone) CurrentMissionID() *kernel.UUID {
	if d.currentMissionID == nil {
		return nil
	}
	id := *d.currentMissionID
	return &id
}

// Version is the optimistic concurrency counter the repository compares on update.
func (d *Drone) Version() int {
	return d.version
}

// IncrementVersion records that the repository stored the drone under the next
// version. Only repositories call it, after a successful conditional write.
func (d *Drone) IncrementVersion() {
	d.version++
}

// IsReserved reports whether the mission slot is taken.
// A reserved drone cannot be reserved again or have its status set by an operator.
func (d *Drone) IsReserved() bool {
	return d.currentMissionID != nil
}

// IsEligible reports whether the drone may be assigned a new mission.
// It is a shorthand for CheckEligibility() == nil.
func (d *Drone) IsEligible() bool {
	return d.CheckEligibility() == nil
}

// CheckEligibility explains why the drone may not be dispatched.
//
// Checks run in order and the first failure is returned:
//   - the mission slot is free, otherwise a StateConflictError
//   - the status is IDLE, otherwise DRONE_NOT_IDLE
//   - the battery is at least MinDispatchBatteryPercent, otherwise DRONE_BATTERY_LOW
//   - the health is not CRITICAL, otherwise DRONE_HEALTH_CRITICAL
//
// Returns:
//   - error: nil for an eligible drone; ValidationErrors carry the drone id and
//     the offending value
//
// Example:
//
//	if err := d.CheckEligibility(); err != nil {
//	    switch errs.ReasonOf(err) {
//	    case drone.ReasonDroneBatteryLow:
//	        // Send the drone to charge
//	    }
//	}
func (d *Drone) CheckEligibility() error {
	if d.currentMissionID != nil {
		return errs.NewStateConflictError("drone", d.id,
			fmt.Sprintf("drone %s is already reserved by mission %s", d.serial, d.currentMissionID))
	}

	if d.status != Idle {
		return errs.NewValidationError(ReasonDroneNotIdle,
			fmt.Sprintf("drone %s is %s, not IDLE", d.serial, d.status),
			map[string]any{"droneId": d.id.String(), "status": d.status.String()})
	}

	if d.batteryPercent < MinDispatchBatteryPercent {
		return errs.NewValidationError(ReasonDroneBatteryLow,
			fmt.Sprintf("drone %s battery %s%% is below the dispatch minimum of %s%%",
				d.serial, formatNumber(d.batteryPercent), formatNumber(MinDispatchBatteryPercent)),
			map[string]any{"droneId": d.id.String(), "batteryPercent": d.batteryPercent, "minBatteryPercent": MinDispatchBatteryPercent})
	}

	if d.health == Critical {
		return errs.NewValidationError(ReasonDroneHealthCritical,
			fmt.Sprintf("drone %s health is CRITICAL", d.serial),
			map[string]any{"droneId": d.id.String(), "health": d.health.String()})
	}

	return nil
}

// Reserve takes the exclusive mission slot and moves the drone to PREPARING.
//
// Parameters:
//   - missionID: the mission the drone will fly
//
// Returns:
//   - error: a validation error for an invalid id, or the CheckEligibility error
//
// Business rules:
//   - Only an eligible drone can be reserved
//   - The repository persists the reservation with a conditional update, so two
//     reservations racing for the same drone cannot both be stored
//
// State changes:
//   - currentMissionID is set to missionID
//   - status becomes PREPARING
//
// Example:
//
//	if err := d.Reserve(m.ID()); err != nil {
//	    return err
//	}
//	err = uow.DroneRepository().Reserve(ctx, d)
func (d *Drone) Reserve(missionID kernel.UUID) error {
	if err := missionID.Validate(); err != nil {
		return err
	}
	if err := d.CheckEligibility(); err != nil {
		return err
	}

	d.currentMissionID = &missionID
	d.status = Preparing
	return nil
}

// Release frees the mission slot and returns the drone to IDLE.
// Called when the mission the drone was serving reaches a terminal status.
func (d *Drone) Release() {
	d.currentMissionID = nil
	d.status = Idle
}

// MirrorMissionStatus projects the status of the mission the drone is serving:
//
//	TAKEOFF, CRUISING, APPROACHING  -> IN_FLIGHT
//	DELIVERED, RETURNING            -> RETURNING
//	COMPLETED, ABORTED, FAILED      -> IDLE, slot cleared
//
// Other statuses leave the drone unchanged.
//
// Parameters:
//   - missionID: the mission that changed
//   - status: its new status
//
// Returns:
//   - error: a StateConflictError when the drone does not hold missionID. A
//     terminal status for an already released drone is accepted silently so
//     that replays after a crash are harmless.
func (d *Drone) MirrorMissionStatus(missionID kernel.UUID, status mission.Status) error {
	if err := status.Validate(); err != nil {
		return err
	}

	if d.currentMissionID == nil || !d.currentMissionID.IsEqual(missionID) {
		if d.currentMissionID == nil && status.IsTerminal() {
			return nil
		}
		return errs.NewStateConflictError("drone", d.id,
			fmt.Sprintf("drone %s is not assigned to mission %s", d.serial, missionID))
	}

	switch status {
	case mission.Takeoff, mission.Cruising, mission.Approaching:
		d.status = InFlight
	case mission.Delivered, mission.Returning:
		d.status = Returning
	case mission.Completed, mission.Aborted, mission.Failed:
		d.Release()
	default:
	}

	return nil
}

// UpdateLocation accepts a position reported by the drone outside of a mission.
//
// Parameters:
//   - position: the reported position
//
// Returns:
//   - error: a validation error for an invalid position, or an OUTSIDE_GEOFENCE
//     ValidationError when the location leaves the drone's geofence. For a circle
//     fence the error carries the distance from the center and the radius.
//
// Business rules:
//   - A drone without a geofence accepts any valid location
//   - A rejected position leaves the stored position unchanged
//
// Example:
//
//	pos, _ := kernel.NewPosition(loc, 0, 0)
//	if err := d.UpdateLocation(pos); err != nil {
//	    // errs.ReasonOf(err) == drone.ReasonOutsideGeofence
//	}
func (d *Drone) UpdateLocation(position kernel.Position) error {
	if err := position.Validate(); err != nil {
		return err
	}

	if !geo.IsWithinGeofence(position.Location(), d.geofence) {
		values := map[string]any{
			"droneId": d.id.String(),
			"lat":     position.Location().Lat(),
			"lng":     position.Location().Lng(),
		}
		msg := fmt.Sprintf("location %s is outside the geofence of drone %s", position.Location(), d.serial)
		if d.geofence.Kind() == geo.FenceCircle {
			distance := geo.DistanceKm(position.Location(), d.geofence.Center())
			values["distanceKm"] = distance
			values["radiusKm"] = d.geofence.RadiusKm()
			msg = fmt.Sprintf("location %s is %skm from the geofence center of drone %s, radius is %skm",
				position.Location(), formatNumber(distance), d.serial, formatNumber(d.geofence.RadiusKm()))
		}
		return errs.NewValidationError(ReasonOutsideGeofence, msg, values)
	}

	d.position = position
	return nil
}

// UpdateBattery stores a battery reading clamped to [0, 100].
// Readings outside the range are not an error: sensors overshoot near full and
// empty charge. NaN is rejected.
func (d *Drone) UpdateBattery(percent float64) error {
	if math.IsNaN(percent) {
		return errs.NewValueIsInvalidError("batteryPercent")
	}
	d.batteryPercent = clampBattery(percent)
	return nil
}

// RecordTelemetry mirrors a mission telemetry sample onto the drone. Unlike
// UpdateLocation it never rejects the position: the geofence only guards
// positions reported while the drone is parked.
func (d *Drone) RecordTelemetry(position kernel.Position, batteryPercent float64) error {
	if err := position.Validate(); err != nil {
		return err
	}
	if err := d.UpdateBattery(batteryPercent); err != nil {
		return err
	}

	d.position = position
	return nil
}

// SetOperationalStatus lets an operator take an unreserved drone in or out of
// service. Only IDLE, CHARGING, MAINTENANCE and ERROR can be set this way.
//
// Parameters:
//   - status: one of the operator statuses
//   - health: the reported health
//
// Returns:
//   - error: a validation error for a mission status, or a StateConflictError
//     while the drone is serving a mission
//
// Example:
//
//	err := d.SetOperationalStatus(drone.Charging, drone.Healthy)
func (d *Drone) SetOperationalStatus(status Status, health Health) error {
	if err := errors.Join(status.Validate(), health.Validate()); err != nil {
		return err
	}
	if status.IsOnMission() {
		return errs.NewValueIsInvalidErrorWithCause("status",
			fmt.Errorf("%s is only reachable through a mission", status))
	}
	if d.currentMissionID != nil {
		return errs.NewStateConflictError("drone", d.id,
			fmt.Sprintf("drone %s is serving mission %s", d.serial, d.currentMissionID))
	}

	d.status = status
	d.health = health
	return nil
}

// setID sets the drone's unique identifier with validation.
// This is an internal setter used during drone construction.
func (d *Drone) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	d.id = id
	return nil
}

// setRestaurantID sets the owning restaurant with validation.
func (d *Drone) setRestaurantID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("restaurantId", err)
	}
	d.restaurantID = id
	return nil
}

// setSerial trims and stores the serial. An empty serial is ErrSerialIsRequired.
func (d *Drone) setSerial(serial string) error {
	serial = strings.TrimSpace(serial)
	if serial == "" {
		return ErrSerialIsRequired
	}
	d.serial = serial
	return nil
}

// setSpecs sets the airframe limits with validation.
// This is an internal setter used during drone construction and restoration.
func (d *Drone) setSpecs(specs Specs) error {
	if err := specs.Validate(); err != nil {
		return err
	}
	d.specs = specs
	return nil
}

// setGeofence stores a copy of fence. A nil fence removes the restriction.
func (d *Drone) setGeofence(fence *geo.Geofence) error {
	if fence == nil {
		d.geofence = nil
		return nil
	}
	if err := fence.Validate(); err != nil {
		return err
	}
	copied := *fence
	d.geofence = &copied
	return nil
}

// setBattery rejects values outside of [MinBatteryPercent, MaxBatteryPercent].
// UpdateBattery clamps with clampBattery instead of failing.
func (d *Drone) setBattery(percent float64) error {
	if math.IsNaN(percent) || percent < MinBatteryPercent || percent > MaxBatteryPercent {
		return errs.NewValueIsOutOfRangeError("batteryPercent", percent, MinBatteryPercent, MaxBatteryPercent)
	}
	d.batteryPercent = percent
	return nil
}

// setPosition sets the last known position with validation.
func (d *Drone) setPosition(position kernel.Position) error {
	if err := position.Validate(); err != nil {
		return err
	}
	d.position = position
	return nil
}

// setStatus sets the operational status and the reservation slot together.
// A drone may only hold a mission while in an on-mission status.
// This is an internal setter used during drone restoration.
func (d *Drone) setStatus(status Status, currentMissionID *kernel.UUID) error {
	if err := status.Validate(); err != nil {
		return err
	}

	if currentMissionID != nil {
		if err := currentMissionID.Validate(); err != nil {
			return err
		}
		if !status.IsOnMission() {
			return errs.NewValueIsInvalidErrorWithCause("status",
				fmt.Errorf("%s is not a valid status for a drone serving a mission", status))
		}
		id := *currentMissionID
		d.currentMissionID = &id
	}

	d.status = status
	return nil
}

// clampBattery limits percent to the valid battery range.
func clampBattery(percent float64) float64 {
	return math.Max(MinBatteryPercent, math.Min(MaxBatteryPercent, percent))
}

// formatNumber renders v with at most one decimal and no trailing zeros, e.g. 24.0 as "24".
func formatNumber(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.1f", v), "0"), ".")
}
