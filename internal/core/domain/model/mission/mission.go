package mission

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"dronedispatch/internal/core/domain/geo"
	"dronedispatch/internal/core/domain/model/kernel"
	"dronedispatch/internal/pkg/errs"
	"dronedispatch/internal/pkg/guard"
)

// CodeUnspecified is the failure code recorded when a generic status update
// moves a mission to ABORTED or FAILED.
const CodeUnspecified = "UNSPECIFIED"

var (
	// ErrNumberIsRequired is returned when a mission is built without a number.
	ErrNumberIsRequired = errs.NewValueIsRequiredError("missionNumber")
	// ErrMissionIsNotConstructed is returned when a Mission was not created through
	// NewMission or RestoreMission.
	ErrMissionIsNotConstructed = errors.New("Mission must be created via NewMission or RestoreMission constructor")
)

// Mission is the aggregate root that tracks one drone carrying one order.
//
// Key responsibilities:
//   - Holds the planned route, estimates and planning parameters
//   - Advances through the mission lifecycle and keeps a timeline of every move
//   - Accumulates the telemetry path and the distance travelled
//   - Records why an aborted or failed mission ended
//   - Computes actual duration and battery use on completion
//
// Business rules:
//   - A mission is created QUEUED and only moves along the transition table of Status
//   - Terminal missions accept no further transitions or telemetry
//   - ABORTED and FAILED missions always carry a Failure
//   - Path timestamps are strictly increasing
//
// Example usage:
//
//	m, err := mission.NewMission(id, number, orderID, restaurantID, droneID, plan, now)
//	if err != nil {
//	    // Handle error
//	}
//	err = m.Transition(mission.Preparing, "", now)
type Mission struct {
	// id is the unique identifier of the mission.
	id kernel.UUID
	// number is the human-readable mission number, e.g. MSN2503140001.
	number string
	// orderID references the order being delivered.
	orderID kernel.UUID
	// restaurantID references the pickup restaurant.
	restaurantID kernel.UUID
	// droneID references the drone flying the mission.
	droneID kernel.UUID
	// status is the current lifecycle status.
	status Status

	// route holds pickup, dropoff and the generated waypoints.
	route Route
	// estimates are the planned distance, duration and battery use.
	estimates Estimates
	// parameters are the planning inputs such as altitude and payload.
	parameters Parameters
	// actuals are filled in when the mission completes.
	actuals Actuals
	// travelled is the distance covered by the recorded path in kilometers.
	travelled float64
	// path is the ordered telemetry trail.
	path []PathPoint
	// timeline lists every status the mission entered.
	timeline []TimelineEntry
	// failure is set once the mission is aborted or failed.
	failure *Failure

	createdAt   time.Time
	startedAt   *time.Time
	deliveredAt *time.Time
	completedAt *time.Time

	// version is the optimistic concurrency counter.
	version int
	// guard ensures the mission was built by a constructor.
	guard guard.ConstructorGuard
}

// NewMission creates a QUEUED mission from a plan. The first timeline entry is
// stamped with now.
//
// Parameters:
//   - id: unique identifier of the mission
//   - number: mission number produced by FormatNumber
//   - orderID: the order being delivered
//   - restaurantID: the pickup restaurant
//   - droneID: the reserved drone
//   - plan: a plan created via NewPlan
//   - now: creation time
//
// Returns:
//   - *Mission: the new mission at version 0
//   - error: a validation error if the plan, an id or the number is missing
func NewMission(
	id kernel.UUID,
	number string,
	orderID kernel.UUID,
	restaurantID kernel.UUID,
	droneID kernel.UUID,
	plan Plan,
	now time.Time,
) (*Mission, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	m := &Mission{
		status:     Queued,
		route:      plan.Route(),
		estimates:  plan.Estimates(),
		parameters: plan.Parameters(),
		createdAt:  now,
		guard:      guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		m.setIDs(id, orderID, restaurantID, droneID),
		m.setNumber(number),
	); err != nil {
		return nil, err
	}

	m.timeline = []TimelineEntry{{
		Status:    Queued,
		Timestamp: now,
		Note:      Queued.DefaultNote(),
	}}

	return m, nil
}

// Snapshot is the persisted state of a mission. Repositories fill it from
// storage and hand it to RestoreMission.
type Snapshot struct {
	ID           kernel.UUID
	Number       string
	OrderID      kernel.UUID
	RestaurantID kernel.UUID
	DroneID      kernel.UUID
	Status       Status
	Route        Route
	Estimates    Estimates
	Parameters   Parameters
	Actuals      Actuals
	TravelledKm  float64
	Path         []PathPoint
	Timeline     []TimelineEntry
	Failure      *Failure
	CreatedAt    time.Time
	StartedAt    *time.Time
	DeliveredAt  *time.Time
	CompletedAt  *time.Time
	Version      int
}

// RestoreMission rebuilds a mission from storage without replaying its lifecycle.
// Slices and the failure are copied so the caller's snapshot stays untouched.
//
// Returns a validation error if an id, the number or the status is invalid, or
// if an ABORTED or FAILED snapshot carries no failure.
func RestoreMission(s Snapshot) (*Mission, error) {
	m := &Mission{
		route:       s.Route,
		estimates:   s.Estimates,
		parameters:  s.Parameters,
		actuals:     s.Actuals,
		travelled:   s.TravelledKm,
		path:        append([]PathPoint(nil), s.Path...),
		timeline:    append([]TimelineEntry(nil), s.Timeline...),
		createdAt:   s.CreatedAt,
		startedAt:   s.StartedAt,
		deliveredAt: s.DeliveredAt,
		completedAt: s.CompletedAt,
		version:     s.Version,
		guard:       guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		m.setIDs(s.ID, s.OrderID, s.RestaurantID, s.DroneID),
		m.setNumber(s.Number),
		s.Status.Validate(),
	); err != nil {
		return nil, err
	}
	m.status = s.Status

	if s.Status.IsFailure() && s.Failure == nil {
		return nil, errs.NewValueIsRequiredErrorWithCause("failure",
			fmt.Errorf("%s mission must carry a failure", s.Status))
	}
	if s.Failure != nil {
		failure := *s.Failure
		m.failure = &failure
	}

	return m, nil
}

// Validate checks that the mission was created through a constructor.
func (m *Mission) Validate() error {
	if m == nil {
		return ErrMissionIsNotConstructed
	}
	return m.guard.Validate(ErrMissionIsNotConstructed)
}

// ID returns the mission's unique identifier.
func (m *Mission) ID() kernel.UUID {
	return m.id
}

// Number returns the human-readable mission number.
func (m *Mission) Number() string {
	return m.number
}

// OrderID returns the delivered order's identifier.
func (m *Mission) OrderID() kernel.UUID {
	return m.orderID
}

// RestaurantID returns the pickup restaurant's identifier.
func (m *Mission) RestaurantID() kernel.UUID {
	return m.restaurantID
}

// DroneID returns the identifier of the drone flying the mission.
func (m *Mission) DroneID() kernel.UUID {
	return m.droneID
}

// Status returns the current lifecycle status.
func (m *Mission) Status() Status {
	return m.status
}

// Route returns a copy of the planned route.
func (m *Mission) Route() Route {
	r := m.route
	r.Waypoints = append([]geo.Waypoint(nil), m.route.Waypoints...)
	return r
}

// Estimates returns the planned distance, duration and battery use.
func (m *Mission) Estimates() Estimates {
	return m.estimates
}

// Parameters returns the planning inputs.
func (m *Mission) Parameters() Parameters {
	return m.parameters
}

// Actuals returns the measured results, zero until the mission completes.
func (m *Mission) Actuals() Actuals {
	return m.actuals
}

// TravelledKm is the cumulative haversine distance of the telemetry path so far.
func (m *Mission) TravelledKm() float64 {
	return m.travelled
}

// Path returns a copy of the recorded telemetry in arrival order.
func (m *Mission) Path() []PathPoint {
	return append([]PathPoint(nil), m.path...)
}

// Timeline returns a copy of the status history. It is never empty for a
// constructed mission.
func (m *Mission) Timeline() []TimelineEntry {
	return append([]TimelineEntry(nil), m.timeline...)
}

// Failure returns a copy of the recorded failure, nil unless ABORTED or FAILED.
func (m *Mission) Failure() *Failure {
	if m.failure == nil {
		return nil
	}
	f := *m.failure
	return &f
}

// CreatedAt returns when the mission was queued.
func (m *Mission) CreatedAt() time.Time {
	return m.createdAt
}

// StartedAt returns when the drone took off, nil before takeoff.
func (m *Mission) StartedAt() *time.Time {
	return copyTime(m.startedAt)
}

// DeliveredAt returns when the order was dropped off, nil before delivery.
func (m *Mission) DeliveredAt() *time.Time {
	return copyTime(m.deliveredAt)
}

// CompletedAt returns when the mission reached a terminal status.
func (m *Mission) CompletedAt() *time.Time {
	return copyTime(m.completedAt)
}

// Version is the optimistic concurrency counter the repository compares on update.
func (m *Mission) Version() int {
	return m.version
}

// IncrementVersion records that the repository stored the mission under the
// next version. Only repositories call it, after a successful conditional write.
func (m *Mission) IncrementVersion() {
	m.version++
}

// IsTerminal reports whether the mission is COMPLETED, ABORTED or FAILED.
func (m *Mission) IsTerminal() bool {
	return m.status.IsTerminal()
}

// LastPathPoint returns the most recent telemetry point, if any.
func (m *Mission) LastPathPoint() (PathPoint, bool) {
	if len(m.path) == 0 {
		return PathPoint{}, false
	}
	return m.path[len(m.path)-1], true
}

// Transition moves the mission to next. An empty note falls back to the default
// note of next.
//
// Parameters:
//   - next: the target status
//   - note: free text recorded on the timeline entry
//   - now: time of the change; a clock that did not advance is bumped by 1ms so
//     the timeline stays strictly ordered
//
// Returns:
//   - error: a validation error for an invalid status, or a StateConflictError
//     when the transition table does not allow the move or the mission is terminal
//
// Business rules:
//   - Moving to COMPLETED requires RETURNING and computes actuals
//   - Moving to ABORTED or FAILED records a failure with code UNSPECIFIED and the
//     note as its reason
//   - TAKEOFF stamps the start time, DELIVERED the delivery time
//
// Example:
//
//	if err := m.Transition(mission.Takeoff, "", time.Now()); err != nil {
//	    // errs.ErrStateConflict: the mission is not PREPARING
//	}
func (m *Mission) Transition(next Status, note string, now time.Time) error {
	if err := next.Validate(); err != nil {
		return err
	}

	switch {
	case next == Completed:
		return m.complete(note, now)
	case next.IsFailure():
		reason := strings.TrimSpace(note)
		if reason == "" {
			reason = next.DefaultNote()
		}
		return m.recordFailure(next, FailureDetails{Reason: reason, Code: CodeUnspecified}, now)
	default:
		return m.transition(next, note, now)
	}
}

// Complete closes a RETURNING mission and computes its actuals.
// Completing twice yields a StateConflictError naming the completed mission.
func (m *Mission) Complete(now time.Time) error {
	return m.complete("", now)
}

// Abort cancels a non-terminal mission.
//
// Business rules:
//   - details must carry a reason and a code
//   - Without an explicit location the failure takes the last telemetry point
//
// Example:
//
//	err := m.Abort(mission.FailureDetails{Reason: "customer cancelled", Code: "CANCELLED"}, now)
func (m *Mission) Abort(details FailureDetails, now time.Time) error {
	if err := details.Validate(); err != nil {
		return err
	}
	return m.recordFailure(Aborted, details, now)
}

// Fail marks an airborne mission as failed. QUEUED and PREPARING missions cannot
// fail; abort them instead.
func (m *Mission) Fail(details FailureDetails, now time.Time) error {
	if err := details.Validate(); err != nil {
		return err
	}
	return m.recordFailure(Failed, details, now)
}

// AddPathPoint appends a telemetry sample stamped with now.
//
// Parameters:
//   - sample: the drone-reported telemetry
//   - now: server time of receipt
//
// Returns:
//   - PathPoint: the stored point with its final timestamp
//   - error: a validation error for an invalid sample, or a StateConflictError
//     for a terminal mission
//
// Business rules:
//   - Timestamps are kept strictly increasing: a clock that did not advance
//     yields last+1ms
//   - The travelled distance grows by the haversine segment from the previous point
func (m *Mission) AddPathPoint(sample Telemetry, now time.Time) (PathPoint, error) {
	if err := sample.Validate(); err != nil {
		return PathPoint{}, err
	}
	if m.status.IsTerminal() {
		return PathPoint{}, errs.NewStateConflictError("mission", m.id,
			fmt.Sprintf("mission %s is %s and accepts no telemetry", m.number, m.status))
	}

	point := PathPoint{Telemetry: sample, Timestamp: now}
	if last, ok := m.LastPathPoint(); ok {
		if !point.Timestamp.After(last.Timestamp) {
			point.Timestamp = last.Timestamp.Add(time.Millisecond)
		}
		m.travelled += geo.DistanceKm(last.Location, sample.Location)
	}

	m.path = append(m.path, point)
	return point, nil
}

// complete runs the COMPLETED transition and fills in actuals.
func (m *Mission) complete(note string, now time.Time) error {
	if m.status == Completed {
		return errs.NewStateConflictError("mission", m.id,
			fmt.Sprintf("mission %s is already completed", m.number))
	}
	if m.status != Returning {
		return errs.NewTransitionError("mission", m.id, m.status.String(), Completed.String())
	}

	if err := m.transition(Completed, note, now); err != nil {
		return err
	}
	m.computeActuals()
	return nil
}

// recordFailure transitions to status and stores the failure. The failure time is
// the timestamp of the new timeline entry.
func (m *Mission) recordFailure(status Status, details FailureDetails, now time.Time) error {
	location := details.Location
	if location == nil {
		if last, ok := m.LastPathPoint(); ok {
			loc := last.Location
			location = &loc
		}
	}

	if err := m.transition(status, details.Reason, now); err != nil {
		return err
	}

	m.failure = &Failure{
		Reason:      details.Reason,
		Code:        details.Code,
		Description: details.Description,
		OccurredAt:  m.timeline[len(m.timeline)-1].Timestamp,
		Location:    location,
	}
	return nil
}

// transition applies a move allowed by the transition table and appends its
// timeline entry. It is the only place the status changes.
func (m *Mission) transition(next Status, note string, now time.Time) error {
	if m.status.IsTerminal() {
		return errs.NewStateConflictErrorWithCause("mission", m.id,
			fmt.Sprintf("mission %s is %s", m.number, m.status),
			errs.NewTransitionError("mission", m.id, m.status.String(), next.String()))
	}
	if !m.status.CanTransitionTo(next) {
		return errs.NewTransitionError("mission", m.id, m.status.String(), next.String())
	}

	if last := m.timeline; len(last) > 0 && !now.After(last[len(last)-1].Timestamp) {
		now = last[len(last)-1].Timestamp.Add(time.Millisecond)
	}

	note = strings.TrimSpace(note)
	if note == "" {
		note = next.DefaultNote()
	}

	entry := TimelineEntry{Status: next, Timestamp: now, Note: note}
	if point, ok := m.LastPathPoint(); ok {
		loc := point.Location
		battery := point.BatteryPercent
		entry.Location = &loc
		entry.BatteryPercent = &battery
	}

	switch next {
	case Takeoff:
		m.startedAt = copyTime(&now)
	case Delivered:
		m.deliveredAt = copyTime(&now)
	case Completed:
		m.completedAt = copyTime(&now)
	default:
	}

	m.status = next
	m.timeline = append(m.timeline, entry)
	return nil
}

// computeActuals derives the actuals from the path:
//   - distance is the travelled distance
//   - battery consumption is the first minus the last battery reading
//   - average speed is distance over the rounded duration, 0 for missions under
//     half a minute
func (m *Mission) computeActuals() {
	m.actuals.DistanceKm = m.travelled
	m.actuals.DurationMinutes = DurationMinutes(m, m.createdAt)

	if len(m.path) > 0 {
		first, last := m.path[0], m.path[len(m.path)-1]
		m.actuals.BatteryConsumption = first.BatteryPercent - last.BatteryPercent
	}

	var maxSpeed float64
	for _, p := range m.path {
		maxSpeed = math.Max(maxSpeed, p.SpeedKmh)
	}
	m.actuals.MaxSpeed = maxSpeed

	m.actuals.AverageSpeed = 0
	if m.actuals.DurationMinutes > 0 {
		m.actuals.AverageSpeed = m.actuals.DistanceKm / (float64(m.actuals.DurationMinutes) / 60)
	}
}

// setIDs sets the mission, order, restaurant and drone identifiers with validation.
// Every missing identifier is reported, not just the first one.
// This is an internal setter used during mission construction and restoration.
func (m *Mission) setIDs(id, orderID, restaurantID, droneID kernel.UUID) error {
	var errList []error
	for name, v := range map[string]kernel.UUID{
		"id":           id,
		"orderId":      orderID,
		"restaurantId": restaurantID,
		"droneId":      droneID,
	} {
		if err := v.Validate(); err != nil {
			errList = append(errList, errs.NewValueIsRequiredErrorWithCause(name, err))
		}
	}
	if err := errors.Join(errList...); err != nil {
		return err
	}

	m.id = id
	m.orderID = orderID
	m.restaurantID = restaurantID
	m.droneID = droneID
	return nil
}

// setNumber sets the human readable mission number. Only emptiness is checked,
// the format is owned by FormatNumber.
func (m *Mission) setNumber(number string) error {
	if strings.TrimSpace(number) == "" {
		return ErrNumberIsRequired
	}
	m.number = number
	return nil
}

// copyTime returns a pointer to a copy of *t so callers cannot mutate the aggregate.
func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
