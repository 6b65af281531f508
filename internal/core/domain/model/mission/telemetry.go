package mission

import (
	"errors"
	"math"
	"time"

	"dronedispatch/internal/core/domain/model/kernel"
	"dronedispatch/internal/pkg/errs"
)

// Telemetry is a drone-reported sample before it is stamped and appended to a path.
//
// Example:
//
//	sample := mission.Telemetry{Location: loc, AltitudeM: 100, Heading: 90, SpeedKmh: 55, BatteryPercent: 81}
//	point, err := m.AddPathPoint(sample, time.Now())
type Telemetry struct {
	// Location is the reported GPS fix.
	Location kernel.Location
	// AltitudeM is the height above ground in meters.
	AltitudeM float64
	// Heading is the compass direction in degrees, [0, 360).
	Heading float64
	// SpeedKmh is the ground speed.
	SpeedKmh float64
	// BatteryPercent is the remaining charge, [0, 100].
	BatteryPercent float64
}

// Validate checks the location, a non-negative altitude and speed, a heading
// in [0, 360) and a battery level in [0, 100]. All problems are joined.
func (t Telemetry) Validate() error {
	var errList []error
	if err := t.Location.Validate(); err != nil {
		errList = append(errList, err)
	}
	if t.AltitudeM < 0 || math.IsNaN(t.AltitudeM) {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("altitude", errors.New("must not be negative")))
	}
	if t.Heading < 0 || t.Heading >= kernel.MaxHeading || math.IsNaN(t.Heading) {
		errList = append(errList, errs.NewValueIsOutOfRangeError("heading", t.Heading, 0, kernel.MaxHeading))
	}
	if t.SpeedKmh < 0 || math.IsNaN(t.SpeedKmh) {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("speed", errors.New("must not be negative")))
	}
	if t.BatteryPercent < 0 || t.BatteryPercent > 100 || math.IsNaN(t.BatteryPercent) {
		errList = append(errList, errs.NewValueIsOutOfRangeError("batteryPercent", t.BatteryPercent, 0, 100))
	}
	return errors.Join(errList...)
}

// Position converts the sample to a drone position.
func (t Telemetry) Position() (kernel.Position, error) {
	return kernel.NewPosition(t.Location, t.AltitudeM, t.Heading)
}

// PathPoint is a telemetry sample stamped by the server.
type PathPoint struct {
	Telemetry
	Timestamp time.Time
}

// TimelineEntry records one status the mission entered. Location and
// BatteryPercent come from the last telemetry point when one exists.
type TimelineEntry struct {
	Status         Status
	Timestamp      time.Time
	Note           string
	Location       *kernel.Location
	BatteryPercent *float64
}

// Failure explains why a mission ended ABORTED or FAILED.
type Failure struct {
	// Reason is the human readable cause, e.g. "lost link".
	Reason string
	// Code is a machine readable cause, UNSPECIFIED for generic status updates.
	Code string
	// Description carries optional detail.
	Description string
	// OccurredAt is the timestamp of the ABORTED or FAILED timeline entry.
	OccurredAt time.Time
	// Location is where the mission ended, nil without telemetry.
	Location *kernel.Location
}

// FailureDetails describe an abort or a failure as reported by the caller.
// A nil Location defaults to the last telemetry point.
type FailureDetails struct {
	Reason      string
	Code        string
	Description string
	Location    *kernel.Location
}

// Validate requires a reason and a code, and a valid location when one is set.
func (d FailureDetails) Validate() error {
	var errList []error
	if d.Reason == "" {
		errList = append(errList, errs.NewValueIsRequiredError("reason"))
	}
	if d.Code == "" {
		errList = append(errList, errs.NewValueIsRequiredError("code"))
	}
	if d.Location != nil {
		errList = append(errList, d.Location.Validate())
	}
	return errors.Join(errList...)
}

// Actuals are measured over the recorded path when the mission completes.
// Speeds are in km/h and BatteryConsumption in percent.
type Actuals struct {
	DistanceKm         float64
	DurationMinutes    int
	BatteryConsumption float64
	MaxSpeed           float64
	AverageSpeed       float64
}
