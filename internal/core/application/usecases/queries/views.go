// Package queries contains the read side of the dispatch service. Handlers read
// straight from the database into view models shaped for the API and tracking
// screens; nothing here goes through the aggregates.
package queries

import "time"

// LocationView is a latitude and longitude pair in degrees.
type LocationView struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// WaypointView is one point of the planned route. Action is TAKEOFF, CRUISE or
// LAND.
type WaypointView struct {
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	AltitudeM float64 `json:"altitude"`
	Action    string  `json:"action"`
}

// RouteView is the planned flight from the restaurant to the customer.
type RouteView struct {
	Pickup    LocationView   `json:"pickup"`
	Delivery  LocationView   `json:"delivery"`
	Waypoints []WaypointView `json:"waypoints"`
}

// EstimatesView holds the planner estimates taken when the mission was created.
type EstimatesView struct {
	DistanceKm         float64 `json:"distanceKm"`
	EtaMinutes         int     `json:"etaMinutes"`
	BatteryConsumption int     `json:"batteryConsumption"`
}

// ParametersView holds the flight parameters the planner chose. BatteryRequired
// includes the reserve.
type ParametersView struct {
	PayloadGrams    int     `json:"payloadGrams"`
	CruiseAltitudeM float64 `json:"cruiseAltitude"`
	SpeedKmh        float64 `json:"speed"`
	BatteryRequired int     `json:"batteryRequired"`
}

// ActualsView holds the figures measured over the flight path. MissionView only
// carries it once the mission is COMPLETED.
type ActualsView struct {
	DistanceKm         float64 `json:"distanceKm"`
	DurationMinutes    int     `json:"durationMinutes"`
	BatteryConsumption float64 `json:"batteryConsumption"`
	MaxSpeed           float64 `json:"maxSpeed"`
	AverageSpeed       float64 `json:"averageSpeed"`
}

// PathPointView is one telemetry sample recorded while the drone was flying.
type PathPointView struct {
	Lat            float64   `json:"lat"`
	Lng            float64   `json:"lng"`
	AltitudeM      float64   `json:"altitude"`
	Heading        float64   `json:"heading"`
	SpeedKmh       float64   `json:"speed"`
	BatteryPercent float64   `json:"batteryPercent"`
	Timestamp      time.Time `json:"timestamp"`
}

// TimelineEntryView is one status change with the drone state at that moment,
// when the change came with telemetry.
type TimelineEntryView struct {
	Status         string        `json:"status"`
	Timestamp      time.Time     `json:"timestamp"`
	Note           string        `json:"note"`
	Location       *LocationView `json:"location,omitempty"`
	BatteryPercent *float64      `json:"batteryPercent,omitempty"`
}

// FailureView explains why a mission was aborted or failed.
type FailureView struct {
	Reason      string        `json:"reason"`
	Code        string        `json:"code"`
	Description string        `json:"description,omitempty"`
	OccurredAt  time.Time     `json:"occurredAt"`
	Location    *LocationView `json:"location,omitempty"`
}

// MissionView is the full tracking view of one mission. It is what the mission
// cache stores.
type MissionView struct {
	ID              string              `json:"id"`
	Number          string              `json:"missionNumber"`
	OrderID         string              `json:"orderId"`
	RestaurantID    string              `json:"restaurantId"`
	DroneID         string              `json:"droneId"`
	DroneSerial     string              `json:"droneSerial"`
	Status          string              `json:"status"`
	ProgressPercent int                 `json:"progressPercent"`
	DurationMinutes int                 `json:"durationMinutes"`
	Route           RouteView           `json:"route"`
	Estimates       EstimatesView       `json:"estimates"`
	Parameters      ParametersView      `json:"parameters"`
	Actuals         *ActualsView        `json:"actuals,omitempty"`
	TravelledKm     float64             `json:"travelledKm"`
	Path            []PathPointView     `json:"path"`
	Timeline        []TimelineEntryView `json:"timeline"`
	Failure         *FailureView        `json:"failure,omitempty"`
	CreatedAt       time.Time           `json:"createdAt"`
	StartedAt       *time.Time          `json:"startedAt,omitempty"`
	DeliveredAt     *time.Time          `json:"deliveredAt,omitempty"`
	CompletedAt     *time.Time          `json:"completedAt,omitempty"`
}

// MissionSummaryView is one row of the active missions board.
type MissionSummaryView struct {
	ID              string    `json:"id"`
	Number          string    `json:"missionNumber"`
	OrderID         string    `json:"orderId"`
	RestaurantID    string    `json:"restaurantId"`
	DroneID         string    `json:"droneId"`
	DroneSerial     string    `json:"droneSerial"`
	Status          string    `json:"status"`
	ProgressPercent int       `json:"progressPercent"`
	EtaMinutes      int       `json:"etaMinutes"`
	CreatedAt       time.Time `json:"createdAt"`
	LastEventAt     time.Time `json:"lastEventAt"`
}

// DroneView is the API shape of a drone, returned by the drone queries and by
// the drone commands.
type DroneView struct {
	ID               string     `json:"id"`
	RestaurantID     string     `json:"restaurantId"`
	Serial           string     `json:"serial"`
	Model            string     `json:"model"`
	Status           string     `json:"status"`
	Health           string     `json:"health"`
	BatteryPercent   float64    `json:"batteryPercent"`
	Lat              float64    `json:"lat"`
	Lng              float64    `json:"lng"`
	AltitudeM        float64    `json:"altitude"`
	Heading          float64    `json:"heading"`
	PayloadMaxGrams  int        `json:"payloadMaxGrams"`
	RangeKm          float64    `json:"rangeKm"`
	SpeedKmh         float64    `json:"speedKmh"`
	CurrentMissionID *string    `json:"currentMissionId,omitempty"`
	UpdatedAt        *time.Time `json:"updatedAt,omitempty"`
}
