package commands

import (
	"time"

	"dronedispatch/internal/core/domain/model/drone"
	"dronedispatch/internal/core/domain/model/mission"
	"dronedispatch/internal/core/domain/model/order"
)

// MissionEvent is the payload of every mission lifecycle notification.
// PreviousStatus is empty for mission.created. FailureReason and FailureCode are
// only set for aborted and failed missions; a set code also routes the event to
// the alerts channel.
type MissionEvent struct {
	MissionID       string    `json:"missionId"`
	MissionNumber   string    `json:"missionNumber"`
	OrderID         string    `json:"orderId"`
	DroneID         string    `json:"droneId"`
	RestaurantID    string    `json:"restaurantId"`
	Status          string    `json:"status"`
	PreviousStatus  string    `json:"previousStatus,omitempty"`
	Note            string    `json:"note,omitempty"`
	ProgressPercent int       `json:"progressPercent"`
	FailureReason   string    `json:"failureReason,omitempty"`
	FailureCode     string    `json:"failureCode,omitempty"`
	OccurredAt      time.Time `json:"occurredAt"`
}

// PartitionKey keeps the events of one mission in order on partitioned transports.
func (e MissionEvent) PartitionKey() string {
	return e.MissionID
}

// newMissionEvent describes m after a change from previous. Pass mission.Unknown
// for a mission that was just created.
func newMissionEvent(m *mission.Mission, previous mission.Status) MissionEvent {
	timeline := m.Timeline()
	last := timeline[len(timeline)-1]

	event := MissionEvent{
		MissionID:       m.ID().String(),
		MissionNumber:   m.Number(),
		OrderID:         m.OrderID().String(),
		DroneID:         m.DroneID().String(),
		RestaurantID:    m.RestaurantID().String(),
		Status:          m.Status().String(),
		Note:            last.Note,
		ProgressPercent: mission.ProgressPercent(m),
		OccurredAt:      last.Timestamp,
	}
	if previous != mission.Unknown && previous != m.Status() {
		event.PreviousStatus = previous.String()
	}
	if f := m.Failure(); f != nil {
		event.FailureReason = f.Reason
		event.FailureCode = f.Code
	}
	return event
}

// TelemetryEvent carries one accepted path point.
type TelemetryEvent struct {
	MissionID       string    `json:"missionId"`
	MissionNumber   string    `json:"missionNumber"`
	DroneID         string    `json:"droneId"`
	Lat             float64   `json:"lat"`
	Lng             float64   `json:"lng"`
	AltitudeM       float64   `json:"altitude"`
	Heading         float64   `json:"heading"`
	SpeedKmh        float64   `json:"speed"`
	BatteryPercent  float64   `json:"batteryPercent"`
	TravelledKm     float64   `json:"travelledKm"`
	ProgressPercent int       `json:"progressPercent"`
	Timestamp       time.Time `json:"timestamp"`
}

// PartitionKey keeps the telemetry of one mission in order.
func (e TelemetryEvent) PartitionKey() string {
	return e.MissionID
}

func newTelemetryEvent(m *mission.Mission, point mission.PathPoint) TelemetryEvent {
	return TelemetryEvent{
		MissionID:       m.ID().String(),
		MissionNumber:   m.Number(),
		DroneID:         m.DroneID().String(),
		Lat:             point.Location.Lat(),
		Lng:             point.Location.Lng(),
		AltitudeM:       point.AltitudeM,
		Heading:         point.Heading,
		SpeedKmh:        point.SpeedKmh,
		BatteryPercent:  point.BatteryPercent,
		TravelledKm:     m.TravelledKm(),
		ProgressPercent: mission.ProgressPercent(m),
		Timestamp:       point.Timestamp,
	}
}

// DroneEvent describes the state of a drone after a change.
type DroneEvent struct {
	DroneID          string  `json:"droneId"`
	Serial           string  `json:"serial"`
	RestaurantID     string  `json:"restaurantId"`
	Status           string  `json:"status"`
	Health           string  `json:"health"`
	BatteryPercent   float64 `json:"batteryPercent"`
	Lat              float64 `json:"lat"`
	Lng              float64 `json:"lng"`
	AltitudeM        float64 `json:"altitude"`
	CurrentMissionID string  `json:"currentMissionId,omitempty"`
}

// PartitionKey keeps the events of one drone in order.
func (e DroneEvent) PartitionKey() string {
	return e.DroneID
}

func newDroneEvent(d *drone.Drone) DroneEvent {
	event := DroneEvent{
		DroneID:        d.ID().String(),
		Serial:         d.Serial(),
		RestaurantID:   d.RestaurantID().String(),
		Status:         d.Status().String(),
		Health:         d.Health().String(),
		BatteryPercent: d.BatteryPercent(),
		Lat:            d.Position().Location().Lat(),
		Lng:            d.Position().Location().Lng(),
		AltitudeM:      d.Position().Altitude(),
	}
	if id := d.CurrentMissionID(); id != nil {
		event.CurrentMissionID = id.String()
	}
	return event
}

// OrderEvent reports a change of the order status.
type OrderEvent struct {
	OrderID      string    `json:"orderId"`
	RestaurantID string    `json:"restaurantId"`
	Status       string    `json:"status"`
	ActorID      string    `json:"actorId,omitempty"`
	Note         string    `json:"note,omitempty"`
	ChangedAt    time.Time `json:"changedAt"`
}

// PartitionKey keeps the events of one order in order.
func (e OrderEvent) PartitionKey() string {
	return e.OrderID
}

func newOrderEvent(o *order.Order) OrderEvent {
	event := OrderEvent{
		OrderID:      o.ID().String(),
		RestaurantID: o.RestaurantID().String(),
		Status:       o.Status().String(),
	}
	if history := o.History(); len(history) > 0 {
		last := history[len(history)-1]
		event.ActorID = last.ActorID
		event.Note = last.Note
		event.ChangedAt = last.At
	}
	return event
}
