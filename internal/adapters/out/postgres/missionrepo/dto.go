package missionrepo

import (
	"encoding/json"
	"time"

	"dronedispatch/internal/core/domain/geo"
	"dronedispatch/internal/core/domain/model/kernel"
	"dronedispatch/internal/core/domain/model/mission"

	"github.com/google/uuid"
)

// MissionDTO is the row of the missions table. LastEventAt holds the newest of
// the last timeline entry and the last path point, so stale missions can be
// found with an index scan.
type MissionDTO struct {
	ID           uuid.UUID          `gorm:"type:uuid;primaryKey"`
	Number       string             `gorm:"uniqueIndex;not null"`
	OrderID      uuid.UUID          `gorm:"type:uuid;uniqueIndex;not null"`
	RestaurantID uuid.UUID          `gorm:"type:uuid;index;not null"`
	DroneID      uuid.UUID          `gorm:"type:uuid;index;not null"`
	Status       string             `gorm:"index;not null"`
	Route        RouteDTO           `gorm:"type:text;serializer:json"`
	Estimates    EstimatesDTO       `gorm:"embedded;embeddedPrefix:estimated_"`
	Parameters   ParametersDTO      `gorm:"embedded;embeddedPrefix:param_"`
	Actuals      ActualsDTO         `gorm:"embedded;embeddedPrefix:actual_"`
	TravelledKm  float64            `gorm:"not null;default:0"`
	Path         []PathPointDTO     `gorm:"type:text;serializer:json"`
	Timeline     []TimelineEntryDTO `gorm:"type:text;serializer:json"`
	Failure      *FailureDTO        `gorm:"type:text;serializer:json"`
	CreatedAt    time.Time          `gorm:"not null"`
	StartedAt    *time.Time
	DeliveredAt  *time.Time
	CompletedAt  *time.Time
	LastEventAt  time.Time `gorm:"index;not null"`
	Version      int       `gorm:"not null;default:0"`
}

func (MissionDTO) TableName() string {
	return "missions"
}

type LocationDTO struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type WaypointDTO struct {
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	AltitudeM float64 `json:"altitude"`
	Action    string  `json:"action"`
}

// RouteDTO is stored as one JSON document.
type RouteDTO struct {
	Pickup    LocationDTO   `json:"pickup"`
	Delivery  LocationDTO   `json:"delivery"`
	Waypoints []WaypointDTO `json:"waypoints"`
}

// EstimatesDTO, ParametersDTO and ActualsDTO are embedded as prefixed columns so
// reports can query them without parsing JSON.
type EstimatesDTO struct {
	DistanceKm         float64
	EtaMinutes         int
	BatteryConsumption int
}

type ParametersDTO struct {
	PayloadGrams    int
	CruiseAltitudeM float64
	SpeedKmh        float64
	BatteryRequired int
}

type ActualsDTO struct {
	DistanceKm         float64
	DurationMinutes    int
	BatteryConsumption float64
	MaxSpeed           float64
	AverageSpeed       float64
}

// PathPointDTO is one element of the path JSON array.
type PathPointDTO struct {
	Lat            float64   `json:"lat"`
	Lng            float64   `json:"lng"`
	AltitudeM      float64   `json:"altitude"`
	Heading        float64   `json:"heading"`
	SpeedKmh       float64   `json:"speed"`
	BatteryPercent float64   `json:"batteryPercent"`
	Timestamp      time.Time `json:"timestamp"`
}

type TimelineEntryDTO struct {
	Status         string       `json:"status"`
	Timestamp      time.Time    `json:"timestamp"`
	Note           string       `json:"note"`
	Location       *LocationDTO `json:"location,omitempty"`
	BatteryPercent *float64     `json:"batteryPercent,omitempty"`
}

type FailureDTO struct {
	Reason      string       `json:"reason"`
	Code        string       `json:"code"`
	Description string       `json:"description,omitempty"`
	OccurredAt  time.Time    `json:"occurredAt"`
	Location    *LocationDTO `json:"location,omitempty"`
}

// fromDomain flattens a mission into its row.
func fromDomain(m *mission.Mission) MissionDTO {
	route := m.Route()
	waypoints := make([]WaypointDTO, 0, len(route.Waypoints))
	for _, w := range route.Waypoints {
		waypoints = append(waypoints, WaypointDTO{
			Lat:       w.Location.Lat(),
			Lng:       w.Location.Lng(),
			AltitudeM: w.AltitudeM,
			Action:    string(w.Action),
		})
	}

	path := make([]PathPointDTO, 0, len(m.Path()))
	for _, p := range m.Path() {
		path = append(path, PathPointDTO{
			Lat:            p.Location.Lat(),
			Lng:            p.Location.Lng(),
			AltitudeM:      p.AltitudeM,
			Heading:        p.Heading,
			SpeedKmh:       p.SpeedKmh,
			BatteryPercent: p.BatteryPercent,
			Timestamp:      p.Timestamp,
		})
	}

	timeline := make([]TimelineEntryDTO, 0, len(m.Timeline()))
	for _, e := range m.Timeline() {
		timeline = append(timeline, TimelineEntryDTO{
			Status:         e.Status.String(),
			Timestamp:      e.Timestamp,
			Note:           e.Note,
			Location:       locationPtr(e.Location),
			BatteryPercent: e.BatteryPercent,
		})
	}

	var failure *FailureDTO
	if f := m.Failure(); f != nil {
		failure = &FailureDTO{
			Reason:      f.Reason,
			Code:        f.Code,
			Description: f.Description,
			OccurredAt:  f.OccurredAt,
			Location:    locationPtr(f.Location),
		}
	}

	estimates, params, actuals := m.Estimates(), m.Parameters(), m.Actuals()
	return MissionDTO{
		ID:           m.ID().Bytes(),
		Number:       m.Number(),
		OrderID:      m.OrderID().Bytes(),
		RestaurantID: m.RestaurantID().Bytes(),
		DroneID:      m.DroneID().Bytes(),
		Status:       m.Status().String(),
		Route: RouteDTO{
			Pickup:    location(route.Pickup),
			Delivery:  location(route.Delivery),
			Waypoints: waypoints,
		},
		Estimates:   EstimatesDTO(estimates),
		Parameters:  ParametersDTO(params),
		Actuals:     ActualsDTO(actuals),
		TravelledKm: m.TravelledKm(),
		Path:        path,
		Timeline:    timeline,
		Failure:     failure,
		CreatedAt:   m.CreatedAt(),
		StartedAt:   m.StartedAt(),
		DeliveredAt: m.DeliveredAt(),
		CompletedAt: m.CompletedAt(),
		LastEventAt: lastEventAt(m),
		Version:     m.Version(),
	}
}

// columns lists every mutable column for a full overwrite. JSON columns are
// encoded here because map based updates bypass the gorm serializer.
func (dto MissionDTO) columns() (map[string]any, error) {
	path, err := json.Marshal(dto.Path)
	if err != nil {
		return nil, err
	}
	timeline, err := json.Marshal(dto.Timeline)
	if err != nil {
		return nil, err
	}
	var failure any
	if dto.Failure != nil {
		raw, marshalErr := json.Marshal(dto.Failure)
		if marshalErr != nil {
			return nil, marshalErr
		}
		failure = string(raw)
	}

	return map[string]any{
		"status":                     dto.Status,
		"actual_distance_km":         dto.Actuals.DistanceKm,
		"actual_duration_minutes":    dto.Actuals.DurationMinutes,
		"actual_battery_consumption": dto.Actuals.BatteryConsumption,
		"actual_max_speed":           dto.Actuals.MaxSpeed,
		"actual_average_speed":       dto.Actuals.AverageSpeed,
		"travelled_km":               dto.TravelledKm,
		"path":                       string(path),
		"timeline":                   string(timeline),
		"failure":                    failure,
		"started_at":                 dto.StartedAt,
		"delivered_at":               dto.DeliveredAt,
		"completed_at":               dto.CompletedAt,
		"last_event_at":              dto.LastEventAt,
		"version":                    dto.Version + 1,
	}, nil
}

// toDomain restores a mission from its row. A row that no longer passes the
// domain checks is returned as an error, never silently repaired.
func toDomain(dto MissionDTO) (*mission.Mission, error) {
	ids := make([]kernel.UUID, 0, 4)
	for _, raw := range []uuid.UUID{dto.ID, dto.OrderID, dto.RestaurantID, dto.DroneID} {
		id, err := kernel.UUIDFromBytes(raw[:])
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	status, err := mission.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	route, err := routeToDomain(dto.Route)
	if err != nil {
		return nil, err
	}

	path := make([]mission.PathPoint, 0, len(dto.Path))
	for _, p := range dto.Path {
		loc, locErr := kernel.NewLocation(p.Lat, p.Lng)
		if locErr != nil {
			return nil, locErr
		}
		path = append(path, mission.PathPoint{
			Telemetry: mission.Telemetry{
				Location:       loc,
				AltitudeM:      p.AltitudeM,
				Heading:        p.Heading,
				SpeedKmh:       p.SpeedKmh,
				BatteryPercent: p.BatteryPercent,
			},
			Timestamp: p.Timestamp,
		})
	}

	timeline := make([]mission.TimelineEntry, 0, len(dto.Timeline))
	for _, e := range dto.Timeline {
		entryStatus, statusErr := mission.ParseStatus(e.Status)
		if statusErr != nil {
			return nil, statusErr
		}
		loc, locErr := locationToDomain(e.Location)
		if locErr != nil {
			return nil, locErr
		}
		timeline = append(timeline, mission.TimelineEntry{
			Status:         entryStatus,
			Timestamp:      e.Timestamp,
			Note:           e.Note,
			Location:       loc,
			BatteryPercent: e.BatteryPercent,
		})
	}

	var failure *mission.Failure
	if dto.Failure != nil {
		loc, locErr := locationToDomain(dto.Failure.Location)
		if locErr != nil {
			return nil, locErr
		}
		failure = &mission.Failure{
			Reason:      dto.Failure.Reason,
			Code:        dto.Failure.Code,
			Description: dto.Failure.Description,
			OccurredAt:  dto.Failure.OccurredAt,
			Location:    loc,
		}
	}

	return mission.RestoreMission(mission.Snapshot{
		ID:           ids[0],
		Number:       dto.Number,
		OrderID:      ids[1],
		RestaurantID: ids[2],
		DroneID:      ids[3],
		Status:       status,
		Route:        route,
		Estimates:    mission.Estimates(dto.Estimates),
		Parameters:   mission.Parameters(dto.Parameters),
		Actuals:      mission.Actuals(dto.Actuals),
		TravelledKm:  dto.TravelledKm,
		Path:         path,
		Timeline:     timeline,
		Failure:      failure,
		CreatedAt:    dto.CreatedAt,
		StartedAt:    dto.StartedAt,
		DeliveredAt:  dto.DeliveredAt,
		CompletedAt:  dto.CompletedAt,
		Version:      dto.Version,
	})
}

func routeToDomain(dto RouteDTO) (mission.Route, error) {
	pickup, err := kernel.NewLocation(dto.Pickup.Lat, dto.Pickup.Lng)
	if err != nil {
		return mission.Route{}, err
	}
	delivery, err := kernel.NewLocation(dto.Delivery.Lat, dto.Delivery.Lng)
	if err != nil {
		return mission.Route{}, err
	}

	waypoints := make([]geo.Waypoint, 0, len(dto.Waypoints))
	for _, w := range dto.Waypoints {
		loc, locErr := kernel.NewLocation(w.Lat, w.Lng)
		if locErr != nil {
			return mission.Route{}, locErr
		}
		waypoints = append(waypoints, geo.Waypoint{Location: loc, AltitudeM: w.AltitudeM, Action: geo.WaypointAction(w.Action)})
	}

	return mission.Route{Pickup: pickup, Delivery: delivery, Waypoints: waypoints}, nil
}

func location(l kernel.Location) LocationDTO {
	return LocationDTO{Lat: l.Lat(), Lng: l.Lng()}
}

func locationPtr(l *kernel.Location) *LocationDTO {
	if l == nil {
		return nil
	}
	dto := location(*l)
	return &dto
}

func locationToDomain(dto *LocationDTO) (*kernel.Location, error) {
	if dto == nil {
		return nil, nil //nolint:nilnil // optional snapshot
	}
	loc, err := kernel.NewLocation(dto.Lat, dto.Lng)
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

// lastEventAt is the time of the newest timeline entry or path point.
func lastEventAt(m *mission.Mission) time.Time {
	last := m.CreatedAt()
	if timeline := m.Timeline(); len(timeline) > 0 && timeline[len(timeline)-1].Timestamp.After(last) {
		last = timeline[len(timeline)-1].Timestamp
	}
	if p, ok := m.LastPathPoint(); ok && p.Timestamp.After(last) {
		last = p.Timestamp
	}
	return last
}
