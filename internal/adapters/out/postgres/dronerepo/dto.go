package dronerepo

import (
	"time"

	"dronedispatch/internal/core/domain/geo"
	"dronedispatch/internal/core/domain/model/drone"
	"dronedispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// DroneDTO is the row of the drones table. The geofence is a JSON document and
// CurrentMissionID is NULL while the drone is free.
type DroneDTO struct {
	ID               uuid.UUID    `gorm:"type:uuid;primaryKey"`
	RestaurantID     uuid.UUID    `gorm:"type:uuid;index;not null"`
	Serial           string       `gorm:"uniqueIndex;not null"`
	Model            string       `gorm:"not null;default:''"`
	PayloadMaxGrams  int          `gorm:"not null"`
	RangeKm          float64      `gorm:"not null"`
	SpeedKmh         float64      `gorm:"not null"`
	Status           string       `gorm:"index;not null"`
	Health           string       `gorm:"not null"`
	Position         PositionDTO  `gorm:"embedded;embeddedPrefix:position_"`
	BatteryPercent   float64      `gorm:"not null"`
	Geofence         *GeofenceDTO `gorm:"type:text;serializer:json"`
	CurrentMissionID *uuid.UUID   `gorm:"type:uuid;uniqueIndex"`
	Version          int          `gorm:"not null;default:0"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (DroneDTO) TableName() string {
	return "drones"
}

// PositionDTO is the embedded last known position of a drone.
type PositionDTO struct {
	Lat      float64
	Lng      float64
	Altitude float64
	Heading  float64
}

// GeofenceDTO stores either the circle or the polygon fields depending on Kind.
type GeofenceDTO struct {
	Kind      string       `json:"kind"`
	CenterLat float64      `json:"centerLat,omitempty"`
	CenterLng float64      `json:"centerLng,omitempty"`
	RadiusKm  float64      `json:"radiusKm,omitempty"`
	Vertices  [][2]float64 `json:"vertices,omitempty"`
}

// fromDomain maps the drone aggregate to its row.
func fromDomain(d *drone.Drone) DroneDTO {
	var missionID *uuid.UUID
	if id := d.CurrentMissionID(); id != nil {
		raw := id.Bytes()
		missionID = &raw
	}

	return DroneDTO{
		ID:              d.ID().Bytes(),
		RestaurantID:    d.RestaurantID().Bytes(),
		Serial:          d.Serial(),
		Model:           d.Model(),
		PayloadMaxGrams: d.Specs().PayloadMaxGrams,
		RangeKm:         d.Specs().RangeKm,
		SpeedKmh:        d.Specs().SpeedKmh,
		Status:          d.Status().String(),
		Health:          d.Health().String(),
		Position: PositionDTO{
			Lat:      d.Position().Location().Lat(),
			Lng:      d.Position().Location().Lng(),
			Altitude: d.Position().Altitude(),
			Heading:  d.Position().Heading(),
		},
		BatteryPercent:   d.BatteryPercent(),
		Geofence:         geofenceFromDomain(d.Geofence()),
		CurrentMissionID: missionID,
		Version:          d.Version(),
	}
}

// columns lists every mutable column for a full overwrite, including the nil
// mission slot which a struct based update would skip.
func (dto DroneDTO) columns(now time.Time) map[string]any {
	return map[string]any{
		"restaurant_id":      dto.RestaurantID,
		"model":              dto.Model,
		"payload_max_grams":  dto.PayloadMaxGrams,
		"range_km":           dto.RangeKm,
		"speed_kmh":          dto.SpeedKmh,
		"status":             dto.Status,
		"health":             dto.Health,
		"position_lat":       dto.Position.Lat,
		"position_lng":       dto.Position.Lng,
		"position_altitude":  dto.Position.Altitude,
		"position_heading":   dto.Position.Heading,
		"battery_percent":    dto.BatteryPercent,
		"current_mission_id": dto.CurrentMissionID,
		"version":            dto.Version + 1,
		"updated_at":         now,
	}
}

// geofenceFromDomain returns nil for an unrestricted drone.
func geofenceFromDomain(fence *geo.Geofence) *GeofenceDTO {
	if fence == nil {
		return nil
	}

	dto := &GeofenceDTO{Kind: string(fence.Kind())}
	switch fence.Kind() {
	case geo.FenceCircle:
		dto.CenterLat = fence.Center().Lat()
		dto.CenterLng = fence.Center().Lng()
		dto.RadiusKm = fence.RadiusKm()
	case geo.FencePolygon:
		for _, v := range fence.Vertices() {
			dto.Vertices = append(dto.Vertices, [2]float64{v.Lat(), v.Lng()})
		}
	}
	return dto
}

// geofenceToDomain is the inverse of geofenceFromDomain. A NULL column yields a
// nil fence. Any kind other than polygon is read as a circle.
func geofenceToDomain(dto *GeofenceDTO) (*geo.Geofence, error) {
	if dto == nil {
		return nil, nil //nolint:nilnil // unrestricted drone
	}

	var (
		fence geo.Geofence
		err   error
	)
	switch geo.FenceKind(dto.Kind) {
	case geo.FencePolygon:
		vertices := make([]kernel.Location, 0, len(dto.Vertices))
		for _, v := range dto.Vertices {
			loc, locErr := kernel.NewLocation(v[0], v[1])
			if locErr != nil {
				return nil, locErr
			}
			vertices = append(vertices, loc)
		}
		fence, err = geo.NewPolygonGeofence(vertices)
	default:
		center, locErr := kernel.NewLocation(dto.CenterLat, dto.CenterLng)
		if locErr != nil {
			return nil, locErr
		}
		fence, err = geo.NewCircleGeofence(center, dto.RadiusKm)
	}
	if err != nil {
		return nil, err
	}
	return &fence, nil
}

// toDomain restores the drone aggregate from its row.
func toDomain(dto DroneDTO) (*drone.Drone, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	restaurantID, err := kernel.UUIDFromBytes(dto.RestaurantID[:])
	if err != nil {
		return nil, err
	}

	var missionID *kernel.UUID
	if dto.CurrentMissionID != nil {
		mID, missionErr := kernel.UUIDFromBytes((*dto.CurrentMissionID)[:])
		if missionErr != nil {
			return nil, missionErr
		}
		missionID = &mID
	}

	status, err := drone.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	health, err := drone.ParseHealth(dto.Health)
	if err != nil {
		return nil, err
	}

	loc, err := kernel.NewLocation(dto.Position.Lat, dto.Position.Lng)
	if err != nil {
		return nil, err
	}

	position, err := kernel.NewPosition(loc, dto.Position.Altitude, dto.Position.Heading)
	if err != nil {
		return nil, err
	}

	fence, err := geofenceToDomain(dto.Geofence)
	if err != nil {
		return nil, err
	}

	return drone.RestoreDrone(
		id,
		restaurantID,
		dto.Serial,
		dto.Model,
		drone.Specs{PayloadMaxGrams: dto.PayloadMaxGrams, RangeKm: dto.RangeKm, SpeedKmh: dto.SpeedKmh},
		status,
		health,
		position,
		dto.BatteryPercent,
		fence,
		missionID,
		dto.Version,
	)
}
