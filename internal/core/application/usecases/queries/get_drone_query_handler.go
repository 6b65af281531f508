package queries

import (
	"context"
	"time"

	"dronedispatch/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// droneColumns is shared by every query that scans into droneRow.
const droneColumns = `
	id, restaurant_id, serial, model, status, health, battery_percent,
	position_lat, position_lng, position_altitude, position_heading,
	payload_max_grams, range_km, speed_kmh, current_mission_id, updated_at`

// droneRow is the raw drones row as read by the drone queries.
type droneRow struct {
	ID               uuid.UUID
	RestaurantID     uuid.UUID
	Serial           string
	Model            string
	Status           string
	Health           string
	BatteryPercent   float64
	PositionLat      float64
	PositionLng      float64
	PositionAltitude float64
	PositionHeading  float64
	PayloadMaxGrams  int
	RangeKm          float64
	SpeedKmh         float64
	CurrentMissionID *uuid.UUID
	UpdatedAt        time.Time
}

// view converts the row into the API shape. CurrentMissionID stays nil for an
// unreserved drone.
func (r droneRow) view() DroneView {
	view := DroneView{
		ID:              r.ID.String(),
		RestaurantID:    r.RestaurantID.String(),
		Serial:          r.Serial,
		Model:           r.Model,
		Status:          r.Status,
		Health:          r.Health,
		BatteryPercent:  r.BatteryPercent,
		Lat:             r.PositionLat,
		Lng:             r.PositionLng,
		AltitudeM:       r.PositionAltitude,
		Heading:         r.PositionHeading,
		PayloadMaxGrams: r.PayloadMaxGrams,
		RangeKm:         r.RangeKm,
		SpeedKmh:        r.SpeedKmh,
	}
	if !r.UpdatedAt.IsZero() {
		updatedAt := r.UpdatedAt
		view.UpdatedAt = &updatedAt
	}
	if r.CurrentMissionID != nil {
		id := r.CurrentMissionID.String()
		view.CurrentMissionID = &id
	}
	return view
}

// GetDroneQueryHandler reads a single drone straight from the database. Drone
// reads are not cached because location and battery change on every telemetry
// update.
//
// Example:
//
//	query, err := NewGetDroneQuery(droneID)
//	if err != nil {
//	    return err
//	}
//	view, err := NewGetDroneQueryHandler(db).Handle(ctx, query)
type GetDroneQueryHandler struct {
	db *gorm.DB
}

// NewGetDroneQueryHandler creates a handler for get drone requests.
func NewGetDroneQueryHandler(db *gorm.DB) GetDroneQueryHandler {
	return GetDroneQueryHandler{db: db}
}

// Handle returns an ObjectNotFoundError for an unknown drone.
func (h GetDroneQueryHandler) Handle(ctx context.Context, query GetDroneQuery) (*DroneView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	var row droneRow
	result := h.db.WithContext(ctx).
		Raw(`SELECT `+droneColumns+` FROM drones WHERE id = ?`, query.DroneID().Bytes()).
		Scan(&row)
	if result.Error != nil {
		return nil, errs.NewExternalDependencyError("postgres", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, errs.NewObjectNotFoundError("droneId", query.DroneID())
	}

	view := row.view()
	return &view, nil
}
