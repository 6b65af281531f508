package queries

import (
	"context"

	"dronedispatch/internal/core/domain/model/drone"
	"dronedispatch/internal/pkg/errs"

	"gorm.io/gorm"
)

// ListAvailableDronesQueryHandler lists the IDLE, unreserved, dispatchable drones
// of a restaurant.
type ListAvailableDronesQueryHandler struct {
	db *gorm.DB
}

// NewListAvailableDronesQueryHandler creates a handler for list available drones requests.
func NewListAvailableDronesQueryHandler(db *gorm.DB) ListAvailableDronesQueryHandler {
	return ListAvailableDronesQueryHandler{db: db}
}

// Handle applies the same rules as drone eligibility so the list matches what
// CreateMission would accept.
//
// Business rules:
//   - Status must be IDLE and the reservation slot empty.
//   - Health must not be CRITICAL.
//   - Battery must be at least drone.MinDispatchBatteryPercent.
//
// The battery-for-this-flight check is left to planning, since it depends on
// the order. Drones are sorted by serial.
func (h ListAvailableDronesQueryHandler) Handle(
	ctx context.Context,
	query ListAvailableDronesQuery,
) ([]DroneView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	var rows []droneRow
	result := h.db.WithContext(ctx).Raw(`
		SELECT `+droneColumns+`
		FROM drones
		WHERE restaurant_id = ?
			AND status = ?
			AND current_mission_id IS NULL
			AND health <> ?
			AND battery_percent >= ?
		ORDER BY serial`,
		query.RestaurantID().Bytes(),
		drone.Idle.String(),
		drone.Critical.String(),
		drone.MinDispatchBatteryPercent,
	).Scan(&rows)
	if result.Error != nil {
		return nil, errs.NewExternalDependencyError("postgres", result.Error)
	}

	drones := make([]DroneView, 0, len(rows))
	for _, row := range rows {
		drones = append(drones, row.view())
	}
	return drones, nil
}
