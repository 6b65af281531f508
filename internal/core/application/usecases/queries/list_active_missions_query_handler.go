package queries

import (
	"context"
	"time"

	"dronedispatch/internal/core/domain/model/mission"
	"dronedispatch/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListActiveMissionsQueryHandler lists the missions that have not reached a
// terminal status. It reads the missions table directly and joins the drone
// serial, so the result is a summary rather than the full mission view.
//
// Example:
//
//	handler := NewListActiveMissionsQueryHandler(db)
//	query, err := NewListActiveMissionsQuery(&restaurantID)
//	if err != nil {
//	    return err
//	}
//
//	missions, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("%d missions in the air or on the pad\n", len(missions))
type ListActiveMissionsQueryHandler struct {
	db *gorm.DB
}

// NewListActiveMissionsQueryHandler creates a handler for list active missions requests.
func NewListActiveMissionsQueryHandler(db *gorm.DB) ListActiveMissionsQueryHandler {
	return ListActiveMissionsQueryHandler{db: db}
}

// Handle returns the active missions oldest first, ties broken by mission number.
//
// Parameters:
//   - ctx: request context, cancels the query.
//   - query: optional restaurant filter built by NewListActiveMissionsQuery.
//
// Returns:
//   - An empty, non-nil slice when nothing is active.
//   - ExternalDependencyError when the database cannot be queried.
func (h ListActiveMissionsQueryHandler) Handle(
	ctx context.Context,
	query ListActiveMissionsQuery,
) ([]MissionSummaryView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	sql := `
		SELECT
			m.id,
			m.number,
			m.order_id,
			m.restaurant_id,
			m.drone_id,
			COALESCE(d.serial, ''),
			m.status,
			m.estimated_eta_minutes,
			m.created_at,
			m.last_event_at
		FROM missions m
		LEFT JOIN drones d ON d.id = m.drone_id
		WHERE m.status NOT IN (?, ?, ?)`
	args := []any{mission.Completed.String(), mission.Aborted.String(), mission.Failed.String()}
	if id := query.RestaurantID(); id != nil {
		sql += ` AND m.restaurant_id = ?`
		args = append(args, id.Bytes())
	}
	sql += ` ORDER BY m.created_at, m.number`

	rows, err := h.db.WithContext(ctx).Raw(sql, args...).Rows()
	if err != nil {
		return nil, errs.NewExternalDependencyError("postgres", err)
	}
	defer rows.Close()

	missions := make([]MissionSummaryView, 0)
	for rows.Next() {
		var (
			view                               MissionSummaryView
			id, orderID, restaurantID, droneID uuid.UUID
			createdAt, lastEventAt             time.Time
		)

		err = rows.Scan(
			&id,
			&view.Number,
			&orderID,
			&restaurantID,
			&droneID,
			&view.DroneSerial,
			&view.Status,
			&view.EtaMinutes,
			&createdAt,
			&lastEventAt,
		)
		if err != nil {
			return nil, err
		}

		view.ID = id.String()
		view.OrderID = orderID.String()
		view.RestaurantID = restaurantID.String()
		view.DroneID = droneID.String()
		view.CreatedAt = createdAt
		view.LastEventAt = lastEventAt
		if status, parseErr := mission.ParseStatus(view.Status); parseErr == nil {
			view.ProgressPercent = mission.ProgressFor(status)
		}
		missions = append(missions, view)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return missions, nil
}
