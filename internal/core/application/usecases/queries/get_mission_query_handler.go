package queries

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"dronedispatch/internal/core/domain/model/kernel"
	"dronedispatch/internal/core/domain/model/mission"
	"dronedispatch/internal/core/ports"
	"dronedispatch/internal/pkg/errs"
	"dronedispatch/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// GetMissionQueryHandler reads a mission view through the mission cache. Cache
// failures are logged and the database answers instead.
//
// Key responsibilities:
//   - Serve the full mission view with route, path, timeline and failure.
//   - Derive ProgressPercent and DurationMinutes at read time.
//   - Expose actuals only once the mission is COMPLETED.
//
// Example:
//
//	handler := NewGetMissionQueryHandler(db, cache, log)
//	query, err := NewGetMissionQuery(missionID)
//	if err != nil {
//	    return err
//	}
//
//	view, err := handler.Handle(ctx, query)
//	if errors.Is(err, errs.ErrObjectNotFound) {
//	    return echo.ErrNotFound
//	}
type GetMissionQueryHandler struct {
	db    *gorm.DB
	cache ports.MissionCache
	log   *logrus.Entry
	now   func() time.Time
}

// NewGetMissionQueryHandler accepts a nil cache, every read then goes to the database.
func NewGetMissionQueryHandler(db *gorm.DB, cache ports.MissionCache, log *logrus.Entry) GetMissionQueryHandler {
	if log == nil {
		log = logger.Discard()
	}
	return GetMissionQueryHandler{
		db:    db,
		cache: cache,
		log:   logger.Component(log, "get-mission"),
		now:   time.Now,
	}
}

// Handle serves the view from the cache when possible and fills the cache on a
// miss. Cache errors are logged and the database is used instead.
func (h GetMissionQueryHandler) Handle(ctx context.Context, query GetMissionQuery) (*MissionView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	id := query.MissionID()
	log := logger.FromContext(ctx, h.log).WithField("missionId", id.String())

	if h.cache != nil {
		var cached MissionView
		hit, err := h.cache.Get(ctx, id, &cached)
		if err != nil {
			log.WithError(err).Warn("mission cache read failed")
		}
		if hit && err == nil {
			return &cached, nil
		}
	}

	view, err := h.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		if err = h.cache.Set(ctx, id, view); err != nil {
			log.WithError(err).Warn("mission cache write failed")
		}
	}
	return view, nil
}

// missionRow mirrors the missions columns plus the joined drone serial. JSON
// documents stay as text until view decodes them.
type missionRow struct {
	ID                          uuid.UUID
	Number                      string
	OrderID                     uuid.UUID
	RestaurantID                uuid.UUID
	DroneID                     uuid.UUID
	DroneSerial                 *string
	Status                      string
	Route                       string
	EstimatedDistanceKm         float64
	EstimatedEtaMinutes         int
	EstimatedBatteryConsumption int
	ParamPayloadGrams           int
	ParamCruiseAltitudeM        float64
	ParamSpeedKmh               float64
	ParamBatteryRequired        int
	ActualDistanceKm            float64
	ActualDurationMinutes       int
	ActualBatteryConsumption    float64
	ActualMaxSpeed              float64
	ActualAverageSpeed          float64
	TravelledKm                 float64
	Path                        *string
	Timeline                    *string
	Failure                     *string
	CreatedAt                   time.Time
	StartedAt                   *time.Time
	DeliveredAt                 *time.Time
	CompletedAt                 *time.Time
}

// load reads one mission row. A missing row is an ObjectNotFoundError.
func (h GetMissionQueryHandler) load(ctx context.Context, id kernel.UUID) (*MissionView, error) {
	var row missionRow
	result := h.db.WithContext(ctx).Raw(`
		SELECT
			m.id, m.number, m.order_id, m.restaurant_id, m.drone_id,
			d.serial AS drone_serial,
			m.status, m.route,
			m.estimated_distance_km, m.estimated_eta_minutes, m.estimated_battery_consumption,
			m.param_payload_grams, m.param_cruise_altitude_m, m.param_speed_kmh, m.param_battery_required,
			m.actual_distance_km, m.actual_duration_minutes, m.actual_battery_consumption,
			m.actual_max_speed, m.actual_average_speed,
			m.travelled_km, m.path, m.timeline, m.failure,
			m.created_at, m.started_at, m.delivered_at, m.completed_at
		FROM missions m
		LEFT JOIN drones d ON d.id = m.drone_id
		WHERE m.id = ?
	`, id.Bytes()).Scan(&row)
	if result.Error != nil {
		return nil, errs.NewExternalDependencyError("postgres", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, errs.NewObjectNotFoundError("missionId", id)
	}

	return row.view(h.now())
}

// view builds the MissionView. now closes the duration of missions that are
// still open.
func (r missionRow) view(now time.Time) (*MissionView, error) {
	view := &MissionView{
		ID:           r.ID.String(),
		Number:       r.Number,
		OrderID:      r.OrderID.String(),
		RestaurantID: r.RestaurantID.String(),
		DroneID:      r.DroneID.String(),
		Status:       r.Status,
		Estimates: EstimatesView{
			DistanceKm:         r.EstimatedDistanceKm,
			EtaMinutes:         r.EstimatedEtaMinutes,
			BatteryConsumption: r.EstimatedBatteryConsumption,
		},
		Parameters: ParametersView{
			PayloadGrams:    r.ParamPayloadGrams,
			CruiseAltitudeM: r.ParamCruiseAltitudeM,
			SpeedKmh:        r.ParamSpeedKmh,
			BatteryRequired: r.ParamBatteryRequired,
		},
		TravelledKm: r.TravelledKm,
		Path:        []PathPointView{},
		Timeline:    []TimelineEntryView{},
		CreatedAt:   r.CreatedAt,
		StartedAt:   r.StartedAt,
		DeliveredAt: r.DeliveredAt,
		CompletedAt: r.CompletedAt,
	}
	if r.DroneSerial != nil {
		view.DroneSerial = *r.DroneSerial
	}

	if err := decodeColumn("route", &r.Route, &view.Route); err != nil {
		return nil, err
	}
	if err := decodeColumn("path", r.Path, &view.Path); err != nil {
		return nil, err
	}
	if err := decodeColumn("timeline", r.Timeline, &view.Timeline); err != nil {
		return nil, err
	}
	if err := decodeColumn("failure", r.Failure, &view.Failure); err != nil {
		return nil, err
	}

	if status, err := mission.ParseStatus(r.Status); err == nil {
		view.ProgressPercent = mission.ProgressFor(status)
		if status == mission.Completed {
			view.Actuals = &ActualsView{
				DistanceKm:         r.ActualDistanceKm,
				DurationMinutes:    r.ActualDurationMinutes,
				BatteryConsumption: r.ActualBatteryConsumption,
				MaxSpeed:           r.ActualMaxSpeed,
				AverageSpeed:       r.ActualAverageSpeed,
			}
		}
	}
	view.DurationMinutes = durationMinutes(view, now)

	return view, nil
}

// decodeColumn unmarshals a JSON text column. NULL and "null" leave dst untouched.
func decodeColumn(name string, raw *string, dst any) error {
	if raw == nil || *raw == "" || *raw == "null" {
		return nil
	}
	if err := json.Unmarshal([]byte(*raw), dst); err != nil {
		return errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return nil
}

// durationMinutes measures from creation to completion, to the failure, or to
// now for an open mission, rounded to whole minutes and never negative.
func durationMinutes(view *MissionView, now time.Time) int {
	end := now
	switch {
	case view.CompletedAt != nil:
		end = *view.CompletedAt
	case view.Failure != nil:
		end = view.Failure.OccurredAt
	}
	if end.Before(view.CreatedAt) {
		return 0
	}
	return int(math.Round(end.Sub(view.CreatedAt).Minutes()))
}
