// Package dronerepo persists drone aggregates with GORM.
package dronerepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dronedispatch/internal/adapters/out/postgres/dberr"
	"dronedispatch/internal/core/domain/model/drone"
	"dronedispatch/internal/core/domain/model/kernel"
	"dronedispatch/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormDroneRepository implements DroneRepository using GORM.
type GormDroneRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
	now     func() time.Time
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormDroneRepository creates a repository bound to db.
func NewGormDroneRepository(db *gorm.DB, tracker aggregateTracker) *GormDroneRepository {
	return &GormDroneRepository{
		db:      db,
		tracker: tracker,
		now:     time.Now,
	}
}

// Add inserts a new drone. A duplicate serial is a StateConflictError.
func (r *GormDroneRepository) Add(ctx context.Context, aggregate *drone.Drone) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if dberr.IsUniqueViolation(err) {
			return errs.NewStateConflictErrorWithCause("drone", aggregate.ID(),
				fmt.Sprintf("serial %s is already registered", aggregate.Serial()), err)
		}
		return dberr.Wrap(err)
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update writes the drone if its stored version still matches and advances the
// in-memory version on success.
func (r *GormDroneRepository) Update(ctx context.Context, aggregate *drone.Drone) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&DroneDTO{}).
		Where("id = ? AND version = ?", dto.ID, dto.Version).
		Updates(dto.columns(r.now()))
	if result.Error != nil {
		return dberr.Map(result.Error, "drone", aggregate.ID())
	}

	if result.RowsAffected == 0 {
		if err := r.exists(ctx, aggregate); err != nil {
			return err
		}
		return errs.NewStaleVersionError("drone", aggregate.ID(),
			fmt.Sprintf("drone %s was modified concurrently", aggregate.Serial()))
	}

	aggregate.IncrementVersion()
	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Reserve writes the reservation only while the stored row is IDLE, unreserved and
// at the same version. The unique index on current_mission_id keeps one mission
// from being held by two drones.
func (r *GormDroneRepository) Reserve(ctx context.Context, aggregate *drone.Drone) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	if !aggregate.IsReserved() {
		return errs.NewValueIsRequiredError("currentMissionId")
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&DroneDTO{}).
		Where("id = ? AND version = ? AND current_mission_id IS NULL AND status = ?",
			dto.ID, dto.Version, drone.Idle.String()).
		Updates(dto.columns(r.now()))
	if result.Error != nil {
		return dberr.Map(result.Error, "drone", aggregate.ID())
	}

	if result.RowsAffected == 0 {
		if err := r.exists(ctx, aggregate); err != nil {
			return err
		}
		return errs.NewStateConflictError("drone", aggregate.ID(),
			fmt.Sprintf("drone %s is already reserved", aggregate.Serial()))
	}

	aggregate.IncrementVersion()
	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get loads a drone, ObjectNotFoundError when the id is unknown.
func (r *GormDroneRepository) Get(ctx context.Context, id kernel.UUID) (*drone.Drone, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto DroneDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("droneId", id.String())
		}
		return nil, dberr.Wrap(err)
	}

	return toDomain(dto)
}

// GetIdleByRestaurant orders drones by serial so selection ties are stable.
func (r *GormDroneRepository) GetIdleByRestaurant(ctx context.Context, restaurantID kernel.UUID) ([]*drone.Drone, error) {
	if err := restaurantID.Validate(); err != nil {
		return nil, err
	}

	var dtos []DroneDTO
	if err := r.db.WithContext(ctx).
		Where("restaurant_id = ? AND status = ? AND current_mission_id IS NULL", restaurantID.Bytes(), drone.Idle.String()).
		Order("serial").
		Find(&dtos).Error; err != nil {
		return nil, dberr.Wrap(err)
	}

	drones := make([]*drone.Drone, 0, len(dtos))
	for _, dto := range dtos {
		d, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		drones = append(drones, d)
	}

	return drones, nil
}

// exists tells a vanished drone apart from a lost compare-and-swap.
func (r *GormDroneRepository) exists(ctx context.Context, aggregate *drone.Drone) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&DroneDTO{}).Where("id = ?", aggregate.ID().Bytes()).Count(&count).Error; err != nil {
		return dberr.Wrap(err)
	}
	if count == 0 {
		return errs.NewObjectNotFoundError("droneId", aggregate.ID().String())
	}
	return nil
}
