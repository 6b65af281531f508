// Package missionrepo persists mission aggregates with GORM.
package missionrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dronedispatch/internal/adapters/out/postgres/dberr"
	"dronedispatch/internal/core/domain/model/kernel"
	"dronedispatch/internal/core/domain/model/mission"
	"dronedispatch/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormMissionRepository implements MissionRepository using GORM.
// Route, path, timeline and failure are stored as JSON columns.
type GormMissionRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormMissionRepository creates a repository bound to db. tracker records every
// aggregate written so the unit of work can report them after commit.
func NewGormMissionRepository(db *gorm.DB, tracker aggregateTracker) *GormMissionRepository {
	return &GormMissionRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add inserts a new mission. An order has at most one mission, so a second Add
// for the same order violates a unique index and is a StateConflictError.
func (r *GormMissionRepository) Add(ctx context.Context, aggregate *mission.Mission) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if dberr.IsUniqueViolation(err) {
			return errs.NewStateConflictErrorWithCause("mission", aggregate.ID(),
				fmt.Sprintf("order %s already has a mission", aggregate.OrderID()), err)
		}
		return dberr.Wrap(err)
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update overwrites every mutable column with a compare on version.
func (r *GormMissionRepository) Update(ctx context.Context, aggregate *mission.Mission) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	columns, err := dto.columns()
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Model(&MissionDTO{}).
		Where("id = ? AND version = ?", dto.ID, dto.Version).
		Updates(columns)
	if result.Error != nil {
		return dberr.Wrap(result.Error)
	}

	if result.RowsAffected == 0 {
		var count int64
		if err = r.db.WithContext(ctx).Model(&MissionDTO{}).Where("id = ?", dto.ID).Count(&count).Error; err != nil {
			return dberr.Wrap(err)
		}
		if count == 0 {
			return errs.NewObjectNotFoundError("missionId", aggregate.ID().String())
		}
		return errs.NewStaleVersionError("mission", aggregate.ID(),
			fmt.Sprintf("mission %s was modified concurrently", aggregate.Number()))
	}

	aggregate.IncrementVersion()
	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get loads a mission, ObjectNotFoundError when the id is unknown.
func (r *GormMissionRepository) Get(ctx context.Context, id kernel.UUID) (*mission.Mission, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto MissionDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("missionId", id.String())
		}
		return nil, dberr.Wrap(err)
	}

	return toDomain(dto)
}

// GetByOrderID returns the mission of an order.
func (r *GormMissionRepository) GetByOrderID(ctx context.Context, orderID kernel.UUID) (*mission.Mission, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	var dto MissionDTO
	if err := r.db.WithContext(ctx).First(&dto, "order_id = ?", orderID.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("orderId", orderID.String())
		}
		return nil, dberr.Wrap(err)
	}

	return toDomain(dto)
}

// GetStale orders the result by last event, oldest first.
func (r *GormMissionRepository) GetStale(ctx context.Context, before time.Time) ([]*mission.Mission, error) {
	var dtos []MissionDTO
	if err := r.db.WithContext(ctx).
		Where("status NOT IN ? AND last_event_at < ?", terminalStatuses(), before).
		Order("last_event_at").
		Find(&dtos).Error; err != nil {
		return nil, dberr.Wrap(err)
	}

	missions := make([]*mission.Mission, 0, len(dtos))
	for _, dto := range dtos {
		m, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		missions = append(missions, m)
	}

	return missions, nil
}

func terminalStatuses() []string {
	return []string{mission.Completed.String(), mission.Aborted.String(), mission.Failed.String()}
}
