// Package sequencerepo hands out the per-day mission number counters.
package sequencerepo

import (
	"context"
	"strings"

	"dronedispatch/internal/adapters/out/postgres/dberr"
	"dronedispatch/internal/pkg/errs"

	"gorm.io/gorm"
)

// SequenceDTO is one counter row of the mission_sequences table keyed by UTC day.
type SequenceDTO struct {
	Day   string `gorm:"primaryKey;size:6"`
	Value int    `gorm:"not null"`
}

func (SequenceDTO) TableName() string {
	return "mission_sequences"
}

const upsertSQL = `INSERT INTO mission_sequences (day, value) VALUES (?, 1)
ON CONFLICT (day) DO UPDATE SET value = mission_sequences.value + 1`

// GormSequenceRepository implements ports.MissionSequenceRepository on the
// mission_sequences table. It must run inside the unit of work that inserts
// the mission so that an aborted creation also rolls the counter back.
type GormSequenceRepository struct {
	db *gorm.DB
}

// NewGormSequenceRepository binds the repository to a connection or transaction.
func NewGormSequenceRepository(db *gorm.DB) *GormSequenceRepository {
	return &GormSequenceRepository{db: db}
}

// Next increments the counter of day and returns the new value. The row lock taken
// by the upsert is held until the surrounding transaction ends, so two missions
// created on the same day never share a number.
func (r *GormSequenceRepository) Next(ctx context.Context, day string) (int, error) {
	if strings.TrimSpace(day) == "" {
		return 0, errs.NewValueIsRequiredError("day")
	}

	db := r.db.WithContext(ctx)
	if err := db.Exec(upsertSQL, day).Error; err != nil {
		return 0, dberr.Wrap(err)
	}

	var seq SequenceDTO
	if err := db.Where("day = ?", day).Take(&seq).Error; err != nil {
		return 0, dberr.Wrap(err)
	}

	return seq.Value, nil
}
