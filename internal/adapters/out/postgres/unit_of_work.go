// Package postgres provides the GORM-based Unit of Work and database bootstrap.
//
// A unit of work owns one transaction. Repositories obtained from it after Begin
// run inside that transaction, so a mission insert, the drone reservation and the
// order projection either all commit or all roll back:
//
//	uow := factory.Create()
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer uow.Rollback(ctx)
//
//	if err := uow.MissionRepository().Add(ctx, m); err != nil {
//	    return err
//	}
//	if err := uow.DroneRepository().Reserve(ctx, d); err != nil {
//	    return err
//	}
//
//	return uow.Commit(ctx)
//
// Rollback after Commit is a no-op returning gorm.ErrInvalidTransaction, which makes
// the deferred call safe. Instances are not safe for concurrent use; every operation
// creates its own.
package postgres

import (
	"context"

	"dronedispatch/internal/adapters/out/postgres/dronerepo"
	"dronedispatch/internal/adapters/out/postgres/missionrepo"
	"dronedispatch/internal/adapters/out/postgres/orderrepo"
	"dronedispatch/internal/adapters/out/postgres/sequencerepo"
	"dronedispatch/internal/core/domain/model/kernel"
	"dronedispatch/internal/core/ports"

	"gorm.io/gorm"
)

// trackedAggregate is an aggregate written during the unit of work.
type trackedAggregate struct {
	ID        kernel.UUID
	Aggregate any
}

// GormUnitOfWorkFactory creates UnitOfWork instances sharing one connection pool.
type GormUnitOfWorkFactory struct {
	db *gorm.DB
}

// NewGormUnitOfWorkFactory creates a factory handing out units of work on db.
func NewGormUnitOfWorkFactory(db *gorm.DB) *GormUnitOfWorkFactory {
	return &GormUnitOfWorkFactory{db: db}
}

// Create produces a fresh unit of work with no open transaction.
func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{
		db:                f.db,
		trackedAggregates: make([]trackedAggregate, 0),
	}
}

// GormUnitOfWork coordinates one database transaction and records the aggregates
// its repositories wrote.
type GormUnitOfWork struct {
	db                *gorm.DB
	tx                *gorm.DB
	trackedAggregates []trackedAggregate
}

// Begin opens the transaction. A second call while one is open does nothing.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	uow.tx = uow.db.WithContext(ctx).Begin()
	if uow.tx.Error != nil {
		err := uow.tx.Error
		uow.tx = nil
		return err
	}

	return nil
}

// Commit makes the writes permanent and closes the transaction.
func (uow *GormUnitOfWork) Commit(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Commit().Error
	uow.tx = nil
	return err
}

// Rollback discards the writes and forgets the tracked aggregates.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	uow.trackedAggregates = uow.trackedAggregates[:0]
	return err
}

// DroneRepository returns a repository bound to the open transaction, or to the
// plain connection when none is open.
func (uow *GormUnitOfWork) DroneRepository() ports.DroneRepository {
	return dronerepo.NewGormDroneRepository(uow.conn(), uow)
}

// MissionRepository is bound like DroneRepository.
func (uow *GormUnitOfWork) MissionRepository() ports.MissionRepository {
	return missionrepo.NewGormMissionRepository(uow.conn(), uow)
}

// MissionSequenceRepository must be used inside Begin/Commit so that the counter
// rolls back with a failed creation.
func (uow *GormUnitOfWork) MissionSequenceRepository() ports.MissionSequenceRepository {
	return sequencerepo.NewGormSequenceRepository(uow.conn())
}

func (uow *GormUnitOfWork) OrderRepository() ports.OrderRepository {
	return orderrepo.NewGormOrderRepository(uow.conn(), uow)
}

// TrackAggregate is called by the repositories after every successful write.
func (uow *GormUnitOfWork) TrackAggregate(id kernel.UUID, aggregate any) {
	uow.trackedAggregates = append(uow.trackedAggregates, trackedAggregate{
		ID:        id,
		Aggregate: aggregate,
	})
}

// TrackedCount reports how many aggregate writes the unit of work has seen.
func (uow *GormUnitOfWork) TrackedCount() int {
	return len(uow.trackedAggregates)
}

// conn returns the open transaction, or the pool when none was begun.
func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}
