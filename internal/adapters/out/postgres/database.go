package postgres

import (
	"fmt"
	"time"

	"dronedispatch/internal/adapters/out/postgres/dronerepo"
	"dronedispatch/internal/adapters/out/postgres/missionrepo"
	"dronedispatch/internal/adapters/out/postgres/orderrepo"
	"dronedispatch/internal/adapters/out/postgres/sequencerepo"

	_ "github.com/lib/pq" // registers the "postgres" database/sql driver
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Supported database drivers.
const (
	DriverPgx    = "pgx"
	DriverPq     = "pq"
	DriverSqlite = "sqlite"
)

// DatabaseConfig selects the driver and tunes the connection pool.
type DatabaseConfig struct {
	// Driver is one of DriverPgx, DriverPq or DriverSqlite.
	Driver string
	// DSN is the driver specific connection string.
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
	// LogQueries turns on GORM's SQL logger.
	LogQueries bool
}

// Open connects GORM through the configured driver. sqlite is meant for local runs
// and tests; the pool is capped at one connection there so transactions serialise.
func Open(cfg DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case DriverPgx, "":
		dialector = gormpostgres.Open(cfg.DSN)
	case DriverPq:
		dialector = gormpostgres.New(gormpostgres.Config{DriverName: "postgres", DSN: cfg.DSN})
	case DriverSqlite:
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	level := gormlogger.Silent
	if cfg.LogQueries {
		level = gormlogger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(level)})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	maxOpen := cfg.MaxOpenConns
	if cfg.Driver == DriverSqlite {
		maxOpen = 1
	}
	if maxOpen > 0 {
		sqlDB.SetMaxOpenConns(maxOpen)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.MaxLifetime)
	}

	return db, nil
}

// Migrate creates or updates the schema of every table the service owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&dronerepo.DroneDTO{},
		&missionrepo.MissionDTO{},
		&orderrepo.OrderDTO{},
		&sequencerepo.SequenceDTO{},
	)
}
