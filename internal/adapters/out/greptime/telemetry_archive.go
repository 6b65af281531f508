// Package greptime archives mission telemetry in GreptimeDB for flight analytics.
// The transactional store keeps the path of each mission, the archive keeps every
// point of every mission queryable by time.
package greptime

import (
	"context"

	"dronedispatch/internal/core/ports"
	"dronedispatch/internal/pkg/errs"
	"dronedispatch/internal/pkg/logger"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"
	"github.com/sirupsen/logrus"
)

// DefaultTable is used when Config.Table is empty.
const DefaultTable = "mission_telemetry"

// Config addresses the GreptimeDB gRPC endpoint. A zero Port keeps the
// ingester default.
type Config struct {
	Host     string
	Port     int
	Database string
	Table    string
}

type writer interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// TelemetryArchive implements ports.TelemetryArchive on the GreptimeDB ingester.
type TelemetryArchive struct {
	client writer
	table  string
	log    *logrus.Entry
}

// NewTelemetryArchive creates the ingester client. The connection is lazy, so
// an unreachable server shows up on the first Archive call.
func NewTelemetryArchive(cfg Config, log *logrus.Entry) (*TelemetryArchive, error) {
	gcfg := greptime.NewConfig(cfg.Host).WithDatabase(cfg.Database)
	if cfg.Port != 0 {
		gcfg = gcfg.WithPort(cfg.Port)
	}

	client, err := greptime.NewClient(gcfg)
	if err != nil {
		return nil, errs.NewExternalDependencyError("greptime", err)
	}
	return newTelemetryArchive(client, cfg.Table, log), nil
}

func newTelemetryArchive(client writer, tableName string, log *logrus.Entry) *TelemetryArchive {
	if tableName == "" {
		tableName = DefaultTable
	}
	if log == nil {
		log = logger.Discard()
	}
	return &TelemetryArchive{
		client: client,
		table:  tableName,
		log:    logger.Component(log, "telemetry-archive"),
	}
}

// Archive writes records as one batch. Missions and drones are tags, so the
// table is cheap to query per mission.
func (a *TelemetryArchive) Archive(ctx context.Context, records ...ports.TelemetryRecord) error {
	if len(records) == 0 {
		return nil
	}

	tbl, err := a.newTable()
	if err != nil {
		return err
	}

	for _, r := range records {
		p := r.Point
		err = tbl.AddRow(
			r.MissionID.String(),
			r.MissionNumber,
			r.DroneID.String(),
			r.RestaurantID.String(),
			p.Location.Lat(),
			p.Location.Lng(),
			p.AltitudeM,
			p.Heading,
			p.SpeedKmh,
			p.BatteryPercent,
			p.Timestamp,
		)
		if err != nil {
			return err
		}
	}

	resp, err := a.client.Write(ctx, tbl)
	if err != nil {
		return errs.NewExternalDependencyError("greptime", err)
	}

	logger.FromContext(ctx, a.log).
		WithField("rows", len(records)).
		WithField("affected", resp.GetAffectedRows().GetValue()).
		Debug("Telemetry archived")
	return nil
}

// newTable declares the schema: identifiers as tags, readings as float fields
// and the point timestamp in milliseconds.
func (a *TelemetryArchive) newTable() (*table.Table, error) {
	tbl, err := table.New(a.table)
	if err != nil {
		return nil, err
	}

	tags := []string{"mission_id", "mission_number", "drone_id", "restaurant_id"}
	for _, name := range tags {
		if err = tbl.AddTagColumn(name, types.STRING); err != nil {
			return nil, err
		}
	}

	fields := []string{"lat", "lng", "altitude", "heading", "speed", "battery"}
	for _, name := range fields {
		if err = tbl.AddFieldColumn(name, types.FLOAT64); err != nil {
			return nil, err
		}
	}

	if err = tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND); err != nil {
		return nil, err
	}
	return tbl, nil
}
