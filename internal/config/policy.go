// Package config loads the dispatch policy: the planning tunables and the
// watchdog settings operators adjust without a rebuild. The file is YAML and is
// checked against an embedded CUE schema before it is decoded.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"dronedispatch/internal/core/domain/services"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueyaml "cuelang.org/go/encoding/yaml"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

//go:embed policy.cue
var policySchema []byte

// scheduleParser accepts what cron.New(cron.WithSeconds()) accepts.
var scheduleParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Defaults of the settings that are not part of the planner policy.
const (
	DefaultStaleMissionAfter = 30 * time.Minute
	DefaultWatchdogSchedule  = "@every 1m"
	DefaultMissionCacheTTL   = 30 * time.Second
)

// Policy is the decoded policy file.
//
// Fields:
//   - BatteryReservePercent: margin added to the estimated consumption.
//   - BatteryEfficiency: scales the distance based consumption, in (0, 1].
//   - EtaBufferMinutes: slack added to the estimated flight time.
//   - WaypointSegments: number of legs between pickup and delivery.
//   - CruiseAltitudeM: altitude of the generated waypoints.
//   - StaleMissionAfter: age after which the watchdog reports an open mission.
//   - WatchdogSchedule: cron expression of the watchdog, seconds field included.
//   - MissionCacheTTL: lifetime of cached mission views.
type Policy struct {
	BatteryReservePercent int           `yaml:"battery_reserve_percent"`
	BatteryEfficiency     float64       `yaml:"battery_efficiency"`
	EtaBufferMinutes      int           `yaml:"eta_buffer_minutes"`
	WaypointSegments      int           `yaml:"waypoint_segments"`
	CruiseAltitudeM       float64       `yaml:"cruise_altitude_m"`
	StaleMissionAfter     time.Duration `yaml:"stale_mission_after"`
	WatchdogSchedule      string        `yaml:"watchdog_schedule"`
	MissionCacheTTL       time.Duration `yaml:"mission_cache_ttl"`
}

// Default returns the policy used when no file is given.
func Default() Policy {
	planner := services.DefaultPlannerPolicy()
	return Policy{
		BatteryReservePercent: planner.BatteryReservePercent,
		BatteryEfficiency:     planner.BatteryEfficiency,
		EtaBufferMinutes:      planner.EtaBufferMinutes,
		WaypointSegments:      planner.WaypointSegments,
		CruiseAltitudeM:       planner.CruiseAltitudeM,
		StaleMissionAfter:     DefaultStaleMissionAfter,
		WatchdogSchedule:      DefaultWatchdogSchedule,
		MissionCacheTTL:       DefaultMissionCacheTTL,
	}
}

// Load reads the policy at path. A missing file yields the defaults.
func Load(path string) (Policy, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Policy{}, fmt.Errorf("cannot read policy file: %w", err)
	}
	return Parse(path, data)
}

// Parse validates data and decodes it over the defaults.
func Parse(filename string, data []byte) (Policy, error) {
	if err := Validate(filename, data); err != nil {
		return Policy{}, err
	}

	policy := Default()
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return Policy{}, fmt.Errorf("cannot decode policy file: %w", err)
	}

	if _, err := scheduleParser.Parse(policy.WatchdogSchedule); err != nil {
		return Policy{}, fmt.Errorf("invalid watchdog_schedule %q: %w", policy.WatchdogSchedule, err)
	}
	return policy, nil
}

// Validate checks data against the policy schema without decoding it.
func Validate(filename string, data []byte) error {
	ctx := cuecontext.New()

	schema := ctx.CompileBytes(policySchema, cue.Filename("policy.cue"))
	if schema.Err() != nil {
		return fmt.Errorf("policy schema: %w", schema.Err())
	}

	file, err := cueyaml.Extract(filename, data)
	if err != nil {
		return fmt.Errorf("cannot parse policy file: %w", err)
	}
	value := ctx.BuildFile(file)
	if value.Err() != nil {
		return fmt.Errorf("cannot parse policy file: %w", value.Err())
	}

	final := schema.LookupPath(cue.ParsePath("#Policy")).Unify(value)
	if err = final.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("policy validation failed: %w", err)
	}
	return nil
}

// Planner returns the planning part of the policy.
func (p Policy) Planner() services.PlannerPolicy {
	return services.PlannerPolicy{
		BatteryReservePercent: p.BatteryReservePercent,
		BatteryEfficiency:     p.BatteryEfficiency,
		EtaBufferMinutes:      p.EtaBufferMinutes,
		WaypointSegments:      p.WaypointSegments,
		CruiseAltitudeM:       p.CruiseAltitudeM,
	}
}
