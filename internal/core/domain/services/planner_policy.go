package services

import "dronedispatch/internal/core/domain/geo"

// DefaultBatteryReservePercent is the flat safety margin added to the estimated
// consumption of every flight.
const DefaultBatteryReservePercent = 20

// PlannerPolicy holds the tunables of flight planning. Zero fields fall back to
// the defaults.
type PlannerPolicy struct {
	// BatteryReservePercent is added to the estimated consumption before the
	// battery check.
	BatteryReservePercent int
	// BatteryEfficiency scales the distance based consumption, in (0, 1].
	BatteryEfficiency float64
	// EtaBufferMinutes is added to every flight time estimate.
	EtaBufferMinutes int
	// WaypointSegments is the number of legs between pickup and delivery.
	WaypointSegments int
	// CruiseAltitudeM is the altitude of every generated waypoint.
	CruiseAltitudeM float64
}

// DefaultPlannerPolicy returns the policy used when no policy file is loaded.
func DefaultPlannerPolicy() PlannerPolicy {
	return PlannerPolicy{
		BatteryReservePercent: DefaultBatteryReservePercent,
		BatteryEfficiency:     geo.DefaultBatteryEfficiency,
		EtaBufferMinutes:      geo.DefaultEtaBufferMinutes,
		WaypointSegments:      geo.DefaultWaypointSegments,
		CruiseAltitudeM:       geo.DefaultCruiseAltitudeM,
	}
}

// withDefaults replaces every non-positive field with its default.
func (p PlannerPolicy) withDefaults() PlannerPolicy {
	d := DefaultPlannerPolicy()
	if p.BatteryReservePercent <= 0 {
		p.BatteryReservePercent = d.BatteryReservePercent
	}
	if p.BatteryEfficiency <= 0 {
		p.BatteryEfficiency = d.BatteryEfficiency
	}
	if p.EtaBufferMinutes <= 0 {
		p.EtaBufferMinutes = d.EtaBufferMinutes
	}
	if p.WaypointSegments <= 0 {
		p.WaypointSegments = d.WaypointSegments
	}
	if p.CruiseAltitudeM <= 0 {
		p.CruiseAltitudeM = d.CruiseAltitudeM
	}
	return p
}
