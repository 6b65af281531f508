// Package geo holds the pure geometry and estimation functions used for flight
// planning: great-circle distance, bearing and midpoint, geofence containment,
// waypoint generation and battery/ETA estimates. Nothing here keeps state.
package geo

import (
	"math"

	"dronedispatch/internal/core/domain/model/kernel"
)

const (
	// EarthRadiusKm is the mean Earth radius used by the haversine formula.
	EarthRadiusKm = 6371.0

	// Planning defaults, used when the dispatch policy leaves a value unset.
	DefaultWaypointSegments   = 5
	DefaultCruiseAltitudeM    = 100.0
	DefaultBatteryEfficiency  = 0.8
	DefaultEtaBufferMinutes   = 10
	payloadDrainPer100Grams   = 0.1
	maxBatteryConsumptionPerc = 100.0
)

// DistanceKm is the haversine distance between a and b.
// It is symmetric and zero for equal locations.
//
// Example:
//
//	km := geo.DistanceKm(restaurant, customer)
func DistanceKm(a, b kernel.Location) float64 {
	lat1 := toRadians(a.Lat())
	lat2 := toRadians(b.Lat())
	dLat := lat2 - lat1
	dLng := toRadians(b.Lng() - a.Lng())

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	// Rounding can push h a hair outside [0, 1] for antipodal points.
	h = math.Min(1, math.Max(0, h))

	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// BearingDegrees is the initial bearing from a to b within [0, 360).
func BearingDegrees(a, b kernel.Location) float64 {
	lat1 := toRadians(a.Lat())
	lat2 := toRadians(b.Lat())
	dLng := toRadians(b.Lng() - a.Lng())

	y := math.Sin(dLng) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLng)

	bearing := math.Mod(toDegrees(math.Atan2(y, x))+360, 360)
	if bearing >= 360 {
		bearing = 0
	}
	return bearing
}

// Midpoint is the great-circle midpoint of a and b.
func Midpoint(a, b kernel.Location) kernel.Location {
	lat1 := toRadians(a.Lat())
	lng1 := toRadians(a.Lng())
	lat2 := toRadians(b.Lat())
	dLng := toRadians(b.Lng() - a.Lng())

	bx := math.Cos(lat2) * math.Cos(dLng)
	by := math.Cos(lat2) * math.Sin(dLng)

	lat := math.Atan2(math.Sin(lat1)+math.Sin(lat2), math.Sqrt((math.Cos(lat1)+bx)*(math.Cos(lat1)+bx)+by*by))
	lng := lng1 + math.Atan2(by, math.Cos(lat1)+bx)

	return clampLocation(toDegrees(lat), normalizeLongitude(toDegrees(lng)))
}

// PathDistanceKm sums the haversine segments between consecutive points.
func PathDistanceKm(points []kernel.Location) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += DistanceKm(points[i-1], points[i])
	}
	return total
}

// EstimateBatteryConsumption returns the percent of battery a flight of distanceKm
// carrying payloadGrams is expected to use:
//
//	round(min(100, (d + d*payload/100*0.1) / efficiency))
//
// A non-positive efficiency falls back to DefaultBatteryEfficiency.
func EstimateBatteryConsumption(distanceKm, payloadGrams, efficiency float64) int {
	if efficiency <= 0 {
		efficiency = DefaultBatteryEfficiency
	}

	base := distanceKm
	payloadFactor := distanceKm * payloadGrams / 100 * payloadDrainPer100Grams

	return int(math.Round(math.Min(maxBatteryConsumptionPerc, (base+payloadFactor)/efficiency)))
}

// EstimateEtaMinutes is round(distanceKm/speedKmh*60) + bufferMinutes.
// Callers guarantee a positive speed; drones cannot be registered without one.
func EstimateEtaMinutes(distanceKm, speedKmh float64, bufferMinutes int) int {
	if speedKmh <= 0 {
		return bufferMinutes
	}
	return int(math.Round(distanceKm/speedKmh*60)) + bufferMinutes
}

// toRadians converts degrees to radians.
func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// toDegrees converts radians to degrees.
func toDegrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// normalizeLongitude wraps lng into [-180, 180).
func normalizeLongitude(lng float64) float64 {
	lng = math.Mod(lng+540, 360) - 180
	if lng < kernel.MinLongitude {
		lng = kernel.MinLongitude
	}
	return lng
}

// clampLocation builds a location from computed coordinates that are valid up to
// floating point error.
func clampLocation(lat, lng float64) kernel.Location {
	lat = math.Max(kernel.MinLatitude, math.Min(kernel.MaxLatitude, lat))
	lng = math.Max(kernel.MinLongitude, math.Min(kernel.MaxLongitude, lng))
	return kernel.MustLocation(lat, lng)
}
