package geo

import (
	"errors"
	"fmt"

	"dronedispatch/internal/core/domain/model/kernel"
	"dronedispatch/internal/pkg/errs"
	"dronedispatch/internal/pkg/guard"
)

// FenceKind tells circle and polygon geofences apart.
type FenceKind string

// Fence kinds as stored and exchanged over the API.
const (
	FenceCircle  FenceKind = "CIRCLE"
	FencePolygon FenceKind = "POLYGON"
)

const minPolygonVertices = 3

// ErrGeofenceIsNotConstructed is returned when a zero Geofence is used.
var ErrGeofenceIsNotConstructed = errs.NewValueIsRequiredError(
	"geofence must be created via NewCircleGeofence or NewPolygonGeofence")

// Geofence is the boundary a drone must stay inside: either a circle around a
// center or a closed polygon. Polygon vertices are not repeated at the end.
type Geofence struct {
	kind     FenceKind
	center   kernel.Location
	radiusKm float64
	vertices []kernel.Location
	guard    guard.ConstructorGuard
}

// NewCircleGeofence creates a circular fence.
//
// Parameters:
//   - center: a valid location
//   - radiusKm: strictly positive radius in kilometers
//
// Returns:
//   - Geofence: the fence
//   - error: a validation error for an invalid center or radius
func NewCircleGeofence(center kernel.Location, radiusKm float64) (Geofence, error) {
	if err := center.Validate(); err != nil {
		return Geofence{}, err
	}
	if radiusKm <= 0 {
		return Geofence{}, errs.NewValueIsInvalidErrorWithCause("radiusKm",
			fmt.Errorf("%v is not greater than 0", radiusKm))
	}

	return Geofence{
		kind:     FenceCircle,
		center:   center,
		radiusKm: radiusKm,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

// NewPolygonGeofence creates a polygon fence from at least three valid vertices.
// The vertices are copied and the polygon is closed implicitly.
//
// Example:
//
//	fence, err := geo.NewPolygonGeofence([]kernel.Location{a, b, c, d})
func NewPolygonGeofence(vertices []kernel.Location) (Geofence, error) {
	if len(vertices) < minPolygonVertices {
		return Geofence{}, errs.NewValueIsInvalidErrorWithCause("vertices",
			fmt.Errorf("polygon needs at least %d vertices, got %d", minPolygonVertices, len(vertices)))
	}

	errList := make([]error, 0)
	for _, v := range vertices {
		errList = append(errList, v.Validate())
	}
	if err := errors.Join(errList...); err != nil {
		return Geofence{}, err
	}

	return Geofence{
		kind:     FencePolygon,
		vertices: append([]kernel.Location(nil), vertices...),
		guard:    guard.NewConstructorGuard(),
	}, nil
}

// Validate checks that the geofence was created through a constructor.
func (g Geofence) Validate() error {
	return g.guard.Validate(ErrGeofenceIsNotConstructed)
}

// Kind returns FenceCircle or FencePolygon.
func (g Geofence) Kind() FenceKind {
	return g.kind
}

// Center is only meaningful for a circle.
func (g Geofence) Center() kernel.Location {
	return g.center
}

// RadiusKm is the circle radius, zero for a polygon.
func (g Geofence) RadiusKm() float64 {
	return g.radiusKm
}

// Vertices returns a copy of the polygon vertices, nil for a circle.
func (g Geofence) Vertices() []kernel.Location {
	return append([]kernel.Location(nil), g.vertices...)
}

// Contains reports whether point lies inside the fence. Circle boundaries are
// inclusive.
//
// Business rules:
//   - Circle: haversine distance to the center is at most the radius.
//   - Polygon: even-odd ray casting on raw latitude and longitude, which is
//     accurate for fences a few kilometers across.
//   - A zero Geofence contains nothing.
func (g Geofence) Contains(point kernel.Location) bool {
	switch g.kind {
	case FenceCircle:
		return DistanceKm(point, g.center) <= g.radiusKm
	case FencePolygon:
		return insidePolygon(point, g.vertices)
	default:
		return false
	}
}

// IsWithinGeofence treats a nil fence as unrestricted.
//
// Example:
//
//	if !geo.IsWithinGeofence(delivery, d.Geofence()) {
//	    return errs.NewValueIsInvalidError("deliveryLocation")
//	}
func IsWithinGeofence(point kernel.Location, fence *Geofence) bool {
	if fence == nil {
		return true
	}
	return fence.Contains(point)
}

// insidePolygon casts a ray along increasing longitude and counts edge crossings.
func insidePolygon(point kernel.Location, vertices []kernel.Location) bool {
	x, y := point.Lng(), point.Lat()
	inside := false

	for i, j := 0, len(vertices)-1; i < len(vertices); j, i = i, i+1 {
		xi, yi := vertices[i].Lng(), vertices[i].Lat()
		xj, yj := vertices[j].Lng(), vertices[j].Lat()

		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}

	return inside
}
