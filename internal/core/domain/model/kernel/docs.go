// Package kernel provides the shared value objects of the dispatch domain.
//
// The package includes:
//   - UUID: identifier of orders, drones and missions
//   - Location: a WGS84 latitude/longitude pair
//   - Position: a Location with altitude and heading, as reported by a drone
//
// Values are immutable and validated on construction; the zero value of each type
// fails Validate so that unconstructed values are caught at aggregate boundaries.
package kernel
