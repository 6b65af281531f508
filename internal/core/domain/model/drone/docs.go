// Package drone implements the Drone aggregate: the source of truth for drone
// availability and physical state.
//
// A drone carries an exclusive reservation slot (the current mission). The slot is
// taken with Reserve, freed with Release, and its status otherwise follows the
// mission it serves through MirrorMissionStatus; the drone never decides mission
// progress itself.
//
// Key business rules:
//   - A drone is eligible for dispatch only when IDLE, charged to at least
//     MinDispatchBatteryPercent, not CRITICAL and not reserved
//   - A reserved drone is PREPARING, IN_FLIGHT or RETURNING
//   - Location updates outside the drone's own geofence are rejected
//   - Battery readings are clamped to [0, 100]
package drone
