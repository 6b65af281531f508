// Package services provides domain services that work across the drone, mission
// and order aggregates.
//
// The package includes:
//   - MissionPlanner: checks an (order, drone) pairing and computes a flight plan
//   - DroneSelector: picks the closest drone of a restaurant whose plan succeeds
//   - OrderStatusFor: projects mission progress onto the order status
//
// Services hold no state beyond their policy and never touch persistence.
package services
