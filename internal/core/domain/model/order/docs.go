// Package order holds the dispatch service's view of an order.
//
// Orders are owned by the order service. The dispatch service keeps a local
// projection with what it needs to plan a mission: the restaurant and delivery
// locations, the items and their weights, and the status. Mission progress is
// projected back onto the order through UpdateStatus, which appends to the status
// history.
//
// Key business rules:
//   - Items must have a name, a positive weight and a positive quantity
//   - Terminal orders (DELIVERED, FAILED, CANCELLED) never change status again
//   - Setting the current status again is a no-op and records no history
package order
