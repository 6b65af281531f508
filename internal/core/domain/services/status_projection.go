package services

import (
	"dronedispatch/internal/core/domain/model/mission"
	"dronedispatch/internal/core/domain/model/order"
)

// OrderStatusFor returns the order status a mission status implies, if any.
//
//	TAKEOFF         -> IN_FLIGHT
//	DELIVERED       -> DELIVERED
//	ABORTED, FAILED -> FAILED
//
// Other mission statuses leave the order alone and return false.
func OrderStatusFor(status mission.Status) (order.Status, bool) {
	switch status {
	case mission.Takeoff:
		return order.InFlight, true
	case mission.Delivered:
		return order.Delivered, true
	case mission.Aborted, mission.Failed:
		return order.Failed, true
	default:
		return order.Unknown, false
	}
}
