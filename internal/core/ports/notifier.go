package ports

import "context"

// Notification channels. Each event goes to the channel of the entity it concerns.
const (
	ChannelMission    = "mission"
	ChannelDrone      = "drone"
	ChannelRestaurant = "restaurant"
	ChannelAlerts     = "alerts"
)

// Events emitted after a state change is committed.
const (
	EventMissionCreated   = "mission.created"
	EventMissionStatus    = "mission.status_changed"
	EventMissionTelemetry = "mission.telemetry"
	EventMissionCompleted = "mission.completed"
	EventMissionAborted   = "mission.aborted"
	EventMissionFailed    = "mission.failed"
	EventMissionStale     = "mission.stale"
	EventDroneRegistered  = "drone.registered"
	EventDroneUpdated     = "drone.updated"
	EventOrderStatus      = "order.status_changed"
)

// Notifier broadcasts committed state changes. Emit is fire-and-forget: callers
// log a failure and carry on, the state change it reports is already durable.
type Notifier interface {
	// Emit hands payload to the transport. A nil error means the event was
	// accepted, not that it was delivered.
	Emit(ctx context.Context, channel, event string, payload any) error
}
