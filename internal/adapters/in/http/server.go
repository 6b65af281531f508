package http

import (
	"net/http"

	"dronedispatch/internal/core/application/usecases/commands"
	"dronedispatch/internal/core/application/usecases/queries"
	"dronedispatch/internal/core/domain/geo"
	"dronedispatch/internal/core/domain/model/drone"
	"dronedispatch/internal/core/domain/model/kernel"
	"dronedispatch/internal/core/domain/model/mission"
	"dronedispatch/internal/core/domain/model/order"

	"github.com/labstack/echo/v4"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

const defaultBatteryPercent = 100.0

// Handlers groups the use cases the API exposes.
type Handlers struct {
	CreateMission       commands.CreateMissionCommandHandler
	UpdateMissionStatus commands.UpdateMissionStatusCommandHandler
	AppendTelemetry     commands.AppendTelemetryCommandHandler
	AbortMission        commands.AbortMissionCommandHandler
	FailMission         commands.FailMissionCommandHandler
	CompleteMission     commands.CompleteMissionCommandHandler
	RegisterDrone       commands.RegisterDroneCommandHandler
	UpdateDroneLocation commands.UpdateDroneLocationCommandHandler
	UpdateDroneBattery  commands.UpdateDroneBatteryCommandHandler
	SetDroneStatus      commands.SetDroneStatusCommandHandler
	RegisterOrder       commands.RegisterOrderCommandHandler
	UpdateOrderStatus   commands.UpdateOrderStatusCommandHandler

	GetMission          queries.GetMissionQueryHandler
	ListActiveMissions  queries.ListActiveMissionsQueryHandler
	GetDrone            queries.GetDroneQueryHandler
	ListAvailableDrones queries.ListAvailableDronesQueryHandler
}

// Server implements ServerInterface on top of the command and query handlers.
// Commands answer with the read model reloaded after the commit.
type Server struct {
	h Handlers
}

var _ ServerInterface = (*Server)(nil)

// NewServer creates the HTTP server over the command and query handlers.
func NewServer(handlers Handlers) *Server {
	return &Server{h: handlers}
}

// CreateMission handles POST /api/v1/missions - plans and dispatches a mission for an order.
func (s *Server) CreateMission(ctx echo.Context) error {
	var body CreateMissionRequest
	if err := ctx.Bind(&body); err != nil {
		return err
	}

	orderID, err := toUUID(body.OrderId)
	if err != nil {
		return err
	}
	var droneID *kernel.UUID
	if body.DroneId != nil {
		id, err := toUUID(*body.DroneId)
		if err != nil {
			return err
		}
		droneID = &id
	}

	cmd, err := commands.NewCreateMissionCommand(orderID, droneID, actorID(ctx))
	if err != nil {
		return err
	}
	m, err := s.h.CreateMission.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return s.respondMission(ctx, http.StatusCreated, m.ID())
}

// ListActiveMissions handles GET /api/v1/missions - lists missions that are not finished.
func (s *Server) ListActiveMissions(ctx echo.Context, params ListActiveMissionsParams) error {
	var restaurantID *kernel.UUID
	if params.RestaurantId != nil {
		id, err := toUUID(*params.RestaurantId)
		if err != nil {
			return err
		}
		restaurantID = &id
	}

	query, err := queries.NewListActiveMissionsQuery(restaurantID)
	if err != nil {
		return err
	}
	missions, err := s.h.ListActiveMissions.Handle(ctx.Request().Context(), query)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, missions)
}

// GetMission handles GET /api/v1/missions/{id} - returns the tracking view of a mission.
func (s *Server) GetMission(ctx echo.Context, id openapi_types.UUID) error {
	missionID, err := toUUID(id)
	if err != nil {
		return err
	}
	return s.respondMission(ctx, http.StatusOK, missionID)
}

// UpdateMissionStatus handles PATCH /api/v1/missions/{id}/status - moves a mission along its lifecycle.
func (s *Server) UpdateMissionStatus(ctx echo.Context, id openapi_types.UUID) error {
	var body UpdateMissionStatusRequest
	if err := ctx.Bind(&body); err != nil {
		return err
	}

	missionID, err := toUUID(id)
	if err != nil {
		return err
	}
	status, err := mission.ParseStatus(body.Status)
	if err != nil {
		return err
	}

	cmd, err := commands.NewUpdateMissionStatusCommand(missionID, status, deref(body.Note))
	if err != nil {
		return err
	}
	if _, err = s.h.UpdateMissionStatus.Handle(ctx.Request().Context(), cmd); err != nil {
		return err
	}
	return s.respondMission(ctx, http.StatusOK, missionID)
}

// AppendTelemetry handles POST /api/v1/missions/{id}/telemetry - records a telemetry sample.
func (s *Server) AppendTelemetry(ctx echo.Context, id openapi_types.UUID) error {
	var body TelemetryRequest
	if err := ctx.Bind(&body); err != nil {
		return err
	}

	missionID, err := toUUID(id)
	if err != nil {
		return err
	}
	location, err := kernel.NewLocation(body.Lat, body.Lng)
	if err != nil {
		return err
	}

	cmd, err := commands.NewAppendTelemetryCommand(missionID, mission.Telemetry{
		Location:       location,
		AltitudeM:      body.Altitude,
		Heading:        body.Heading,
		SpeedKmh:       body.Speed,
		BatteryPercent: body.BatteryPercent,
	})
	if err != nil {
		return err
	}
	if _, err = s.h.AppendTelemetry.Handle(ctx.Request().Context(), cmd); err != nil {
		return err
	}
	return s.respondMission(ctx, http.StatusOK, missionID)
}

// AbortMission handles POST /api/v1/missions/{id}/abort - cancels a mission.
func (s *Server) AbortMission(ctx echo.Context, id openapi_types.UUID) error {
	var body AbortRequest
	if err := ctx.Bind(&body); err != nil {
		return err
	}

	missionID, err := toUUID(id)
	if err != nil {
		return err
	}
	code := deref(body.Code)
	if code == "" {
		code = mission.CodeUnspecified
	}

	cmd, err := commands.NewAbortMissionCommand(missionID, body.Reason, code, deref(body.Description))
	if err != nil {
		return err
	}
	if _, err = s.h.AbortMission.Handle(ctx.Request().Context(), cmd); err != nil {
		return err
	}
	return s.respondMission(ctx, http.StatusOK, missionID)
}

// FailMission handles POST /api/v1/missions/{id}/fail - records an in-flight failure.
func (s *Server) FailMission(ctx echo.Context, id openapi_types.UUID) error {
	var body FailureRequest
	if err := ctx.Bind(&body); err != nil {
		return err
	}

	missionID, err := toUUID(id)
	if err != nil {
		return err
	}
	var location *kernel.Location
	if body.Location != nil {
		loc, err := kernel.NewLocation(body.Location.Lat, body.Location.Lng)
		if err != nil {
			return err
		}
		location = &loc
	}

	cmd, err := commands.NewFailMissionCommand(missionID, body.Reason, body.Code, deref(body.Description), location)
	if err != nil {
		return err
	}
	if _, err = s.h.FailMission.Handle(ctx.Request().Context(), cmd); err != nil {
		return err
	}
	return s.respondMission(ctx, http.StatusOK, missionID)
}

// CompleteMission handles POST /api/v1/missions/{id}/complete - closes a returned mission.
func (s *Server) CompleteMission(ctx echo.Context, id openapi_types.UUID) error {
	missionID, err := toUUID(id)
	if err != nil {
		return err
	}

	cmd, err := commands.NewCompleteMissionCommand(missionID)
	if err != nil {
		return err
	}
	if _, err = s.h.CompleteMission.Handle(ctx.Request().Context(), cmd); err != nil {
		return err
	}
	return s.respondMission(ctx, http.StatusOK, missionID)
}

// RegisterDrone handles POST /api/v1/drones - adds a drone to a restaurant fleet.
func (s *Server) RegisterDrone(ctx echo.Context) error {
	var body RegisterDroneRequest
	if err := ctx.Bind(&body); err != nil {
		return err
	}

	restaurantID, err := toUUID(body.RestaurantId)
	if err != nil {
		return err
	}
	position, err := toPosition(body.Position)
	if err != nil {
		return err
	}
	var fence *geo.Geofence
	if body.Geofence != nil {
		f, err := toGeofence(*body.Geofence)
		if err != nil {
			return err
		}
		fence = &f
	}
	battery := defaultBatteryPercent
	if body.BatteryPercent != nil {
		battery = *body.BatteryPercent
	}

	cmd, err := commands.NewRegisterDroneCommand(
		restaurantID,
		body.Serial,
		deref(body.Model),
		drone.Specs{PayloadMaxGrams: body.PayloadMaxGrams, RangeKm: body.RangeKm, SpeedKmh: body.SpeedKmh},
		position,
		battery,
		fence,
	)
	if err != nil {
		return err
	}
	d, err := s.h.RegisterDrone.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return s.respondDrone(ctx, http.StatusCreated, d.ID())
}

// ListAvailableDrones handles GET /api/v1/drones - lists the drones a restaurant can dispatch now.
func (s *Server) ListAvailableDrones(ctx echo.Context, params ListAvailableDronesParams) error {
	restaurantID, err := toUUID(params.RestaurantId)
	if err != nil {
		return err
	}

	query, err := queries.NewListAvailableDronesQuery(restaurantID)
	if err != nil {
		return err
	}
	drones, err := s.h.ListAvailableDrones.Handle(ctx.Request().Context(), query)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, drones)
}

// GetDrone handles GET /api/v1/drones/{id} - returns one drone.
func (s *Server) GetDrone(ctx echo.Context, id openapi_types.UUID) error {
	droneID, err := toUUID(id)
	if err != nil {
		return err
	}
	return s.respondDrone(ctx, http.StatusOK, droneID)
}

// UpdateDroneLocation handles PUT /api/v1/drones/{id}/location - reports the drone position.
func (s *Server) UpdateDroneLocation(ctx echo.Context, id openapi_types.UUID) error {
	var body Position
	if err := ctx.Bind(&body); err != nil {
		return err
	}

	droneID, err := toUUID(id)
	if err != nil {
		return err
	}
	position, err := toPosition(body)
	if err != nil {
		return err
	}

	cmd, err := commands.NewUpdateDroneLocationCommand(droneID, position)
	if err != nil {
		return err
	}
	if _, err = s.h.UpdateDroneLocation.Handle(ctx.Request().Context(), cmd); err != nil {
		return err
	}
	return s.respondDrone(ctx, http.StatusOK, droneID)
}

// UpdateDroneBattery handles PUT /api/v1/drones/{id}/battery - reports the battery level.
func (s *Server) UpdateDroneBattery(ctx echo.Context, id openapi_types.UUID) error {
	var body BatteryRequest
	if err := ctx.Bind(&body); err != nil {
		return err
	}

	droneID, err := toUUID(id)
	if err != nil {
		return err
	}

	cmd, err := commands.NewUpdateDroneBatteryCommand(droneID, body.BatteryPercent)
	if err != nil {
		return err
	}
	if _, err = s.h.UpdateDroneBattery.Handle(ctx.Request().Context(), cmd); err != nil {
		return err
	}
	return s.respondDrone(ctx, http.StatusOK, droneID)
}

// SetDroneStatus handles PUT /api/v1/drones/{id}/status - sets operational status and health.
func (s *Server) SetDroneStatus(ctx echo.Context, id openapi_types.UUID) error {
	var body DroneStatusRequest
	if err := ctx.Bind(&body); err != nil {
		return err
	}

	droneID, err := toUUID(id)
	if err != nil {
		return err
	}
	status, err := drone.ParseStatus(body.Status)
	if err != nil {
		return err
	}
	health, err := drone.ParseHealth(body.Health)
	if err != nil {
		return err
	}

	cmd, err := commands.NewSetDroneStatusCommand(droneID, status, health)
	if err != nil {
		return err
	}
	if _, err = s.h.SetDroneStatus.Handle(ctx.Request().Context(), cmd); err != nil {
		return err
	}
	return s.respondDrone(ctx, http.StatusOK, droneID)
}

// RegisterOrder handles POST /api/v1/orders - imports an order from the order service.
func (s *Server) RegisterOrder(ctx echo.Context) error {
	var body RegisterOrderRequest
	if err := ctx.Bind(&body); err != nil {
		return err
	}

	orderID, err := toUUID(body.Id)
	if err != nil {
		return err
	}
	restaurantID, err := toUUID(body.RestaurantId)
	if err != nil {
		return err
	}
	customerID, err := toUUID(body.CustomerId)
	if err != nil {
		return err
	}
	pickup, err := kernel.NewLocation(body.RestaurantLocation.Lat, body.RestaurantLocation.Lng)
	if err != nil {
		return err
	}
	var delivery *kernel.Location
	if body.DeliveryLocation != nil {
		loc, err := kernel.NewLocation(body.DeliveryLocation.Lat, body.DeliveryLocation.Lng)
		if err != nil {
			return err
		}
		delivery = &loc
	}
	status, err := order.ParseStatus(body.Status)
	if err != nil {
		return err
	}

	items := make([]order.Item, len(body.Items))
	for i, item := range body.Items {
		items[i] = order.Item{Name: item.Name, WeightGrams: item.WeightGrams, Quantity: item.Quantity}
	}

	cmd, err := commands.NewRegisterOrderCommand(orderID, restaurantID, customerID, items, pickup, delivery, status, actorID(ctx))
	if err != nil {
		return err
	}
	o, err := s.h.RegisterOrder.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, toOrder(o))
}

// UpdateOrderStatus handles PUT /api/v1/orders/{id}/status - applies an order status change.
func (s *Server) UpdateOrderStatus(ctx echo.Context, id openapi_types.UUID) error {
	var body OrderStatusRequest
	if err := ctx.Bind(&body); err != nil {
		return err
	}

	orderID, err := toUUID(id)
	if err != nil {
		return err
	}
	status, err := order.ParseStatus(body.Status)
	if err != nil {
		return err
	}

	cmd, err := commands.NewUpdateOrderStatusCommand(orderID, status, actorID(ctx), deref(body.Note))
	if err != nil {
		return err
	}
	o, err := s.h.UpdateOrderStatus.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, toOrder(o))
}

func (s *Server) respondMission(ctx echo.Context, code int, missionID kernel.UUID) error {
	query, err := queries.NewGetMissionQuery(missionID)
	if err != nil {
		return err
	}
	view, err := s.h.GetMission.Handle(ctx.Request().Context(), query)
	if err != nil {
		return err
	}
	return ctx.JSON(code, view)
}

func (s *Server) respondDrone(ctx echo.Context, code int, droneID kernel.UUID) error {
	query, err := queries.NewGetDroneQuery(droneID)
	if err != nil {
		return err
	}
	view, err := s.h.GetDrone.Handle(ctx.Request().Context(), query)
	if err != nil {
		return err
	}
	return ctx.JSON(code, view)
}

func toUUID(id openapi_types.UUID) (kernel.UUID, error) {
	return kernel.UUIDFromBytes(id[:])
}

func toPosition(p Position) (kernel.Position, error) {
	location, err := kernel.NewLocation(p.Lat, p.Lng)
	if err != nil {
		return kernel.Position{}, err
	}
	return kernel.NewPosition(location, deref(p.Altitude), deref(p.Heading))
}

func toGeofence(g Geofence) (geo.Geofence, error) {
	if geo.FenceKind(g.Kind) == geo.FenceCircle {
		var center kernel.Location
		if g.Center != nil {
			loc, err := kernel.NewLocation(g.Center.Lat, g.Center.Lng)
			if err != nil {
				return geo.Geofence{}, err
			}
			center = loc
		}
		return geo.NewCircleGeofence(center, deref(g.RadiusKm))
	}

	vertices := make([]kernel.Location, len(g.Vertices))
	for i, v := range g.Vertices {
		loc, err := kernel.NewLocation(v.Lat, v.Lng)
		if err != nil {
			return geo.Geofence{}, err
		}
		vertices[i] = loc
	}
	return geo.NewPolygonGeofence(vertices)
}

func toOrder(o *order.Order) Order {
	view := Order{
		Id:               o.ID().String(),
		RestaurantId:     o.RestaurantID().String(),
		CustomerId:       o.CustomerID().String(),
		Status:           o.Status().String(),
		TotalWeightGrams: o.TotalWeightGrams(),
	}
	if d := o.DeliveryLocation(); d != nil {
		view.DeliveryLocation = &Location{Lat: d.Lat(), Lng: d.Lng()}
	}
	return view
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
