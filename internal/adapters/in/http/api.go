package http

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Request and response bodies of openapi.yaml. Optional fields are pointers.

// Location defines model for Location.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Position defines model for Position.
type Position struct {
	Lat      float64  `json:"lat"`
	Lng      float64  `json:"lng"`
	Altitude *float64 `json:"altitude,omitempty"`
	Heading  *float64 `json:"heading,omitempty"`
}

// CreateMissionRequest defines model for CreateMissionRequest.
type CreateMissionRequest struct {
	OrderId openapi_types.UUID  `json:"orderId"`
	DroneId *openapi_types.UUID `json:"droneId,omitempty"`
}

// UpdateMissionStatusRequest defines model for UpdateMissionStatusRequest.
type UpdateMissionStatusRequest struct {
	Status string  `json:"status"`
	Note   *string `json:"note,omitempty"`
}

// TelemetryRequest defines model for TelemetryRequest.
type TelemetryRequest struct {
	Lat            float64 `json:"lat"`
	Lng            float64 `json:"lng"`
	Altitude       float64 `json:"altitude"`
	Heading        float64 `json:"heading"`
	Speed          float64 `json:"speed"`
	BatteryPercent float64 `json:"batteryPercent"`
}

// AbortRequest defines model for AbortRequest.
type AbortRequest struct {
	Reason      string  `json:"reason"`
	Code        *string `json:"code,omitempty"`
	Description *string `json:"description,omitempty"`
}

// FailureRequest defines model for FailureRequest.
type FailureRequest struct {
	Reason      string    `json:"reason"`
	Code        string    `json:"code"`
	Description *string   `json:"description,omitempty"`
	Location    *Location `json:"location,omitempty"`
}

// Geofence defines model for Geofence.
type Geofence struct {
	Kind     string     `json:"kind"`
	Center   *Location  `json:"center,omitempty"`
	RadiusKm *float64   `json:"radiusKm,omitempty"`
	Vertices []Location `json:"vertices,omitempty"`
}

// RegisterDroneRequest defines model for RegisterDroneRequest.
type RegisterDroneRequest struct {
	RestaurantId    openapi_types.UUID `json:"restaurantId"`
	Serial          string             `json:"serial"`
	Model           *string            `json:"model,omitempty"`
	PayloadMaxGrams int                `json:"payloadMaxGrams"`
	RangeKm         float64            `json:"rangeKm"`
	SpeedKmh        float64            `json:"speedKmh"`
	Position        Position           `json:"position"`
	BatteryPercent  *float64           `json:"batteryPercent,omitempty"`
	Geofence        *Geofence          `json:"geofence,omitempty"`
}

// BatteryRequest defines model for BatteryRequest.
type BatteryRequest struct {
	BatteryPercent float64 `json:"batteryPercent"`
}

// DroneStatusRequest defines model for DroneStatusRequest.
type DroneStatusRequest struct {
	Status string `json:"status"`
	Health string `json:"health"`
}

// OrderItem defines model for OrderItem.
type OrderItem struct {
	Name        string `json:"name"`
	WeightGrams int    `json:"weightGrams"`
	Quantity    int    `json:"quantity"`
}

// RegisterOrderRequest defines model for RegisterOrderRequest.
type RegisterOrderRequest struct {
	Id                 openapi_types.UUID `json:"id"`
	RestaurantId       openapi_types.UUID `json:"restaurantId"`
	CustomerId         openapi_types.UUID `json:"customerId"`
	Items              []OrderItem        `json:"items"`
	RestaurantLocation Location           `json:"restaurantLocation"`
	DeliveryLocation   *Location          `json:"deliveryLocation,omitempty"`
	Status             string             `json:"status"`
}

// OrderStatusRequest defines model for OrderStatusRequest.
type OrderStatusRequest struct {
	Status string  `json:"status"`
	Note   *string `json:"note,omitempty"`
}

// Order defines model for Order.
type Order struct {
	Id               string    `json:"id"`
	RestaurantId     string    `json:"restaurantId"`
	CustomerId       string    `json:"customerId"`
	Status           string    `json:"status"`
	TotalWeightGrams int       `json:"totalWeightGrams"`
	DeliveryLocation *Location `json:"deliveryLocation,omitempty"`
}

// Error defines model for Error.
type Error struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Reason  string         `json:"reason,omitempty"`
	Values  map[string]any `json:"values,omitempty"`
}

// ListActiveMissionsParams defines parameters for ListActiveMissions.
type ListActiveMissionsParams struct {
	RestaurantId *openapi_types.UUID `form:"restaurantId,omitempty" json:"restaurantId,omitempty"`
}

// ListAvailableDronesParams defines parameters for ListAvailableDrones.
type ListAvailableDronesParams struct {
	RestaurantId openapi_types.UUID `form:"restaurantId" json:"restaurantId"`
}

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// (POST /api/v1/missions)
	CreateMission(ctx echo.Context) error
	// (GET /api/v1/missions)
	ListActiveMissions(ctx echo.Context, params ListActiveMissionsParams) error
	// (GET /api/v1/missions/{id})
	GetMission(ctx echo.Context, id openapi_types.UUID) error
	// (PATCH /api/v1/missions/{id}/status)
	UpdateMissionStatus(ctx echo.Context, id openapi_types.UUID) error
	// (POST /api/v1/missions/{id}/telemetry)
	AppendTelemetry(ctx echo.Context, id openapi_types.UUID) error
	// (POST /api/v1/missions/{id}/abort)
	AbortMission(ctx echo.Context, id openapi_types.UUID) error
	// (POST /api/v1/missions/{id}/fail)
	FailMission(ctx echo.Context, id openapi_types.UUID) error
	// (POST /api/v1/missions/{id}/complete)
	CompleteMission(ctx echo.Context, id openapi_types.UUID) error
	// (POST /api/v1/drones)
	RegisterDrone(ctx echo.Context) error
	// (GET /api/v1/drones)
	ListAvailableDrones(ctx echo.Context, params ListAvailableDronesParams) error
	// (GET /api/v1/drones/{id})
	GetDrone(ctx echo.Context, id openapi_types.UUID) error
	// (PUT /api/v1/drones/{id}/location)
	UpdateDroneLocation(ctx echo.Context, id openapi_types.UUID) error
	// (PUT /api/v1/drones/{id}/battery)
	UpdateDroneBattery(ctx echo.Context, id openapi_types.UUID) error
	// (PUT /api/v1/drones/{id}/status)
	SetDroneStatus(ctx echo.Context, id openapi_types.UUID) error
	// (POST /api/v1/orders)
	RegisterOrder(ctx echo.Context) error
	// (PUT /api/v1/orders/{id}/status)
	UpdateOrderStatus(ctx echo.Context, id openapi_types.UUID) error
}

// ServerInterfaceWrapper converts echo contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

func (w *ServerInterfaceWrapper) bindID(ctx echo.Context) (openapi_types.UUID, error) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "id", ctx.Param("id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return id, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter id: %s", err))
	}
	return id, nil
}

func (w *ServerInterfaceWrapper) withID(handle func(echo.Context, openapi_types.UUID) error) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		id, err := w.bindID(ctx)
		if err != nil {
			return err
		}
		return handle(ctx, id)
	}
}

// ListActiveMissions converts echo context to params.
func (w *ServerInterfaceWrapper) ListActiveMissions(ctx echo.Context) error {
	var params ListActiveMissionsParams
	err := runtime.BindQueryParameter("form", true, false, "restaurantId", ctx.QueryParams(), &params.RestaurantId)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter restaurantId: %s", err))
	}
	return w.Handler.ListActiveMissions(ctx, params)
}

// ListAvailableDrones converts echo context to params.
func (w *ServerInterfaceWrapper) ListAvailableDrones(ctx echo.Context) error {
	var params ListAvailableDronesParams
	err := runtime.BindQueryParameter("form", true, true, "restaurantId", ctx.QueryParams(), &params.RestaurantId)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter restaurantId: %s", err))
	}
	return w.Handler.ListAvailableDrones(ctx, params)
}

// EchoRouter is satisfied by both *echo.Echo and *echo.Group.
type EchoRouter interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PATCH(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// RegisterHandlers adds each server route to the router.
func RegisterHandlers(router EchoRouter, si ServerInterface) {
	RegisterHandlersWithBaseURL(router, si, "")
}

// RegisterHandlersWithBaseURL registers handlers, and prepends BaseURL to the paths, so that the paths
// can be served under a prefix.
func RegisterHandlersWithBaseURL(router EchoRouter, si ServerInterface, baseURL string) {
	w := ServerInterfaceWrapper{Handler: si}

	router.POST(baseURL+"/api/v1/missions", si.CreateMission)
	router.GET(baseURL+"/api/v1/missions", w.ListActiveMissions)
	router.GET(baseURL+"/api/v1/missions/:id", w.withID(si.GetMission))
	router.PATCH(baseURL+"/api/v1/missions/:id/status", w.withID(si.UpdateMissionStatus))
	router.POST(baseURL+"/api/v1/missions/:id/telemetry", w.withID(si.AppendTelemetry))
	router.POST(baseURL+"/api/v1/missions/:id/abort", w.withID(si.AbortMission))
	router.POST(baseURL+"/api/v1/missions/:id/fail", w.withID(si.FailMission))
	router.POST(baseURL+"/api/v1/missions/:id/complete", w.withID(si.CompleteMission))
	router.POST(baseURL+"/api/v1/drones", si.RegisterDrone)
	router.GET(baseURL+"/api/v1/drones", w.ListAvailableDrones)
	router.GET(baseURL+"/api/v1/drones/:id", w.withID(si.GetDrone))
	router.PUT(baseURL+"/api/v1/drones/:id/location", w.withID(si.UpdateDroneLocation))
	router.PUT(baseURL+"/api/v1/drones/:id/battery", w.withID(si.UpdateDroneBattery))
	router.PUT(baseURL+"/api/v1/drones/:id/status", w.withID(si.SetDroneStatus))
	router.POST(baseURL+"/api/v1/orders", si.RegisterOrder)
	router.PUT(baseURL+"/api/v1/orders/:id/status", w.withID(si.UpdateOrderStatus))
}
