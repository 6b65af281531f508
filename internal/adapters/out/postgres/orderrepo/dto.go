// Package orderrepo persists the local order projection.
package orderrepo

import (
	"encoding/json"
	"time"

	"dronedispatch/internal/core/domain/model/kernel"
	"dronedispatch/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO is the row of the orders table. Items and history are JSON documents;
// the delivery location stays NULL until the order is geocoded.
type OrderDTO struct {
	ID                 uuid.UUID         `gorm:"type:uuid;primaryKey"`
	RestaurantID       uuid.UUID         `gorm:"type:uuid;index;not null"`
	CustomerID         uuid.UUID         `gorm:"type:uuid;not null"`
	Status             string            `gorm:"index;not null"`
	Items              []ItemDTO         `gorm:"type:text;serializer:json"`
	RestaurantLocation LocationDTO       `gorm:"embedded;embeddedPrefix:restaurant_"`
	History            []StatusChangeDTO `gorm:"type:text;serializer:json"`
	DeliveryLat        *float64
	DeliveryLng        *float64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (OrderDTO) TableName() string {
	return "orders"
}

// LocationDTO is the embedded restaurant coordinate pair.
type LocationDTO struct {
	Lat float64
	Lng float64
}

// ItemDTO is one line of the items JSON document.
type ItemDTO struct {
	Name        string `json:"name"`
	WeightGrams int    `json:"weightGrams"`
	Quantity    int    `json:"quantity"`
}

// StatusChangeDTO is one entry of the history JSON document.
type StatusChangeDTO struct {
	Status  string    `json:"status"`
	ActorID string    `json:"actorId,omitempty"`
	Note    string    `json:"note,omitempty"`
	At      time.Time `json:"at"`
}

// fromDomain maps the order aggregate to its row, copying items and history.
func fromDomain(o *order.Order) OrderDTO {
	items := make([]ItemDTO, 0, len(o.Items()))
	for _, item := range o.Items() {
		items = append(items, ItemDTO(item))
	}

	history := make([]StatusChangeDTO, 0, len(o.History()))
	for _, change := range o.History() {
		history = append(history, StatusChangeDTO{
			Status:  change.Status.String(),
			ActorID: change.ActorID,
			Note:    change.Note,
			At:      change.At,
		})
	}

	dto := OrderDTO{
		ID:           o.ID().Bytes(),
		RestaurantID: o.RestaurantID().Bytes(),
		CustomerID:   o.CustomerID().Bytes(),
		Status:       o.Status().String(),
		Items:        items,
		RestaurantLocation: LocationDTO{
			Lat: o.RestaurantLocation().Lat(),
			Lng: o.RestaurantLocation().Lng(),
		},
		History: history,
	}

	if loc := o.DeliveryLocation(); loc != nil {
		lat, lng := loc.Lat(), loc.Lng()
		dto.DeliveryLat = &lat
		dto.DeliveryLng = &lng
	}

	return dto
}

// columns lists the mutable columns of an order. JSON columns are encoded here
// because map updates skip the serializer.
func (dto OrderDTO) columns(now time.Time) (map[string]any, error) {
	history, err := json.Marshal(dto.History)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"status":       dto.Status,
		"delivery_lat": dto.DeliveryLat,
		"delivery_lng": dto.DeliveryLng,
		"history":      string(history),
		"updated_at":   now,
	}, nil
}

// toDomain restores the aggregate from a row. A row that no longer satisfies
// the aggregate invariants surfaces as an error rather than a partial order.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	restaurantID, err := kernel.UUIDFromBytes(dto.RestaurantID[:])
	if err != nil {
		return nil, err
	}
	customerID, err := kernel.UUIDFromBytes(dto.CustomerID[:])
	if err != nil {
		return nil, err
	}

	status, err := order.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	restaurantLocation, err := kernel.NewLocation(dto.RestaurantLocation.Lat, dto.RestaurantLocation.Lng)
	if err != nil {
		return nil, err
	}

	var deliveryLocation *kernel.Location
	if dto.DeliveryLat != nil && dto.DeliveryLng != nil {
		loc, locErr := kernel.NewLocation(*dto.DeliveryLat, *dto.DeliveryLng)
		if locErr != nil {
			return nil, locErr
		}
		deliveryLocation = &loc
	}

	items := make([]order.Item, 0, len(dto.Items))
	for _, item := range dto.Items {
		items = append(items, order.Item(item))
	}

	history := make([]order.StatusChange, 0, len(dto.History))
	for _, change := range dto.History {
		changeStatus, parseErr := order.ParseStatus(change.Status)
		if parseErr != nil {
			return nil, parseErr
		}
		history = append(history, order.StatusChange{
			Status:  changeStatus,
			ActorID: change.ActorID,
			Note:    change.Note,
			At:      change.At,
		})
	}

	return order.RestoreOrder(id, restaurantID, customerID, items, restaurantLocation, deliveryLocation, status, history)
}
