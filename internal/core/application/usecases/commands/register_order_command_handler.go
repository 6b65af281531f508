package commands

import (
	"context"
	"time"

	"dronedispatch/internal/core/domain/model/order"
	"dronedispatch/internal/core/ports"
)

// RegisterOrderCommandHandler stores a new order. Importing the same order id
// twice is a StateConflictError.
//
// Orders are owned by the order service; this handler keeps the local copy that
// mission planning reads. The order keeps the ID it has upstream.
//
// Example:
//
//	handler := NewRegisterOrderCommandHandler(uowFactory, publisher)
//	o, err := handler.Handle(ctx, cmd)
//	if err != nil {
//	    return fmt.Errorf("register order: %w", err)
//	}
//	// o can now be dispatched with CreateMission
type RegisterOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	publisher  *Publisher
}

// NewRegisterOrderCommandHandler creates a handler for register order requests.
func NewRegisterOrderCommandHandler(uowFactory OrderUoWFactory, publisher *Publisher) RegisterOrderCommandHandler {
	return RegisterOrderCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
	}
}

// Handle stores the order and announces it on the restaurant channel.
// Validation errors from NewOrder are returned before a transaction is opened.
func (h RegisterOrderCommandHandler) Handle(ctx context.Context, command RegisterOrderCommand) (*order.Order, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	o, err := order.NewOrder(
		command.OrderID(),
		command.RestaurantID(),
		command.CustomerID(),
		command.Items(),
		command.RestaurantLocation(),
		command.DeliveryLocation(),
		command.Status(),
		command.ActorID(),
		time.Now().UTC(),
	)
	if err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OrderRepository().Add(ctx, o); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.publisher.Emit(ctx, ports.ChannelRestaurant, ports.EventOrderStatus, newOrderEvent(o))
	return o, nil
}
