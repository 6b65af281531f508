package commands

import (
	"context"
	"time"

	"dronedispatch/internal/core/domain/model/order"
	"dronedispatch/internal/core/ports"
)

// UpdateOrderStatusCommandHandler applies status changes pushed by the order service.
// Each change is stamped with the actor and note so the order history shows who
// moved it.
//
// Example:
//
//	handler := NewUpdateOrderStatusCommandHandler(uowFactory, publisher)
//	cmd, err := NewUpdateOrderStatusCommand(orderID, order.ReadyForPickup, "kitchen-7", "packed")
//	if err != nil {
//	    return err
//	}
//
//	o, err := handler.Handle(ctx, cmd)
//	if errors.Is(err, errs.ErrStateConflict) {
//	    // the move is not in the transition table
//	}
type UpdateOrderStatusCommandHandler struct {
	uowFactory OrderUoWFactory
	publisher  *Publisher
}

// NewUpdateOrderStatusCommandHandler creates a handler for update order status requests.
func NewUpdateOrderStatusCommandHandler(uowFactory OrderUoWFactory, publisher *Publisher) UpdateOrderStatusCommandHandler {
	return UpdateOrderStatusCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
	}
}

// Handle applies the new status. Repeating the current status is accepted and
// changes nothing; a terminal order rejects every change.
//
// State changes:
//   - The order status and history are saved in one transaction.
//   - An order.status_changed event goes to the restaurant channel after commit.
func (h UpdateOrderStatusCommandHandler) Handle(ctx context.Context, command UpdateOrderStatusCommand) (*order.Order, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	o, err := uow.OrderRepository().Get(ctx, command.OrderID())
	if err != nil {
		return nil, err
	}

	previous := o.Status()
	if err = o.UpdateStatus(command.Status(), command.ActorID(), command.Note(), time.Now().UTC()); err != nil {
		return nil, err
	}
	if o.Status() == previous {
		return o, nil
	}

	if err = uow.OrderRepository().Update(ctx, o); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.publisher.Emit(ctx, ports.ChannelRestaurant, ports.EventOrderStatus, newOrderEvent(o))
	return o, nil
}
