package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"marketplace-service/internal/models"
	"marketplace-service/internal/services"
)

// Router dispatches inbound frames from authenticated connections. Failures
// are answered on the offending connection only; no event ever takes down
// another client or the process.
type Router struct {
	hub    *Hub
	chats  services.ChatService
	orders services.OrderService
}

func NewRouter(hub *Hub, chats services.ChatService, orders services.OrderService) *Router {
	return &Router{
		hub:    hub,
		chats:  chats,
		orders: orders,
	}
}

// Dispatch routes one raw frame. Called from the owning connection's read
// pump, so frames from one connection are handled in arrival order.
func (r *Router) Dispatch(c *Client, raw []byte) {
	var event Event
	if err := json.Unmarshal(raw, &event); err != nil {
		r.sendError(c, "", "malformed event")
		return
	}

	ctx := context.Background()

	switch event.Event {
	case EventMessage:
		r.handleMessage(ctx, c, event.Data)
	case EventMarkAsRead:
		r.handleMarkAsRead(ctx, c, event.Data)
	case EventTyping, EventStoppedTyping:
		r.handleTyping(c, event.Event, event.Data)
	case EventNewOrderBroadcast:
		r.handleNewOrder(ctx, c, event.Data)
	default:
		slog.Warn("Unknown event", "event", event.Event, "userID", c.userID)
		r.sendError(c, event.Event, "unknown event")
	}
}

// handleMessage persists the chat message, then delivers it to the receiver
// when online and acknowledges the sender with the saved record. The persist
// strictly precedes the notify: a failed write produces no delivery.
func (r *Router) handleMessage(ctx context.Context, c *Client, data json.RawMessage) {
	var req models.SendMessageRequest
	if err := json.Unmarshal(data, &req); err != nil {
		r.sendError(c, EventMessage, "malformed payload")
		return
	}

	saved, err := r.chats.SendMessage(ctx, c.userID, req.ReceiverID, req.Content)
	if err != nil {
		r.sendError(c, EventMessage, err.Error())
		return
	}

	// Offline receiver: the message is persisted, nothing else happens.
	r.hub.SendToUser(saved.Receiver.ID, EventMessage, saved)
	r.reply(c, EventMessageSent, saved)
}

// handleMarkAsRead batch-marks the conversation read for the reader and
// notifies the original sender, targeted, so its UI can flip delivery ticks.
func (r *Router) handleMarkAsRead(ctx context.Context, c *Client, data json.RawMessage) {
	var req models.MarkAsReadRequest
	if err := json.Unmarshal(data, &req); err != nil {
		r.sendError(c, EventMarkAsRead, "malformed payload")
		return
	}

	if err := r.chats.MarkConversationRead(ctx, req.OtherUserID, req.UserID); err != nil {
		r.sendError(c, EventMarkAsRead, err.Error())
		return
	}

	r.hub.SendToUser(req.OtherUserID, EventMessagesRead, MessagesReadPayload{ReaderID: req.UserID})
}

// handleTyping relays the indicator to the other side of the conversation.
// Nothing is persisted and an offline target is a silent no-op.
func (r *Router) handleTyping(c *Client, event string, data json.RawMessage) {
	var req models.TypingRequest
	if err := json.Unmarshal(data, &req); err != nil {
		r.sendError(c, event, "malformed payload")
		return
	}

	r.hub.SendToUser(req.OtherUserID, event, TypingPayload{UserID: req.UserID})
}

// handleNewOrder creates the order, then broadcasts a confirmation line to
// the merchants room and acknowledges the placing connection with the same
// text. A rejected order reaches only the placing connection.
func (r *Router) handleNewOrder(ctx context.Context, c *Client, data json.RawMessage) {
	var req models.CreateOrderRequest
	if err := json.Unmarshal(data, &req); err != nil {
		r.sendError(c, EventNewOrderBroadcast, "malformed payload")
		return
	}

	order, err := r.orders.CreateOrder(ctx, c.userID, req)
	if err != nil {
		r.sendError(c, EventNewOrderBroadcast, err.Error())
		return
	}

	confirmation := OrderConfirmation(order)
	r.hub.BroadcastToRoom(RoomMerchants, EventNewOrderBroadcast, OrderBroadcastPayload{Message: confirmation})
	r.reply(c, EventOrderConfirmed, OrderBroadcastPayload{Message: confirmation})
}

// OrderConfirmation builds the line announced to the merchants room when an
// order lands.
func OrderConfirmation(order *models.Order) string {
	return fmt.Sprintf("%s has placed an order with order-id: %d", order.User.Name, order.ID)
}

func (r *Router) reply(c *Client, event string, data interface{}) {
	msg, err := encodeEvent(event, data)
	if err != nil {
		slog.Error("Failed to encode reply", "event", event, "error", err)
		return
	}
	c.trySend(msg)
}

func (r *Router) sendError(c *Client, event, message string) {
	msg, err := encodeEvent(EventError, ErrorPayload{Event: event, Message: message})
	if err != nil {
		return
	}
	c.trySend(msg)
}
