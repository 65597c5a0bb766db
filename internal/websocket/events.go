package websocket

import "encoding/json"

// Event names carried on the wire. Client->server events reuse the names the
// frontend emits; server->client events are listed below them.
const (
	EventMessage           = "message"
	EventMarkAsRead        = "markAsRead"
	EventTyping            = "typing"
	EventStoppedTyping     = "stoppedTyping"
	EventNewOrderBroadcast = "new-order-broadcast"

	EventMessageSent    = "message:sent"
	EventMessagesRead   = "messagesRead"
	EventOrderConfirmed = "order:confirmed"
	EventAllOnlineUsers = "all-online-users"
	EventError          = "error"
)

// Event is the JSON envelope for every frame in both directions.
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type outboundEvent struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

func encodeEvent(name string, data interface{}) ([]byte, error) {
	return json.Marshal(outboundEvent{Event: name, Data: data})
}

// Payloads for server->client events.
type MessagesReadPayload struct {
	ReaderID uint `json:"readerId"`
}

type TypingPayload struct {
	UserID uint `json:"userId"`
}

type OrderBroadcastPayload struct {
	Message string `json:"message"`
}

// ErrorPayload is sent only to the connection whose request failed.
type ErrorPayload struct {
	Event   string `json:"event,omitempty"`
	Message string `json:"message"`
}
