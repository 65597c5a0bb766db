package websocket

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"marketplace-service/internal/models"
)

// Room names for role based broadcast. Membership is fixed at registration
// and only ever used for addressing, never for membership queries.
const (
	RoomMerchants = "merchants"
	RoomCustomers = "customers"
)

// RoomName maps a user role to its presence room.
func RoomName(role models.UserRole) string {
	if role == models.RoleMerchant {
		return RoomMerchants
	}
	return RoomCustomers
}

// PresenceTracker mirrors join/leave into an external store. The hub works
// without one; a nil tracker disables mirroring.
type PresenceTracker interface {
	SetUserOnline(ctx context.Context, userID uint) error
	SetUserOffline(ctx context.Context, userID uint) error
}

// Hub owns the connection registry and the presence rooms. It is the single
// shared mutable structure of the realtime layer: registration runs through
// the Run loop, lookups and broadcasts take the read lock.
//
// The registry maps each user id to at most one live connection. A second
// connection from the same user replaces the first; the replaced connection
// is closed and its later disconnect does not evict the replacement.
type Hub struct {
	register   chan *Client
	unregister chan *Client

	mu      sync.RWMutex
	clients map[uint]*Client
	rooms   map[string]map[*Client]bool

	presence PresenceTracker

	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(presence PresenceTracker) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uint]*Client),
		rooms: map[string]map[*Client]bool{
			RoomMerchants: make(map[*Client]bool),
			RoomCustomers: make(map[*Client]bool),
		},
		presence: presence,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Run serializes registration and deregistration. Start it once, in its own
// goroutine, before serving connections.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)
		case client := <-h.unregister:
			h.unregisterClient(client)
		case <-h.ctx.Done():
			return
		}
	}
}

func (h *Hub) Stop() {
	h.cancel()
}

// notifyDisconnect hands a closing connection to the run loop. Once the hub
// has stopped, nobody drains the unregister channel anymore, so this gives
// up instead of blocking the pump goroutine forever.
func (h *Hub) notifyDisconnect(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.ctx.Done():
		client.closeSend()
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	if old, ok := h.clients[client.userID]; ok {
		// Single-session-wins: the newest connection steals delivery.
		delete(h.rooms[old.room], old)
		old.closeSend()
		slog.Info("Replaced existing connection", "userID", client.userID, "oldConnID", old.id)
	}
	h.clients[client.userID] = client
	h.rooms[client.room][client] = true
	h.mu.Unlock()

	slog.Info("Client registered", "connID", client.id, "userID", client.userID, "room", client.room)

	if h.presence != nil {
		if err := h.presence.SetUserOnline(h.ctx, client.userID); err != nil {
			slog.Error("Failed to mirror user online", "userID", client.userID, "error", err)
		}
	}

	h.broadcastPresence()
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	owner := h.clients[client.userID] == client
	if owner {
		delete(h.clients, client.userID)
		delete(h.rooms[client.room], client)
	}
	h.mu.Unlock()

	client.closeSend()

	if !owner {
		// A replaced connection going away; the registry already points at
		// its successor.
		return
	}

	slog.Info("Client unregistered", "connID", client.id, "userID", client.userID)

	if h.presence != nil {
		if err := h.presence.SetUserOffline(h.ctx, client.userID); err != nil {
			slog.Error("Failed to mirror user offline", "userID", client.userID, "error", err)
		}
	}

	h.broadcastPresence()
}

// OnlineUserIDs returns a consistent point-in-time snapshot of the registered
// user ids, ascending.
func (h *Hub) OnlineUserIDs() []uint {
	h.mu.RLock()
	ids := make([]uint, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	h.mu.RUnlock()

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// SendToUser delivers one event to the connection registered for userID.
// Returns false when the user is offline; that is a normal outcome, not an
// error.
func (h *Hub) SendToUser(userID uint, event string, data interface{}) bool {
	h.mu.RLock()
	client, ok := h.clients[userID]
	h.mu.RUnlock()
	if !ok {
		return false
	}

	msg, err := encodeEvent(event, data)
	if err != nil {
		slog.Error("Failed to encode event", "event", event, "error", err)
		return false
	}
	return client.trySend(msg)
}

// BroadcastToRoom delivers one event to every connection in the room.
func (h *Hub) BroadcastToRoom(room string, event string, data interface{}) {
	msg, err := encodeEvent(event, data)
	if err != nil {
		slog.Error("Failed to encode event", "event", event, "error", err)
		return
	}

	h.mu.RLock()
	members := make([]*Client, 0, len(h.rooms[room]))
	for client := range h.rooms[room] {
		members = append(members, client)
	}
	h.mu.RUnlock()

	for _, client := range members {
		client.trySend(msg)
	}
}

// BroadcastAll delivers one event to every registered connection.
func (h *Hub) BroadcastAll(event string, data interface{}) {
	msg, err := encodeEvent(event, data)
	if err != nil {
		slog.Error("Failed to encode event", "event", event, "error", err)
		return
	}

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		client.trySend(msg)
	}
}

func (h *Hub) broadcastPresence() {
	h.BroadcastAll(EventAllOnlineUsers, h.OnlineUserIDs())
}
