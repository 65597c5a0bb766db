package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"marketplace-service/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient builds an authenticated client without a live socket; frames
// land in the send buffer where tests can inspect them.
func newTestClient(userID uint, role models.UserRole) *Client {
	return &Client{
		id:     uuid.New().String(),
		userID: userID,
		role:   role,
		room:   RoomName(role),
		send:   make(chan []byte, 32),
	}
}

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// nextFrame pops one queued frame, failing the test when none is buffered.
func nextFrame(t *testing.T, c *Client) frame {
	t.Helper()
	select {
	case raw, ok := <-c.send:
		require.True(t, ok, "send channel closed")
		var f frame
		require.NoError(t, json.Unmarshal(raw, &f))
		return f
	default:
		t.Fatal("no frame buffered")
		return frame{}
	}
}

func drain(c *Client) {
	for {
		select {
		case <-c.send:
		default:
			return
		}
	}
}

func TestRoomName(t *testing.T) {
	assert.Equal(t, RoomMerchants, RoomName(models.RoleMerchant))
	assert.Equal(t, RoomCustomers, RoomName(models.RoleCustomer))
}

func TestRegisterBuildsSnapshot(t *testing.T) {
	hub := NewHub(nil)

	c1 := newTestClient(1, models.RoleMerchant)
	c2 := newTestClient(2, models.RoleCustomer)
	c3 := newTestClient(3, models.RoleCustomer)

	hub.registerClient(c1)
	hub.registerClient(c2)
	hub.registerClient(c3)

	assert.Equal(t, []uint{1, 2, 3}, hub.OnlineUserIDs())

	// Every registration re-broadcasts the full snapshot to everyone
	// connected at that moment, so the first client saw all three.
	var ids []uint
	for i := 0; i < 3; i++ {
		f := nextFrame(t, c1)
		require.Equal(t, EventAllOnlineUsers, f.Event)
		require.NoError(t, json.Unmarshal(f.Data, &ids))
	}
	assert.Equal(t, []uint{1, 2, 3}, ids)
}

func TestDisconnectRebroadcastsPresence(t *testing.T) {
	hub := NewHub(nil)

	c1 := newTestClient(1, models.RoleMerchant)
	c2 := newTestClient(2, models.RoleCustomer)
	hub.registerClient(c1)
	hub.registerClient(c2)
	drain(c1)

	hub.unregisterClient(c2)

	assert.Equal(t, []uint{1}, hub.OnlineUserIDs())

	f := nextFrame(t, c1)
	require.Equal(t, EventAllOnlineUsers, f.Event)
	var ids []uint
	require.NoError(t, json.Unmarshal(f.Data, &ids))
	assert.Equal(t, []uint{1}, ids)
}

func TestUnregisterUnknownClientIsNoop(t *testing.T) {
	hub := NewHub(nil)

	stray := newTestClient(9, models.RoleCustomer)
	hub.unregisterClient(stray)

	assert.Empty(t, hub.OnlineUserIDs())
}

func TestDuplicateLoginReplacesConnection(t *testing.T) {
	hub := NewHub(nil)

	old := newTestClient(1, models.RoleCustomer)
	hub.registerClient(old)
	drain(old)

	replacement := newTestClient(1, models.RoleCustomer)
	hub.registerClient(replacement)

	// Still one distinct id online.
	assert.Equal(t, []uint{1}, hub.OnlineUserIDs())

	// Direct delivery reaches only the replacement.
	drain(replacement)
	require.True(t, hub.SendToUser(1, EventTyping, TypingPayload{UserID: 2}))
	f := nextFrame(t, replacement)
	assert.Equal(t, EventTyping, f.Event)
	assert.False(t, old.trySend([]byte("x")), "replaced connection must be closed for sends")

	// The replaced connection's disconnect must not evict its successor.
	hub.unregisterClient(old)
	assert.Equal(t, []uint{1}, hub.OnlineUserIDs())
	_, stillThere := hub.clients[1]
	assert.True(t, stillThere)
}

func TestSendToUserOffline(t *testing.T) {
	hub := NewHub(nil)
	assert.False(t, hub.SendToUser(42, EventMessage, nil))
}

func TestRoomBroadcastTargetsOnlyMembers(t *testing.T) {
	hub := NewHub(nil)

	merchant := newTestClient(1, models.RoleMerchant)
	customer := newTestClient(2, models.RoleCustomer)
	hub.registerClient(merchant)
	hub.registerClient(customer)
	drain(merchant)
	drain(customer)

	hub.BroadcastToRoom(RoomMerchants, EventNewOrderBroadcast, OrderBroadcastPayload{Message: "new order"})

	f := nextFrame(t, merchant)
	assert.Equal(t, EventNewOrderBroadcast, f.Event)

	select {
	case raw := <-customer.send:
		t.Fatalf("customer should not receive merchant broadcast, got %s", raw)
	default:
	}
}

func TestBroadcastAllReachesEveryConnection(t *testing.T) {
	hub := NewHub(nil)

	clients := []*Client{
		newTestClient(1, models.RoleMerchant),
		newTestClient(2, models.RoleCustomer),
		newTestClient(3, models.RoleCustomer),
	}
	for _, c := range clients {
		hub.registerClient(c)
	}
	for _, c := range clients {
		drain(c)
	}

	hub.BroadcastAll("ping", nil)

	for _, c := range clients {
		f := nextFrame(t, c)
		assert.Equal(t, "ping", f.Event)
	}
}

func TestDisconnectAfterStopDoesNotBlock(t *testing.T) {
	hub := NewHub(nil)
	client := newTestClient(1, models.RoleCustomer)
	hub.registerClient(client)

	// No Run loop is draining unregister; after Stop the notification must
	// return anyway so pump goroutines can exit during shutdown.
	hub.Stop()

	done := make(chan struct{})
	go func() {
		hub.notifyDisconnect(client)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disconnect notification blocked after hub stop")
	}

	assert.False(t, client.trySend([]byte("x")), "send side is closed on the way out")
}

func TestSnapshotIdempotentUnderReconnects(t *testing.T) {
	hub := NewHub(nil)

	for i := 0; i < 3; i++ {
		hub.registerClient(newTestClient(7, models.RoleCustomer))
	}
	hub.registerClient(newTestClient(8, models.RoleMerchant))

	assert.Equal(t, []uint{7, 8}, hub.OnlineUserIDs())
}
