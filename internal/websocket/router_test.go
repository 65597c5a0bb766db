package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"marketplace-service/internal/models"
	"marketplace-service/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeChatService struct {
	sendErr   error
	sent      []models.ChatResponse
	markCalls [][2]uint // senderID, readerID
}

func (f *fakeChatService) SendMessage(_ context.Context, senderID, receiverID uint, content string) (*models.ChatResponse, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	resp := models.ChatResponse{
		ID:        uint(len(f.sent) + 1),
		Content:   content,
		IsRead:    false,
		Sender:    models.UserBrief{ID: senderID, Name: fmt.Sprintf("user-%d", senderID)},
		Receiver:  models.UserBrief{ID: receiverID, Name: fmt.Sprintf("user-%d", receiverID)},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	f.sent = append(f.sent, resp)
	return &resp, nil
}

func (f *fakeChatService) MarkConversationRead(_ context.Context, senderID, readerID uint) error {
	f.markCalls = append(f.markCalls, [2]uint{senderID, readerID})
	return nil
}

func (f *fakeChatService) Conversation(context.Context, uint, uint) ([]models.ChatResponse, error) {
	return nil, nil
}

type fakeOrderService struct {
	created *models.Order
	err     error
	calls   int
}

func (f *fakeOrderService) CreateOrder(_ context.Context, userID uint, _ models.CreateOrderRequest) (*models.Order, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	order := *f.created
	order.UserID = userID
	return &order, nil
}

func (f *fakeOrderService) GetOrder(context.Context, uint) (*models.Order, error) { return nil, nil }
func (f *fakeOrderService) ListOrders(context.Context) ([]models.Order, error)   { return nil, nil }
func (f *fakeOrderService) ListUserOrders(context.Context, uint) ([]models.Order, error) {
	return nil, nil
}
func (f *fakeOrderService) GetUserOrder(context.Context, uint, uint) (*models.Order, error) {
	return nil, nil
}
func (f *fakeOrderService) UpdateStatus(context.Context, uint, uint, models.OrderStatus) (*models.Order, error) {
	return nil, nil
}
func (f *fakeOrderService) CancelOrder(context.Context, uint, uint) (*models.Order, error) {
	return nil, nil
}
func (f *fakeOrderService) DeleteOrder(context.Context, uint, uint) error { return nil }

func event(t *testing.T, name string, data interface{}) []byte {
	t.Helper()
	raw, err := json.Marshal(map[string]interface{}{"event": name, "data": data})
	require.NoError(t, err)
	return raw
}

func setupRouter(t *testing.T, chats services.ChatService, orders services.OrderService, clients ...*Client) (*Hub, *Router) {
	t.Helper()
	hub := NewHub(nil)
	for _, c := range clients {
		hub.registerClient(c)
	}
	for _, c := range clients {
		drain(c)
	}
	return hub, NewRouter(hub, chats, orders)
}

func TestMessagePersistsDeliversAndAcks(t *testing.T) {
	chats := &fakeChatService{}
	sender := newTestClient(2, models.RoleCustomer)
	receiver := newTestClient(1, models.RoleMerchant)
	_, router := setupRouter(t, chats, &fakeOrderService{}, sender, receiver)

	router.Dispatch(sender, event(t, EventMessage, models.SendMessageRequest{Content: "hi", ReceiverID: 1}))

	require.Len(t, chats.sent, 1)

	f := nextFrame(t, receiver)
	require.Equal(t, EventMessage, f.Event)
	var delivered models.ChatResponse
	require.NoError(t, json.Unmarshal(f.Data, &delivered))
	assert.Equal(t, "hi", delivered.Content)
	assert.False(t, delivered.IsRead)
	assert.Equal(t, uint(2), delivered.Sender.ID)

	ack := nextFrame(t, sender)
	require.Equal(t, EventMessageSent, ack.Event)
	var acked models.ChatResponse
	require.NoError(t, json.Unmarshal(ack.Data, &acked))
	assert.Equal(t, delivered.ID, acked.ID, "ack and delivery must carry the same record")
}

func TestMessageRejectedReachesOnlySender(t *testing.T) {
	chats := &fakeChatService{sendErr: services.ErrEmptyContent}
	sender := newTestClient(2, models.RoleCustomer)
	receiver := newTestClient(1, models.RoleMerchant)
	_, router := setupRouter(t, chats, &fakeOrderService{}, sender, receiver)

	router.Dispatch(sender, event(t, EventMessage, models.SendMessageRequest{Content: "   ", ReceiverID: 1}))

	f := nextFrame(t, sender)
	assert.Equal(t, EventError, f.Event)
	assert.Empty(t, chats.sent)

	select {
	case raw := <-receiver.send:
		t.Fatalf("receiver should see nothing on rejected send, got %s", raw)
	default:
	}
}

func TestMessageOfflineReceiverStillPersists(t *testing.T) {
	chats := &fakeChatService{}
	sender := newTestClient(2, models.RoleCustomer)
	_, router := setupRouter(t, chats, &fakeOrderService{}, sender)

	router.Dispatch(sender, event(t, EventMessage, models.SendMessageRequest{Content: "hi", ReceiverID: 99}))

	require.Len(t, chats.sent, 1, "offline receiver must not prevent persistence")
	ack := nextFrame(t, sender)
	assert.Equal(t, EventMessageSent, ack.Event)
}

func TestMarkAsReadNotifiesOriginalSender(t *testing.T) {
	chats := &fakeChatService{}
	reader := newTestClient(1, models.RoleMerchant)
	original := newTestClient(2, models.RoleCustomer)
	_, router := setupRouter(t, chats, &fakeOrderService{}, reader, original)

	router.Dispatch(reader, event(t, EventMarkAsRead, models.MarkAsReadRequest{UserID: 1, OtherUserID: 2}))

	require.Equal(t, [][2]uint{{2, 1}}, chats.markCalls, "messages from 2 to 1 get marked")

	f := nextFrame(t, original)
	require.Equal(t, EventMessagesRead, f.Event)
	var payload MessagesReadPayload
	require.NoError(t, json.Unmarshal(f.Data, &payload))
	assert.Equal(t, uint(1), payload.ReaderID)
}

func TestTypingRelaysToTarget(t *testing.T) {
	a := newTestClient(1, models.RoleMerchant)
	b := newTestClient(2, models.RoleCustomer)
	_, router := setupRouter(t, &fakeChatService{}, &fakeOrderService{}, a, b)

	for _, name := range []string{EventTyping, EventStoppedTyping} {
		router.Dispatch(a, event(t, name, models.TypingRequest{UserID: 1, OtherUserID: 2}))

		f := nextFrame(t, b)
		require.Equal(t, name, f.Event)
		var payload TypingPayload
		require.NoError(t, json.Unmarshal(f.Data, &payload))
		assert.Equal(t, uint(1), payload.UserID)
	}
}

func TestTypingOfflineTargetIsSilent(t *testing.T) {
	a := newTestClient(1, models.RoleMerchant)
	_, router := setupRouter(t, &fakeChatService{}, &fakeOrderService{}, a)

	router.Dispatch(a, event(t, EventTyping, models.TypingRequest{UserID: 1, OtherUserID: 44}))

	select {
	case raw := <-a.send:
		t.Fatalf("no frame expected for offline typing target, got %s", raw)
	default:
	}
}

func TestOrderBroadcastReachesMerchantsRoomOnly(t *testing.T) {
	orders := &fakeOrderService{created: &models.Order{
		Model: gorm.Model{ID: 7},
		User:  models.User{Name: "Alice"},
	}}
	m1 := newTestClient(1, models.RoleMerchant)
	m2 := newTestClient(2, models.RoleMerchant)
	placer := newTestClient(3, models.RoleCustomer)
	_, router := setupRouter(t, &fakeChatService{}, orders, m1, m2, placer)

	router.Dispatch(placer, event(t, EventNewOrderBroadcast, models.CreateOrderRequest{
		Items: []models.OrderItem{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 1}},
	}))

	want := "Alice has placed an order with order-id: 7"
	for _, m := range []*Client{m1, m2} {
		f := nextFrame(t, m)
		require.Equal(t, EventNewOrderBroadcast, f.Event)
		var payload OrderBroadcastPayload
		require.NoError(t, json.Unmarshal(f.Data, &payload))
		assert.Equal(t, want, payload.Message)
	}

	ack := nextFrame(t, placer)
	require.Equal(t, EventOrderConfirmed, ack.Event)
	var payload OrderBroadcastPayload
	require.NoError(t, json.Unmarshal(ack.Data, &payload))
	assert.Equal(t, want, payload.Message)

	// The placing customer gets the confirmation only, never the room event.
	select {
	case raw := <-placer.send:
		t.Fatalf("unexpected extra frame for placer: %s", raw)
	default:
	}
}

func TestOrderRejectedNoBroadcast(t *testing.T) {
	orders := &fakeOrderService{err: services.ErrInsufficientStock}
	merchant := newTestClient(1, models.RoleMerchant)
	placer := newTestClient(3, models.RoleCustomer)
	_, router := setupRouter(t, &fakeChatService{}, orders, merchant, placer)

	router.Dispatch(placer, event(t, EventNewOrderBroadcast, models.CreateOrderRequest{
		Items: []models.OrderItem{{ProductID: 1, Quantity: 100}},
	}))

	f := nextFrame(t, placer)
	assert.Equal(t, EventError, f.Event)

	select {
	case raw := <-merchant.send:
		t.Fatalf("no broadcast expected on rejected order, got %s", raw)
	default:
	}
}

func TestUnknownEventAnswersWithError(t *testing.T) {
	c := newTestClient(1, models.RoleCustomer)
	_, router := setupRouter(t, &fakeChatService{}, &fakeOrderService{}, c)

	router.Dispatch(c, event(t, "bogus", nil))

	f := nextFrame(t, c)
	assert.Equal(t, EventError, f.Event)
}

func TestMalformedFrameAnswersWithError(t *testing.T) {
	c := newTestClient(1, models.RoleCustomer)
	_, router := setupRouter(t, &fakeChatService{}, &fakeOrderService{}, c)

	router.Dispatch(c, []byte("{not json"))

	f := nextFrame(t, c)
	assert.Equal(t, EventError, f.Event)
}
