package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"marketplace-service/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeVerifier struct {
	users map[string]*models.User
}

func (f *fakeVerifier) VerifyToken(_ context.Context, token string) (*models.User, error) {
	user, ok := f.users[token]
	if !ok {
		return nil, errors.New("invalid token")
	}
	return user, nil
}

func newHandshakeServer(t *testing.T, verifier TokenVerifier) (*Hub, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := NewHub(nil)
	go hub.Run()

	engine := gin.New()
	engine.GET("/ws", ServeWS(hub, verifier, NewRouter(hub, nil, nil)))
	srv := httptest.NewServer(engine)

	t.Cleanup(func() {
		srv.Close()
		hub.Stop()
	})
	return hub, srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func TestHandshakeRejectedClosesSilently(t *testing.T) {
	hub, srv := newHandshakeServer(t, &fakeVerifier{})

	cases := []struct {
		name   string
		header http.Header
	}{
		{"missing token", nil},
		{"invalid token", http.Header{"Authorization": []string{"Bearer bogus"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv), tc.header)
			require.NoError(t, err, "upgrade itself succeeds; rejection happens after")
			defer conn.Close()

			// The transport drops without a close frame or any data frame:
			// the first read fails instead of delivering anything.
			conn.SetReadDeadline(time.Now().Add(2 * time.Second))
			_, _, err = conn.ReadMessage()
			require.Error(t, err)
			assert.False(t, websocket.IsCloseError(err, websocket.CloseNormalClosure),
				"rejection must not announce itself with a close frame")
		})
	}

	assert.Empty(t, hub.OnlineUserIDs(), "rejected connections never enter the registry")
}

func TestHandshakeValidTokenRegisters(t *testing.T) {
	user := &models.User{Model: gorm.Model{ID: 5}, Name: "alice", Role: models.RoleCustomer}
	verifier := &fakeVerifier{users: map[string]*models.User{"good": user}}

	cases := []struct {
		name   string
		query  string
		header http.Header
	}{
		{"authorization header", "", http.Header{"Authorization": []string{"Bearer good"}}},
		{"token query param", "?token=good", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hub, srv := newHandshakeServer(t, verifier)

			conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv)+tc.query, tc.header)
			require.NoError(t, err)
			defer conn.Close()

			conn.SetReadDeadline(time.Now().Add(2 * time.Second))
			_, raw, err := conn.ReadMessage()
			require.NoError(t, err, "an accepted connection is greeted with the presence snapshot")

			var f frame
			require.NoError(t, json.Unmarshal(raw, &f))
			require.Equal(t, EventAllOnlineUsers, f.Event)

			var ids []uint
			require.NoError(t, json.Unmarshal(f.Data, &ids))
			assert.Equal(t, []uint{5}, ids)

			assert.Equal(t, []uint{5}, hub.OnlineUserIDs())
		})
	}
}
