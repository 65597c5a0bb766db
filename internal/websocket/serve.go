package websocket

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"marketplace-service/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin is not trusted for identity; the bearer credential decides.
		return true
	},
}

// TokenVerifier resolves a bearer credential to the user it belongs to.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, tokenString string) (*models.User, error)
}

// ServeWS upgrades the connection and authenticates it before any other
// handling. The credential comes from the Authorization header or, for
// browser clients that cannot set headers on a websocket, the token query
// parameter. Failure closes the transport without a reply: the client learns
// nothing about why.
func ServeWS(hub *Hub, verifier TokenVerifier, router *Router) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		token := bearerToken(c)
		if token == "" {
			conn.Close()
			return
		}

		user, err := verifier.VerifyToken(c.Request.Context(), token)
		if err != nil {
			slog.Info("Websocket authentication rejected", "remote", conn.RemoteAddr().String())
			conn.Close()
			return
		}

		client := newClient(hub, conn, user)
		hub.register <- client

		go client.writePump()
		go client.readPump(router)
	}
}

// bearerToken extracts the raw token from the handshake, stripping the
// Bearer scheme prefix if present.
func bearerToken(c *gin.Context) string {
	credential := c.GetHeader("Authorization")
	if credential == "" {
		credential = c.Query("token")
	}
	return strings.TrimSpace(strings.TrimPrefix(credential, "Bearer "))
}
