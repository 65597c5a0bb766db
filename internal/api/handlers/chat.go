package handlers

import (
	"net/http"
	"strconv"

	"marketplace-service/internal/services"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	chatService services.ChatService
}

func NewChatHandler(chatService services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Conversation returns the full history between the session user and the
// user in the path, oldest first. The projection matches the live `message`
// frames field for field, so clients can merge the two without reshaping.
func (h *ChatHandler) Conversation(c *gin.Context) {
	userID := c.GetUint("user_id")

	otherID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	chats, err := h.chatService.Conversation(c.Request.Context(), userID, uint(otherID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load conversation"})
		return
	}

	c.JSON(http.StatusOK, chats)
}
