package handlers

import (
	"net/http"

	"marketplace-service/internal/services"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService  services.UserService
	redisService *services.RedisService
}

func NewUserHandler(userService services.UserService, redisService *services.RedisService) *UserHandler {
	return &UserHandler{userService: userService, redisService: redisService}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list users"})
		return
	}

	c.JSON(http.StatusOK, users)
}

// OnlineUsers serves the presence snapshot from the Redis mirror so polling
// clients do not have to hold a websocket open.
func (h *UserHandler) OnlineUsers(c *gin.Context) {
	ids, err := h.redisService.GetOnlineUsers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read presence"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"online": ids})
}
