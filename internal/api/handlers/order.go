package handlers

import (
	"errors"
	"net/http"

	"marketplace-service/internal/models"
	"marketplace-service/internal/services"
	"marketplace-service/internal/websocket"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orderService services.OrderService
	hub          *websocket.Hub
}

func NewOrderHandler(orderService services.OrderService, hub *websocket.Hub) *OrderHandler {
	return &OrderHandler{orderService: orderService, hub: hub}
}

// CreateOrder is the REST twin of the `new-order-broadcast` socket event:
// same creation path, same merchants-room notification.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	userID := c.GetUint("user_id")

	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), userID, req)
	if err != nil {
		writeOrderError(c, err)
		return
	}

	h.hub.BroadcastToRoom(websocket.RoomMerchants, websocket.EventNewOrderBroadcast,
		websocket.OrderBroadcastPayload{Message: websocket.OrderConfirmation(order)})

	c.JSON(http.StatusCreated, order.ToResponse())
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	orders, err := h.orderService.ListOrders(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list orders"})
		return
	}

	c.JSON(http.StatusOK, toOrderResponses(orders))
}

func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	userID := c.GetUint("user_id")

	orders, err := h.orderService.ListUserOrders(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list orders"})
		return
	}

	c.JSON(http.StatusOK, toOrderResponses(orders))
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID := c.GetUint("user_id")

	id, err := parseIDParam(c)
	if err != nil {
		return
	}

	order, err := h.orderService.GetUserOrder(c.Request.Context(), userID, id)
	if err != nil {
		writeOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, order.ToResponse())
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	userID := c.GetUint("user_id")

	id, err := parseIDParam(c)
	if err != nil {
		return
	}

	var req models.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), userID, id, req.Status)
	if err != nil {
		writeOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, order.ToResponse())
}

func (h *OrderHandler) CancelOrder(c *gin.Context) {
	userID := c.GetUint("user_id")

	id, err := parseIDParam(c)
	if err != nil {
		return
	}

	order, err := h.orderService.CancelOrder(c.Request.Context(), userID, id)
	if err != nil {
		writeOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, order.ToResponse())
}

func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	userID := c.GetUint("user_id")

	id, err := parseIDParam(c)
	if err != nil {
		return
	}

	if err := h.orderService.DeleteOrder(c.Request.Context(), userID, id); err != nil {
		writeOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "order deleted successfully"})
}

func writeOrderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidQuantity),
		errors.Is(err, services.ErrInsufficientStock),
		errors.Is(err, services.ErrOrderNotUpdatable):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "order operation failed"})
	}
}

func toOrderResponses(orders []models.Order) []models.OrderResponse {
	responses := make([]models.OrderResponse, 0, len(orders))
	for i := range orders {
		responses = append(responses, orders[i].ToResponse())
	}
	return responses
}
