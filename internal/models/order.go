package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderStatus follows the order through its lifecycle. Cancelled and
// delivered are terminal.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the status forbids further transitions.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCancelled || s == OrderStatusDelivered
}

/** --------------------ENTITIES-------------------- */
// Order is a customer purchase of one or more products.
type Order struct {
	gorm.Model
	UserID      uint        `gorm:"not null;index" json:"userId"`
	Status      OrderStatus `gorm:"type:varchar(16);not null;default:pending" json:"status"`
	TotalAmount float64     `gorm:"not null" json:"totalAmount"`
	Quantity    int         `gorm:"not null" json:"quantity"`

	User          User           `gorm:"foreignKey:UserID" json:"user"`
	OrderProducts []OrderProduct `gorm:"foreignKey:OrderID" json:"orderProducts"`
}

// OrderProduct is a line item joining an order to a product.
type OrderProduct struct {
	OrderID   uint `gorm:"primaryKey" json:"orderId"`
	ProductID uint `gorm:"primaryKey" json:"productId"`
	Quantity  int  `gorm:"not null" json:"quantity"`

	Product Product `gorm:"foreignKey:ProductID" json:"product"`
}

/** -------------------- DTOs -------------------- */
// Request
type OrderItem struct {
	ProductID uint `json:"productId" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

type CreateOrderRequest struct {
	Items  []OrderItem `json:"items" binding:"required,min=1,dive"`
	Status OrderStatus `json:"status" binding:"omitempty,oneof=pending processing shipped delivered cancelled"`
}

type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" binding:"required,oneof=pending processing shipped delivered cancelled"`
}

// Response
type OrderResponse struct {
	ID            uint           `json:"id"`
	UserID        uint           `json:"userId"`
	User          UserBrief      `json:"user"`
	Status        OrderStatus    `json:"status"`
	TotalAmount   float64        `json:"totalAmount"`
	Quantity      int            `json:"quantity"`
	OrderProducts []OrderProduct `json:"orderProducts,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

func (o *Order) ToResponse() OrderResponse {
	return OrderResponse{
		ID:            o.ID,
		UserID:        o.UserID,
		User:          o.User.ToBrief(),
		Status:        o.Status,
		TotalAmount:   o.TotalAmount,
		Quantity:      o.Quantity,
		OrderProducts: o.OrderProducts,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}
