package models

import (
	"time"

	"gorm.io/gorm"
)

// UserRole decides which presence room a connection joins and which
// product/order routes a user may call.
type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleMerchant UserRole = "merchant"
)

func (r UserRole) IsValid() bool {
	return r == RoleCustomer || r == RoleMerchant
}

/** --------------------ENTITIES-------------------- */
// User represents a marketplace account, either a customer or a merchant.
type User struct {
	gorm.Model
	Name     string   `gorm:"not null" json:"name"`
	Email    string   `gorm:"uniqueIndex;not null" json:"email"`
	Password string   `json:"-"` // bcrypt hash, never serialized
	Role     UserRole `gorm:"type:varchar(16);not null;default:customer" json:"role"`

	Products []Product `gorm:"foreignKey:UserID" json:"-"`
	Orders   []Order   `gorm:"foreignKey:UserID" json:"-"`
}

/** -------------------- DTOs -------------------- */
// Request
type SignupRequest struct {
	Name     string   `json:"name" binding:"required,min=2,max=50"`
	Email    string   `json:"email" binding:"required,email"`
	Password string   `json:"password" binding:"required,min=6"`
	Role     UserRole `json:"role" binding:"omitempty,oneof=customer merchant"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Response
type UserResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      UserRole  `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// UserBrief is the sender/receiver projection embedded in chat payloads.
// It deliberately carries no role, password or timestamps.
type UserBrief struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (u *User) ToBrief() UserBrief {
	return UserBrief{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
	}
}
