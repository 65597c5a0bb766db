package models

import (
	"time"

	"gorm.io/gorm"
)

/** --------------------ENTITIES-------------------- */
// Chat represents a direct message between two users. Messages are never
// deleted by the service; IsRead is the only mutable column.
type Chat struct {
	gorm.Model
	Content    string `gorm:"type:text;not null" json:"content"`
	SenderID   uint   `gorm:"not null;index" json:"senderId"`
	ReceiverID uint   `gorm:"not null;index" json:"receiverId"`
	IsRead     bool   `gorm:"not null;default:false" json:"isRead"`

	Sender   User `gorm:"foreignKey:SenderID" json:"-"`
	Receiver User `gorm:"foreignKey:ReceiverID" json:"-"`
}

/** -------------------- DTOs -------------------- */
// Request
type SendMessageRequest struct {
	Content    string `json:"content" binding:"required"`
	ReceiverID uint   `json:"receiverId" binding:"required"`
}

type MarkAsReadRequest struct {
	UserID      uint `json:"userId" binding:"required"`
	OtherUserID uint `json:"otherUserId" binding:"required"`
}

type TypingRequest struct {
	UserID      uint `json:"userId" binding:"required"`
	OtherUserID uint `json:"otherUserId" binding:"required"`
}

// Response
// ChatResponse is the wire projection of a Chat. The same shape is used for
// live delivery and for conversation history so clients can merge the two
// streams by message id without reshaping.
type ChatResponse struct {
	ID        uint      `json:"id"`
	Content   string    `json:"content"`
	IsRead    bool      `json:"isRead"`
	Sender    UserBrief `json:"sender"`
	Receiver  UserBrief `json:"receiver"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c *Chat) ToResponse() ChatResponse {
	return ChatResponse{
		ID:        c.ID,
		Content:   c.Content,
		IsRead:    c.IsRead,
		Sender:    c.Sender.ToBrief(),
		Receiver:  c.Receiver.ToBrief(),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
