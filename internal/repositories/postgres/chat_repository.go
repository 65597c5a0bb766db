package postgres

import (
	"context"

	"marketplace-service/internal/models"

	"gorm.io/gorm"
)

type ChatRepository interface {
	Create(ctx context.Context, chat *models.Chat) error
	// FindConversation returns every message exchanged between the two users,
	// in either direction, ordered by creation time ascending with id as the
	// tiebreak so bursts inside one timestamp keep insertion order.
	FindConversation(ctx context.Context, userAID, userBID uint) ([]models.Chat, error)
	// MarkConversationRead flips every unread message from senderID to
	// readerID in a single batch update and reports how many rows changed.
	MarkConversationRead(ctx context.Context, senderID, readerID uint) (int64, error)
}

type chatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) Create(ctx context.Context, chat *models.Chat) error {
	return r.db.WithContext(ctx).Create(chat).Error
}

func (r *chatRepository) FindConversation(ctx context.Context, userAID, userBID uint) ([]models.Chat, error) {
	var chats []models.Chat
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Preload("Receiver").
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userAID, userBID, userBID, userAID).
		Order("created_at ASC, id ASC").
		Find(&chats).Error
	return chats, err
}

func (r *chatRepository) MarkConversationRead(ctx context.Context, senderID, readerID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Chat{}).
		Where("sender_id = ? AND receiver_id = ? AND is_read = ?", senderID, readerID, false).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}
