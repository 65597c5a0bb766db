package services

import (
	"context"
	"errors"
	"strings"

	"marketplace-service/internal/models"
	"marketplace-service/internal/repositories/postgres"
)

var (
	ErrEmptyContent = errors.New("message content cannot be empty")
	ErrUserNotFound = errors.New("user not found")
)

// ChatService is the persistence side of the message router: it validates
// and stores messages and answers conversation history. Live delivery to
// connected sockets is the websocket package's job and always happens after
// the write here succeeds.
type ChatService interface {
	SendMessage(ctx context.Context, senderID, receiverID uint, content string) (*models.ChatResponse, error)
	// MarkConversationRead flips every unread message from senderID to
	// readerID in one batch update.
	MarkConversationRead(ctx context.Context, senderID, readerID uint) error
	// Conversation returns the full history between two users, oldest first,
	// in the same projection SendMessage emits.
	Conversation(ctx context.Context, userAID, userBID uint) ([]models.ChatResponse, error)
}

type chatService struct {
	chats postgres.ChatRepository
	users postgres.UserRepository
}

func NewChatService(chats postgres.ChatRepository, users postgres.UserRepository) ChatService {
	return &chatService{chats: chats, users: users}
}

func (s *chatService) SendMessage(ctx context.Context, senderID, receiverID uint, content string) (*models.ChatResponse, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}

	sender, err := s.users.FindByID(ctx, senderID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	receiver, err := s.users.FindByID(ctx, receiverID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	chat := &models.Chat{
		Content:    content,
		SenderID:   sender.ID,
		ReceiverID: receiver.ID,
		IsRead:     false,
	}
	if err := s.chats.Create(ctx, chat); err != nil {
		return nil, err
	}

	chat.Sender = *sender
	chat.Receiver = *receiver
	resp := chat.ToResponse()
	return &resp, nil
}

func (s *chatService) MarkConversationRead(ctx context.Context, senderID, readerID uint) error {
	_, err := s.chats.MarkConversationRead(ctx, senderID, readerID)
	return err
}

func (s *chatService) Conversation(ctx context.Context, userAID, userBID uint) ([]models.ChatResponse, error) {
	chats, err := s.chats.FindConversation(ctx, userAID, userBID)
	if err != nil {
		return nil, err
	}

	responses := make([]models.ChatResponse, 0, len(chats))
	for i := range chats {
		responses = append(responses, chats[i].ToResponse())
	}
	return responses, nil
}
