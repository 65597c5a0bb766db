package services

import (
	"context"

	"marketplace-service/internal/models"
	"marketplace-service/internal/repositories/postgres"
)

type UserService interface {
	GetUser(ctx context.Context, id uint) (*models.UserResponse, error)
	ListUsers(ctx context.Context) ([]models.UserResponse, error)
}

type userService struct {
	users postgres.UserRepository
}

func NewUserService(users postgres.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) GetUser(ctx context.Context, id uint) (*models.UserResponse, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	resp := user.ToResponse()
	return &resp, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]models.UserResponse, error) {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]models.UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, users[i].ToResponse())
	}
	return responses, nil
}
