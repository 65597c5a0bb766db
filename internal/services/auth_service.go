package services

import (
	"context"
	"errors"
	"time"

	"marketplace-service/internal/models"
	"marketplace-service/internal/repositories/postgres"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid token")
)

// AuthService issues and verifies the bearer tokens that guard both the REST
// API and the websocket handshake.
type AuthService interface {
	Signup(ctx context.Context, req models.SignupRequest) (*models.UserResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	// VerifyToken resolves a raw token (no scheme prefix) to the user it was
	// issued for. Any parse, signature, expiry or lookup failure comes back
	// as ErrInvalidToken.
	VerifyToken(ctx context.Context, tokenString string) (*models.User, error)
}

type authService struct {
	users     postgres.UserRepository
	jwtSecret string
	jwtExpire time.Duration
}

func NewAuthService(users postgres.UserRepository, secret string, expire time.Duration) AuthService {
	return &authService{
		users:     users,
		jwtSecret: secret,
		jwtExpire: expire,
	}
}

func (s *authService) Signup(ctx context.Context, req models.SignupRequest) (*models.UserResponse, error) {
	if _, err := s.users.FindByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	role := req.Role
	if !role.IsValid() {
		role = models.RoleCustomer
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashed),
		Role:     role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	resp := user.ToResponse()
	return &resp, nil
}

func (s *authService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   float64(user.ID),
		"email": user.Email,
		"role":  string(user.Role),
		"exp":   time.Now().Add(s.jwtExpire).Unix(),
	})
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, err
	}

	return &models.LoginResponse{
		Token: tokenString,
		User:  user.ToResponse(),
	}, nil
}

func (s *authService) VerifyToken(ctx context.Context, tokenString string) (*models.User, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	sub, ok := claims["sub"].(float64)
	if !ok {
		return nil, ErrInvalidToken
	}

	user, err := s.users.FindByID(ctx, uint(sub))
	if err != nil {
		return nil, ErrInvalidToken
	}
	return user, nil
}
