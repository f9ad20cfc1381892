package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/talatrivia-api/internal/domain/entity"
	"github.com/yourusername/talatrivia-api/internal/domain/repository"
	apperrors "github.com/yourusername/talatrivia-api/internal/pkg/errors"
	"github.com/yourusername/talatrivia-api/pkg/auth"
)

// TokenIssuer выпускает и проверяет access-токены
type TokenIssuer interface {
	GenerateToken(email, role string) (string, error)
	ParseToken(tokenString string) (*auth.Claims, error)
	TTL() time.Duration
}

// LoginResult результат успешного входа
type LoginResult struct {
	User        *entity.User
	AccessToken string
	ExpiresIn   time.Duration
}

// AuthService проверяет учетные данные и выпускает токены
type AuthService struct {
	userRepo repository.UserRepository
	tokens   TokenIssuer
	log      logrus.FieldLogger
}

// NewAuthService создает новый сервис аутентификации
func NewAuthService(userRepo repository.UserRepository, tokens TokenIssuer, log logrus.FieldLogger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		log:      log.WithField("component", "auth_service"),
	}
}

// Login проверяет email и пароль и выпускает access-токен
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = entity.NormalizeEmail(email)

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to load user: %w", err)
		}
		s.log.WithField("email", email).Info("Login failed: unknown email")
		return nil, fmt.Errorf("%w: invalid credentials", apperrors.ErrUnauthorized)
	}
	if !user.IsActive || !user.CheckPassword(password) {
		s.log.WithField("user_id", user.ID).Info("Login failed: inactive user or wrong password")
		return nil, fmt.Errorf("%w: invalid credentials", apperrors.ErrUnauthorized)
	}

	token, err := s.tokens.GenerateToken(user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.log.WithField("user_id", user.ID).Info("User logged in")
	return &LoginResult{User: user, AccessToken: token, ExpiresIn: s.tokens.TTL()}, nil
}

// Authenticate разбирает токен и возвращает активного пользователя
func (s *AuthService) Authenticate(ctx context.Context, token string) (*entity.User, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: not authenticated", apperrors.ErrUnauthorized)
	}
	claims, err := s.tokens.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUnauthorized, err)
	}

	user, err := s.userRepo.GetByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: user not found", apperrors.ErrUnauthorized)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: user is inactive", apperrors.ErrUnauthorized)
	}
	return user, nil
}
