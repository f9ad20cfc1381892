package dto

import (
	"time"

	"github.com/yourusername/talatrivia-api/internal/domain/entity"
)

// UserResponse представляет пользователя в ответах API
type UserResponse struct {
	ID        uint        `json:"id"`
	FullName  string      `json:"full_name"`
	Email     string      `json:"email"`
	Role      entity.Role `json:"role"`
	IsActive  bool        `json:"is_active"`
	DeletedAt *time.Time  `json:"deleted_at,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// LoginResponse ответ на успешный вход
type LoginResponse struct {
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	ExpiresIn   int           `json:"expires_in"` // секунды
	User        *UserResponse `json:"user"`
}

// MessageResponse простой ответ с сообщением
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse формат ошибки API
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewUserResponse создает DTO пользователя
func NewUserResponse(u *entity.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:        u.ID,
		FullName:  u.FullName,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		DeletedAt: u.DeletedAt,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// NewUserListResponse создает список DTO пользователей
func NewUserListResponse(users []entity.User) []*UserResponse {
	out := make([]*UserResponse, len(users))
	for i := range users {
		out[i] = NewUserResponse(&users[i])
	}
	return out
}
