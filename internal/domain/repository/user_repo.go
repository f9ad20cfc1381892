package repository

import (
	"context"
	"time"

	"github.com/yourusername/talatrivia-api/internal/domain/entity"
)

// UserRepository определяет методы для работы с пользователями
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	// GetByID возвращает пользователя независимо от флага is_active
	GetByID(ctx context.Context, id uint) (*entity.User, error)
	GetActiveByID(ctx context.Context, id uint) (*entity.User, error)
	// GetByEmail ищет и среди удаленных пользователей
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	List(ctx context.Context, limit, offset int) ([]entity.User, int64, error)
	ListDeleted(ctx context.Context) ([]entity.User, error)
	// SoftDeleteIdle в одной транзакции блокирует пользователя (FOR UPDATE), считает
	// его pending-назначения и, если их нет, помечает пользователя удаленным.
	// При ненулевом счетчике пользователь не изменяется.
	SoftDeleteIdle(ctx context.Context, userID uint, at time.Time) (int64, error)
}
