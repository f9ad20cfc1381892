package repository

import (
	"context"
	"time"

	"github.com/yourusername/talatrivia-api/internal/domain/entity"
)

// TriviaRepository определяет методы для работы с тривиями и назначениями
type TriviaRepository interface {
	// ActiveQuestionIDs возвращает подмножество ids, соответствующее активным вопросам
	ActiveQuestionIDs(ctx context.Context, ids []uint) ([]uint, error)
	// ActiveUsers возвращает активных пользователей из ids
	ActiveUsers(ctx context.Context, ids []uint) ([]entity.User, error)
	// Create сохраняет тривию, связи с вопросами и по одному pending-назначению на
	// каждого пользователя в одной транзакции. Вопросы и пользователи, ставшие
	// неактивными до блокировки, отбрасываются; если не осталось ни одного, ErrValidation.
	Create(ctx context.Context, trivia *entity.Trivia, questionIDs, userIDs []uint) error
	GetByID(ctx context.Context, id uint) (*entity.Trivia, error)
	FindActiveByName(ctx context.Context, name string) (*entity.Trivia, error)
	List(ctx context.Context, limit, offset int) ([]entity.Trivia, int64, error)
	// Update сохраняет скалярные поля; questionIDs != nil заменяет набор вопросов
	Update(ctx context.Context, trivia *entity.Trivia, questionIDs []uint) error
	// SoftDelete помечает тривию удаленной и отменяет ее pending-назначения.
	// Возвращает количество отмененных назначений.
	SoftDelete(ctx context.Context, triviaID uint, at time.Time) (int64, error)
}
