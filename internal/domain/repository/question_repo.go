package repository

import (
	"context"
	"time"

	"github.com/yourusername/talatrivia-api/internal/domain/entity"
)

// QuestionRepository определяет методы для работы с банком вопросов
type QuestionRepository interface {
	// Create сохраняет вопрос вместе с вариантами в одной транзакции
	Create(ctx context.Context, question *entity.Question) error
	GetByID(ctx context.Context, id uint) (*entity.Question, error)
	// FindActiveByText ищет активный вопрос с тем же текстом без учета регистра и
	// крайних пробелов. excludeID == 0 означает "не исключать".
	FindActiveByText(ctx context.Context, text string, excludeID uint) (*entity.Question, error)
	List(ctx context.Context, limit, offset int) ([]entity.Question, int64, error)
	// Update сохраняет скалярные поля; при replaceOptions удаляет все варианты и
	// создает question.Options заново в той же транзакции
	Update(ctx context.Context, question *entity.Question, replaceOptions bool) error
	// SoftDeleteUnused в одной транзакции блокирует вопрос (FOR UPDATE), считает
	// активные тривии с этим вопросом и pending-назначениями и, если их нет,
	// помечает вопрос удаленным. При ненулевом счетчике вопрос не изменяется.
	SoftDeleteUnused(ctx context.Context, questionID uint, at time.Time) (int64, error)
}
