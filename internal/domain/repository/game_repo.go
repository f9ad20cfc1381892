package repository

import (
	"context"

	"github.com/yourusername/talatrivia-api/internal/domain/entity"
)

// GameRepository определяет методы, которые использует игровой движок
type GameRepository interface {
	// WithinTx выполняет fn в транзакции; ошибка fn откатывает все изменения
	WithinTx(ctx context.Context, fn func(tx GameRepository) error) error
	// LockAssignment загружает назначение игрока с блокировкой строки (FOR UPDATE)
	LockAssignment(ctx context.Context, assignmentID, userID uint) (*entity.TriviaAssignment, error)
	GetOption(ctx context.Context, optionID uint) (*entity.Option, error)
	GetQuestion(ctx context.Context, questionID uint) (*entity.Question, error)
	TriviaQuestionIDs(ctx context.Context, triviaID uint) ([]uint, error)
	CreateAnswers(ctx context.Context, answers []entity.UserAnswer) error
	// CompleteAssignment переводит назначение из pending в completed.
	// Если статус уже не pending, возвращает ErrConflict.
	CompleteAssignment(ctx context.Context, assignmentID uint, totalScore int) error
	ListPending(ctx context.Context, userID uint) ([]entity.TriviaAssignment, error)
	// GetForPlay возвращает назначение игрока вместе с вопросами и вариантами тривии
	GetForPlay(ctx context.Context, assignmentID, userID uint) (*entity.TriviaAssignment, error)
}
