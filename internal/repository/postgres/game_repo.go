package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/talatrivia-api/internal/domain/entity"
	"github.com/yourusername/talatrivia-api/internal/domain/repository"
	apperrors "github.com/yourusername/talatrivia-api/internal/pkg/errors"
)

// GameRepo реализует repository.GameRepository
type GameRepo struct {
	db *gorm.DB
}

// NewGameRepo создает новый репозиторий игрового движка
func NewGameRepo(db *gorm.DB) *GameRepo {
	return &GameRepo{db: db}
}

// WithinTx выполняет fn в транзакции с репозиторием, привязанным к ней
func (r *GameRepo) WithinTx(ctx context.Context, fn func(tx repository.GameRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GameRepo{db: tx})
	})
}

// LockAssignment загружает назначение игрока с блокировкой SELECT ... FOR UPDATE
func (r *GameRepo) LockAssignment(ctx context.Context, assignmentID, userID uint) (*entity.TriviaAssignment, error) {
	var assignment entity.TriviaAssignment
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND user_id = ?", assignmentID, userID).
		First(&assignment).Error
	if err != nil {
		return nil, mapError(err)
	}
	return &assignment, nil
}

// GetOption возвращает вариант ответа по ID
func (r *GameRepo) GetOption(ctx context.Context, optionID uint) (*entity.Option, error) {
	var option entity.Option
	if err := r.db.WithContext(ctx).First(&option, optionID).Error; err != nil {
		return nil, mapError(err)
	}
	return &option, nil
}

// GetQuestion возвращает вопрос по ID без учета флага is_active
func (r *GameRepo) GetQuestion(ctx context.Context, questionID uint) (*entity.Question, error) {
	var question entity.Question
	if err := r.db.WithContext(ctx).First(&question, questionID).Error; err != nil {
		return nil, mapError(err)
	}
	return &question, nil
}

// TriviaQuestionIDs возвращает id вопросов, связанных с тривией
func (r *GameRepo) TriviaQuestionIDs(ctx context.Context, triviaID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&triviaQuestion{}).
		Where("trivia_id = ?", triviaID).
		Pluck("question_id", &ids).Error
	return ids, err
}

// CreateAnswers сохраняет ответы пачкой
func (r *GameRepo) CreateAnswers(ctx context.Context, answers []entity.UserAnswer) error {
	if len(answers) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&answers).Error
}

// CompleteAssignment атомарно переводит назначение pending -> completed
func (r *GameRepo) CompleteAssignment(ctx context.Context, assignmentID uint, totalScore int) error {
	result := r.db.WithContext(ctx).
		Model(&entity.TriviaAssignment{}).
		Where("id = ? AND status = ?", assignmentID, entity.AssignmentPending).
		Updates(map[string]interface{}{
			"status":      entity.AssignmentCompleted,
			"total_score": totalScore,
			"updated_at":  time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("complete assignment #%d failed: %w", assignmentID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: assignment #%d is not pending", apperrors.ErrConflict, assignmentID)
	}
	return nil
}

// ListPending возвращает pending-назначения игрока вместе с тривией
func (r *GameRepo) ListPending(ctx context.Context, userID uint) ([]entity.TriviaAssignment, error) {
	var assignments []entity.TriviaAssignment
	err := r.db.WithContext(ctx).
		Preload("Trivia").
		Where("user_id = ? AND status = ?", userID, entity.AssignmentPending).
		Order("id ASC").
		Find(&assignments).Error
	return assignments, err
}

// GetForPlay возвращает назначение игрока с вопросами и вариантами тривии
func (r *GameRepo) GetForPlay(ctx context.Context, assignmentID, userID uint) (*entity.TriviaAssignment, error) {
	var assignment entity.TriviaAssignment
	err := r.db.WithContext(ctx).
		Preload("Trivia").
		Preload("Trivia.Questions", orderByID).
		Preload("Trivia.Questions.Options", orderByID).
		Where("id = ? AND user_id = ?", assignmentID, userID).
		First(&assignment).Error
	if err != nil {
		return nil, mapError(err)
	}
	return &assignment, nil
}
