package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/talatrivia-api/internal/domain/entity"
	apperrors "github.com/yourusername/talatrivia-api/internal/pkg/errors"
)

// triviaQuestion строка связующей таблицы trivia_questions
type triviaQuestion struct {
	TriviaID   uint `gorm:"primaryKey"`
	QuestionID uint `gorm:"primaryKey"`
}

func (triviaQuestion) TableName() string {
	return "trivia_questions"
}

// TriviaRepo реализует repository.TriviaRepository
type TriviaRepo struct {
	db *gorm.DB
}

// NewTriviaRepo создает новый репозиторий тривий
func NewTriviaRepo(db *gorm.DB) *TriviaRepo {
	return &TriviaRepo{db: db}
}

// ActiveQuestionIDs возвращает id активных вопросов из переданного набора
func (r *TriviaRepo) ActiveQuestionIDs(ctx context.Context, ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return []uint{}, nil
	}
	var found []uint
	err := r.db.WithContext(ctx).
		Model(&entity.Question{}).
		Where("id IN ? AND is_active = ?", ids, true).
		Order("id ASC").
		Pluck("id", &found).Error
	return found, err
}

// ActiveUsers возвращает активных пользователей из переданного набора
func (r *TriviaRepo) ActiveUsers(ctx context.Context, ids []uint) ([]entity.User, error) {
	if len(ids) == 0 {
		return []entity.User{}, nil
	}
	var users []entity.User
	err := r.db.WithContext(ctx).
		Where("id IN ? AND is_active = ?", ids, true).
		Order("id ASC").
		Find(&users).Error
	return users, err
}

// Create сохраняет тривию, вопросы и pending-назначения в одной транзакции.
// Связываемые вопросы и пользователи блокируются FOR SHARE и перепроверяются на
// активность, что упорядочивает создание с SoftDeleteUnused и SoftDeleteIdle.
func (r *TriviaRepo) Create(ctx context.Context, trivia *entity.Trivia, questionIDs, userIDs []uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		questionIDs, err := lockActive(tx, &entity.Question{}, questionIDs)
		if err != nil {
			return err
		}
		if len(questionIDs) == 0 {
			return fmt.Errorf("%w: none of the given questions is active", apperrors.ErrValidation)
		}
		userIDs, err = lockActive(tx, &entity.User{}, userIDs)
		if err != nil {
			return err
		}
		if len(userIDs) == 0 {
			return fmt.Errorf("%w: none of the given users is active", apperrors.ErrValidation)
		}

		if err := tx.Omit("Questions", "Assignments").Create(trivia).Error; err != nil {
			return err
		}
		if err := linkQuestions(tx, trivia.ID, questionIDs); err != nil {
			return err
		}

		assignments := make([]entity.TriviaAssignment, 0, len(userIDs))
		for _, userID := range userIDs {
			assignments = append(assignments, entity.TriviaAssignment{
				UserID:     userID,
				TriviaID:   trivia.ID,
				Status:     entity.AssignmentPending,
				TotalScore: 0,
			})
		}
		if len(assignments) > 0 {
			if err := tx.Omit("Trivia", "User").Create(&assignments).Error; err != nil {
				return err
			}
		}
		trivia.Assignments = assignments
		return nil
	})
	return mapError(err)
}

// GetByID возвращает активную тривию с вопросами, вариантами и назначениями
func (r *TriviaRepo) GetByID(ctx context.Context, id uint) (*entity.Trivia, error) {
	var trivia entity.Trivia
	err := r.db.WithContext(ctx).
		Preload("Questions", orderByID).
		Preload("Questions.Options", orderByID).
		Preload("Assignments", orderByID).
		Where("id = ? AND is_active = ?", id, true).
		First(&trivia).Error
	if err != nil {
		return nil, mapError(err)
	}
	return &trivia, nil
}

// FindActiveByName ищет активную тривию по точному имени
func (r *TriviaRepo) FindActiveByName(ctx context.Context, name string) (*entity.Trivia, error) {
	var trivia entity.Trivia
	err := r.db.WithContext(ctx).
		Where("name = ? AND is_active = ?", name, true).
		Order("id ASC").
		First(&trivia).Error
	if err != nil {
		return nil, mapError(err)
	}
	return &trivia, nil
}

// List возвращает страницу активных тривий и их общее количество
func (r *TriviaRepo) List(ctx context.Context, limit, offset int) ([]entity.Trivia, int64, error) {
	var trivias []entity.Trivia
	var total int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entity.Trivia{}).Where("is_active = ?", true).Count(&total).Error; err != nil {
			return err
		}
		return tx.Preload("Questions", orderByID).
			Preload("Assignments", orderByID).
			Where("is_active = ?", true).
			Order("id ASC").
			Limit(limit).
			Offset(offset).
			Find(&trivias).Error
	})
	if err != nil {
		return nil, 0, err
	}
	return trivias, total, nil
}

// Update сохраняет имя и описание; questionIDs != nil заменяет набор вопросов
func (r *TriviaRepo) Update(ctx context.Context, trivia *entity.Trivia, questionIDs []uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&entity.Trivia{}).
			Where("id = ? AND is_active = ?", trivia.ID, true).
			Updates(map[string]interface{}{
				"name":        trivia.Name,
				"description": trivia.Description,
				"updated_at":  time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.ErrNotFound
		}
		if questionIDs == nil {
			return nil
		}

		questionIDs, err := lockActive(tx, &entity.Question{}, questionIDs)
		if err != nil {
			return err
		}
		if len(questionIDs) == 0 {
			return fmt.Errorf("%w: none of the given questions is active", apperrors.ErrValidation)
		}
		if err := tx.Where("trivia_id = ?", trivia.ID).Delete(&triviaQuestion{}).Error; err != nil {
			return err
		}
		return linkQuestions(tx, trivia.ID, questionIDs)
	})
	return mapError(err)
}

// SoftDelete помечает тривию удаленной и отменяет pending-назначения в той же транзакции.
// Завершенные назначения не затрагиваются.
func (r *TriviaRepo) SoftDelete(ctx context.Context, triviaID uint, at time.Time) (int64, error) {
	var cancelled int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&entity.Trivia{}).
			Where("id = ? AND is_active = ?", triviaID, true).
			Updates(map[string]interface{}{"is_active": false, "deleted_at": at, "updated_at": at})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.ErrNotFound
		}

		result = tx.Model(&entity.TriviaAssignment{}).
			Where("trivia_id = ? AND status = ?", triviaID, entity.AssignmentPending).
			Updates(map[string]interface{}{"status": entity.AssignmentCancelled, "updated_at": at})
		if result.Error != nil {
			return result.Error
		}
		cancelled = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, mapError(err)
	}
	return cancelled, nil
}

// lockActive берет FOR SHARE на активные строки model из ids и возвращает их id
func lockActive(tx *gorm.DB, model interface{}, ids []uint) ([]uint, error) {
	found := make([]uint, 0, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	err := tx.Model(model).
		Clauses(clause.Locking{Strength: "SHARE"}).
		Where("id IN ? AND is_active = ?", ids, true).
		Order("id ASC").
		Pluck("id", &found).Error
	return found, err
}

func linkQuestions(tx *gorm.DB, triviaID uint, questionIDs []uint) error {
	if len(questionIDs) == 0 {
		return nil
	}
	rows := make([]triviaQuestion, 0, len(questionIDs))
	for _, id := range questionIDs {
		rows = append(rows, triviaQuestion{TriviaID: triviaID, QuestionID: id})
	}
	return tx.Create(&rows).Error
}
