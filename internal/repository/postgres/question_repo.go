package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/talatrivia-api/internal/domain/entity"
	apperrors "github.com/yourusername/talatrivia-api/internal/pkg/errors"
)

// QuestionRepo реализует repository.QuestionRepository
type QuestionRepo struct {
	db *gorm.DB
}

// NewQuestionRepo создает новый репозиторий вопросов
func NewQuestionRepo(db *gorm.DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

// Create создает вопрос и его варианты в одной транзакции
func (r *QuestionRepo) Create(ctx context.Context, question *entity.Question) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Options").Create(question).Error; err != nil {
			return err
		}
		return createOptions(tx, question)
	})
	return mapError(err)
}

// GetByID возвращает активный вопрос вместе с вариантами
func (r *QuestionRepo) GetByID(ctx context.Context, id uint) (*entity.Question, error) {
	var question entity.Question
	err := r.db.WithContext(ctx).
		Preload("Options", orderByID).
		Where("id = ? AND is_active = ?", id, true).
		First(&question).Error
	if err != nil {
		return nil, mapError(err)
	}
	return &question, nil
}

// FindActiveByText ищет активный вопрос с тем же нормализованным текстом
func (r *QuestionRepo) FindActiveByText(ctx context.Context, text string, excludeID uint) (*entity.Question, error) {
	q := r.db.WithContext(ctx).
		Where("is_active = ? AND LOWER(TRIM(text)) = ?", true, entity.NormalizeText(text))
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var question entity.Question
	if err := q.First(&question).Error; err != nil {
		return nil, mapError(err)
	}
	return &question, nil
}

// List возвращает страницу активных вопросов и их общее количество
func (r *QuestionRepo) List(ctx context.Context, limit, offset int) ([]entity.Question, int64, error) {
	var questions []entity.Question
	var total int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entity.Question{}).Where("is_active = ?", true).Count(&total).Error; err != nil {
			return err
		}
		return tx.Preload("Options", orderByID).
			Where("is_active = ?", true).
			Order("id ASC").
			Limit(limit).
			Offset(offset).
			Find(&questions).Error
	})
	if err != nil {
		return nil, 0, err
	}
	return questions, total, nil
}

// Update сохраняет текст и сложность вопроса; при replaceOptions пересоздает варианты
func (r *QuestionRepo) Update(ctx context.Context, question *entity.Question, replaceOptions bool) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&entity.Question{}).
			Where("id = ? AND is_active = ?", question.ID, true).
			Updates(map[string]interface{}{
				"text":       question.Text,
				"difficulty": question.Difficulty,
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.ErrNotFound
		}
		if !replaceOptions {
			return nil
		}

		// user_answers.selected_option_id станет NULL (ON DELETE SET NULL)
		if err := tx.Where("question_id = ?", question.ID).Delete(&entity.Option{}).Error; err != nil {
			return err
		}
		return createOptions(tx, question)
	})
	return mapError(err)
}

// SoftDeleteUnused блокирует вопрос и мягко удаляет его, если он не используется
// активной тривией с pending-назначениями. TriviaRepo берет FOR SHARE на связываемые
// вопросы, поэтому создание тривии и удаление вопроса выполняются по очереди.
func (r *QuestionRepo) SoftDeleteUnused(ctx context.Context, questionID uint, at time.Time) (int64, error) {
	var inUse int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var question entity.Question
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND is_active = ?", questionID, true).
			First(&question).Error
		if err != nil {
			return err
		}

		err = tx.Table("trivias AS t").
			Joins("JOIN trivia_questions tq ON tq.trivia_id = t.id").
			Joins("JOIN trivia_assignments ta ON ta.trivia_id = t.id").
			Where("tq.question_id = ? AND t.is_active = ? AND ta.status = ?", questionID, true, entity.AssignmentPending).
			Distinct("t.id").
			Count(&inUse).Error
		if err != nil || inUse > 0 {
			return err
		}

		question.SoftDelete(at)
		return tx.Model(&question).Updates(map[string]interface{}{
			"is_active":  question.IsActive,
			"deleted_at": question.DeletedAt,
			"updated_at": at,
		}).Error
	})
	if err != nil {
		return 0, mapError(err)
	}
	return inUse, nil
}

func createOptions(tx *gorm.DB, question *entity.Question) error {
	if len(question.Options) == 0 {
		return nil
	}
	for i := range question.Options {
		question.Options[i].ID = 0
		question.Options[i].QuestionID = question.ID
	}
	return tx.Create(&question.Options).Error
}

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}
