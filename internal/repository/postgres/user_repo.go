package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/talatrivia-api/internal/domain/entity"
)

// UserRepo реализует repository.UserRepository
type UserRepo struct {
	db *gorm.DB
}

// NewUserRepo создает новый репозиторий пользователей
func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create создает нового пользователя
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	return mapError(r.db.WithContext(ctx).Create(user).Error)
}

// GetByID возвращает пользователя по ID, включая удаленных
func (r *UserRepo) GetByID(ctx context.Context, id uint) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}

// GetActiveByID возвращает активного пользователя по ID
func (r *UserRepo) GetActiveByID(ctx context.Context, id uint) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&user).Error
	if err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}

// GetByEmail возвращает пользователя по email
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).
		Where("email = ?", entity.NormalizeEmail(email)).
		First(&user).Error
	if err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}

// Update сохраняет все поля пользователя
func (r *UserRepo) Update(ctx context.Context, user *entity.User) error {
	return mapError(r.db.WithContext(ctx).Save(user).Error)
}

// List возвращает страницу активных пользователей и их общее количество
func (r *UserRepo) List(ctx context.Context, limit, offset int) ([]entity.User, int64, error) {
	var users []entity.User
	var total int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&entity.User{}).Where("is_active = ?", true)
		if err := q.Count(&total).Error; err != nil {
			return err
		}
		return q.Order("id ASC").Limit(limit).Offset(offset).Find(&users).Error
	})
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// ListDeleted возвращает мягко удаленных пользователей
func (r *UserRepo) ListDeleted(ctx context.Context) ([]entity.User, error) {
	var users []entity.User
	err := r.db.WithContext(ctx).
		Where("is_active = ?", false).
		Order("deleted_at DESC, id ASC").
		Find(&users).Error
	return users, err
}

// SoftDeleteIdle блокирует пользователя и мягко удаляет его, если у него нет
// pending-назначений. TriviaRepo берет FOR SHARE на назначаемых пользователей.
func (r *UserRepo) SoftDeleteIdle(ctx context.Context, userID uint, at time.Time) (int64, error) {
	var pending int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user entity.User
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND is_active = ?", userID, true).
			First(&user).Error
		if err != nil {
			return err
		}

		err = tx.Model(&entity.TriviaAssignment{}).
			Where("user_id = ? AND status = ?", userID, entity.AssignmentPending).
			Count(&pending).Error
		if err != nil || pending > 0 {
			return err
		}

		user.SoftDelete(at)
		return tx.Model(&user).Updates(map[string]interface{}{
			"is_active":  user.IsActive,
			"deleted_at": user.DeletedAt,
			"updated_at": at,
		}).Error
	})
	if err != nil {
		return 0, mapError(err)
	}
	return pending, nil
}
