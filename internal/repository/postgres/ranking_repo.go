package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/yourusername/talatrivia-api/internal/domain/entity"
	"github.com/yourusername/talatrivia-api/internal/domain/repository"
)

// RankingRepo реализует repository.RankingRepository
type RankingRepo struct {
	db *gorm.DB
}

// NewRankingRepo создает новый репозиторий рейтинга
func NewRankingRepo(db *gorm.DB) *RankingRepo {
	return &RankingRepo{db: db}
}

// GlobalRanking агрегирует завершенные назначения активных игроков
func (r *RankingRepo) GlobalRanking(ctx context.Context, limit int) ([]repository.RankingRow, error) {
	var rows []repository.RankingRow
	err := r.db.WithContext(ctx).
		Table("trivia_assignments AS ta").
		Select("u.id AS user_id, u.full_name AS full_name, "+
			"COALESCE(SUM(ta.total_score), 0) AS total_score, COUNT(ta.id) AS trivias_played").
		Joins("JOIN users u ON u.id = ta.user_id").
		Where("ta.status = ? AND u.is_active = ? AND u.role = ?",
			entity.AssignmentCompleted, true, entity.RolePlayer).
		Group("u.id, u.full_name").
		Order("SUM(ta.total_score) DESC, u.id ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// CompletedAssignments возвращает завершенные назначения игрока, новые первыми
func (r *RankingRepo) CompletedAssignments(ctx context.Context, userID uint) ([]entity.TriviaAssignment, error) {
	var assignments []entity.TriviaAssignment
	err := r.db.WithContext(ctx).
		Preload("Trivia").
		Where("user_id = ? AND status = ?", userID, entity.AssignmentCompleted).
		Order("updated_at DESC, id DESC").
		Find(&assignments).Error
	return assignments, err
}
