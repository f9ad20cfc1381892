package repository

import (
	"context"

	"github.com/yourusername/talatrivia-api/internal/domain/entity"
)

// RankingRow представляет агрегированную строку глобального рейтинга
type RankingRow struct {
	UserID        uint
	FullName      string
	TotalScore    int
	TriviasPlayed int
}

// RankingRepository определяет агрегирующие запросы по завершенным назначениям
type RankingRepository interface {
	// GlobalRanking суммирует total_score по completed-назначениям активных игроков,
	// сортирует по сумме по убыванию, затем по user_id по возрастанию
	GlobalRanking(ctx context.Context, limit int) ([]RankingRow, error)
	// CompletedAssignments возвращает завершенные назначения игрока, новые первыми
	CompletedAssignments(ctx context.Context, userID uint) ([]entity.TriviaAssignment, error)
}
