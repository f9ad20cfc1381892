package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/talatrivia-api/internal/domain/repository"
	apperrors "github.com/yourusername/talatrivia-api/internal/pkg/errors"
)

// Ключи кеша рейтинга. Смена версии делает недействительными все закешированные срезы.
const (
	rankingVersionKey = "ranking:global:version"
	rankingKeyPattern = "ranking:global:v%s:limit:%d"

	// RankingEvent тип сообщения live-ленты рейтинга
	RankingEvent = "ranking_updated"
)

// RankingEntry строка глобального рейтинга
type RankingEntry struct {
	Position      int    `json:"position"`
	UserID        uint   `json:"user_id"`
	PlayerName    string `json:"player_name"`
	TotalScore    int    `json:"total_score"`
	TriviasPlayed int    `json:"trivias_played"`
}

// HistoryEntry завершенная тривия в истории игрока
type HistoryEntry struct {
	TriviaName string    `json:"trivia_name"`
	Score      int       `json:"score"`
	PlayedAt   time.Time `json:"played_at"`
}

// PlayerStats статистика игрока по завершенным назначениям
type PlayerStats struct {
	UserID        uint           `json:"user_id"`
	PlayerName    string         `json:"player_name"`
	TotalScore    int            `json:"total_score"`
	TriviasPlayed int            `json:"trivias_played"`
	AverageScore  float64        `json:"average_score"`
	History       []HistoryEntry `json:"history"`
}

// Broadcaster рассылает событие подключенным клиентам live-ленты
type Broadcaster interface {
	Broadcast(event string, payload interface{}) error
}

// RankingService строит рейтинг и статистику игроков
type RankingService struct {
	rankingRepo  repository.RankingRepository
	userRepo     repository.UserRepository
	cache        repository.CacheRepository
	broadcaster  Broadcaster
	cacheTTL     time.Duration
	defaultLimit int
	liveLimit    int
	log          logrus.FieldLogger
}

// RankingOptions параметры RankingService
type RankingOptions struct {
	CacheTTL     time.Duration
	DefaultLimit int
	LiveLimit    int
}

// NewRankingService создает сервис рейтинга. cache и broadcaster могут быть nil.
func NewRankingService(
	rankingRepo repository.RankingRepository,
	userRepo repository.UserRepository,
	cache repository.CacheRepository,
	broadcaster Broadcaster,
	opts RankingOptions,
	log logrus.FieldLogger,
) *RankingService {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = 10
	}
	if opts.LiveLimit <= 0 {
		opts.LiveLimit = opts.DefaultLimit
	}
	return &RankingService{
		rankingRepo:  rankingRepo,
		userRepo:     userRepo,
		cache:        cache,
		broadcaster:  broadcaster,
		cacheTTL:     opts.CacheTTL,
		defaultLimit: clampLimit(opts.DefaultLimit),
		liveLimit:    clampLimit(opts.LiveLimit),
		log:          log.WithField("component", "ranking_service"),
	}
}

// NormalizeLimit приводит limit к диапазону 1..MaxPerPage, 0 означает значение по умолчанию
func (s *RankingService) NormalizeLimit(limit int) int {
	if limit == 0 {
		return s.defaultLimit
	}
	return clampLimit(limit)
}

// GlobalRanking возвращает топ игроков по сумме очков завершенных назначений
func (s *RankingService) GlobalRanking(ctx context.Context, limit int) ([]RankingEntry, error) {
	limit = s.NormalizeLimit(limit)

	key := s.cacheKey(ctx, limit)
	if key != "" {
		var cached []RankingEntry
		err := s.cache.GetJSON(ctx, key, &cached)
		switch {
		case err == nil:
			return cached, nil
		case !errors.Is(err, apperrors.ErrNotFound):
			s.log.WithError(err).Warn("Ranking cache read failed, falling back to database")
		}
	}

	rows, err := s.rankingRepo.GlobalRanking(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to build global ranking: %w", err)
	}
	entries := make([]RankingEntry, 0, len(rows))
	for i, r := range rows {
		entries = append(entries, RankingEntry{
			Position:      i + 1,
			UserID:        r.UserID,
			PlayerName:    r.FullName,
			TotalScore:    r.TotalScore,
			TriviasPlayed: r.TriviasPlayed,
		})
	}

	if key != "" {
		if err := s.cache.SetJSON(ctx, key, entries, s.cacheTTL); err != nil {
			s.log.WithError(err).Warn("Ranking cache write failed")
		}
	}
	return entries, nil
}

// PlayerStats возвращает статистику активного пользователя
func (s *RankingService) PlayerStats(ctx context.Context, userID uint) (*PlayerStats, error) {
	user, err := s.userRepo.GetActiveByID(ctx, userID)
	if err != nil {
		return nil, wrapNotFound(err, "user #%d not found", userID)
	}

	assignments, err := s.rankingRepo.CompletedAssignments(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load completed assignments of user #%d: %w", userID, err)
	}

	stats := &PlayerStats{
		UserID:        user.ID,
		PlayerName:    user.FullName,
		TriviasPlayed: len(assignments),
		History:       make([]HistoryEntry, 0, len(assignments)),
	}
	for _, a := range assignments {
		stats.TotalScore += a.TotalScore
		entry := HistoryEntry{Score: a.TotalScore, PlayedAt: a.PlayedAt()}
		if a.Trivia != nil {
			entry.TriviaName = a.Trivia.Name
		}
		stats.History = append(stats.History, entry)
	}
	if stats.TriviasPlayed > 0 {
		stats.AverageScore = roundOneDecimal(float64(stats.TotalScore) / float64(stats.TriviasPlayed))
	}
	return stats, nil
}

// RankingChanged сбрасывает кеш рейтинга и отправляет свежий топ в live-ленту.
// Ошибки только логируются.
func (s *RankingService) RankingChanged(ctx context.Context) {
	if s.cache != nil {
		if _, err := s.cache.Increment(ctx, rankingVersionKey); err != nil {
			s.log.WithError(err).Warn("Failed to invalidate ranking cache")
		}
	}
	if s.broadcaster == nil {
		return
	}

	top, err := s.GlobalRanking(ctx, s.liveLimit)
	if err != nil {
		s.log.WithError(err).Warn("Failed to build ranking for live feed")
		return
	}
	if err := s.broadcaster.Broadcast(RankingEvent, top); err != nil {
		s.log.WithError(err).Warn("Failed to broadcast ranking")
	}
}

// LiveSnapshot возвращает топ, который отправляется новым подписчикам live-ленты
func (s *RankingService) LiveSnapshot(ctx context.Context) ([]RankingEntry, error) {
	return s.GlobalRanking(ctx, s.liveLimit)
}

// cacheKey возвращает ключ текущей версии кеша или "", если кеш недоступен
func (s *RankingService) cacheKey(ctx context.Context, limit int) string {
	if s.cache == nil || s.cacheTTL <= 0 {
		return ""
	}
	version, err := s.cache.Get(ctx, rankingVersionKey)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		version = "0"
	case err != nil:
		s.log.WithError(err).Warn("Ranking cache unavailable")
		return ""
	}
	if _, convErr := strconv.ParseInt(version, 10, 64); convErr != nil {
		version = "0"
	}
	return fmt.Sprintf(rankingKeyPattern, version, limit)
}

func clampLimit(limit int) int {
	if limit < 1 {
		return 1
	}
	if limit > MaxPerPage {
		return MaxPerPage
	}
	return limit
}

func roundOneDecimal(v float64) float64 {
	return math.Round(v*10) / 10
}
