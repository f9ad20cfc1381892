package repository

import (
	"context"
	"time"
)

// CacheRepository определяет методы кеша рейтинга: JSON-снимки топа и счетчик версии.
// Отсутствующий ключ возвращается как apperrors.ErrNotFound.
type CacheRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Increment(ctx context.Context, key string) (int64, error)
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	GetJSON(ctx context.Context, key string, dest interface{}) error
}
