package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// RateLimitConfig содержит настройки rate limiting
type RateLimitConfig struct {
	// MaxRequests максимальное количество запросов за Window
	MaxRequests int
	// Window временное окно для подсчёта запросов
	Window time.Duration
	// KeyPrefix префикс для ключей в Redis
	KeyPrefix string
}

// PerMinute возвращает конфигурацию "n запросов в минуту"
func PerMinute(prefix string, n int) RateLimitConfig {
	return RateLimitConfig{MaxRequests: n, Window: time.Minute, KeyPrefix: prefix}
}

// RateLimiter создаёт middleware для rate limiting на основе Redis
type RateLimiter struct {
	redisClient redis.UniversalClient
	enabled     bool
	log         logrus.FieldLogger
}

// NewRateLimiter создает новый RateLimiter. При enabled=false или nil-клиенте
// middleware пропускает все запросы.
func NewRateLimiter(redisClient redis.UniversalClient, enabled bool, log logrus.FieldLogger) *RateLimiter {
	return &RateLimiter{
		redisClient: redisClient,
		enabled:     enabled && redisClient != nil,
		log:         log.WithField("component", "rate_limiter"),
	}
}

// Limit ограничивает запросы по паре IP + маршрут
func (rl *RateLimiter) Limit(cfg RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath() // шаблон маршрута Gin, например "/auth/login"
		if path == "" {
			path = c.Request.URL.Path
		}
		rl.apply(c, fmt.Sprintf("%s:%s:%s", cfg.KeyPrefix, c.ClientIP(), path), cfg)
	}
}

// LimitByIP ограничивает количество запросов по IP на всю группу маршрутов
func (rl *RateLimiter) LimitByIP(cfg RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		rl.apply(c, fmt.Sprintf("%s:%s", cfg.KeyPrefix, c.ClientIP()), cfg)
	}
}

func (rl *RateLimiter) apply(c *gin.Context, key string, cfg RateLimitConfig) {
	if !rl.enabled || cfg.MaxRequests <= 0 {
		c.Next()
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	count, err := rl.redisClient.Incr(ctx, key).Result()
	if err != nil {
		// fail-open
		rl.log.WithError(err).WithField("key", key).Warn("Rate limiter unavailable, allowing request")
		c.Next()
		return
	}

	// Первый запрос в окне: устанавливаем TTL
	if count == 1 {
		if err := rl.redisClient.Expire(ctx, key, cfg.Window).Err(); err != nil {
			rl.log.WithError(err).WithField("key", key).Warn("Failed to set rate limit TTL")
		}
	}

	remaining := cfg.MaxRequests - int(count)
	if remaining < 0 {
		remaining = 0
	}
	ttl, _ := rl.redisClient.TTL(ctx, key).Result()
	retryAfter := int(ttl.Seconds())
	if retryAfter <= 0 {
		retryAfter = int(cfg.Window.Seconds())
	}

	c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.MaxRequests))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
	c.Header("X-RateLimit-Reset", strconv.Itoa(retryAfter))

	if int(count) > cfg.MaxRequests {
		rl.log.WithFields(logrus.Fields{
			"ip":    c.ClientIP(),
			"key":   key,
			"count": count,
			"limit": cfg.MaxRequests,
		}).Warn("Rate limit exceeded")

		c.Header("Retry-After", strconv.Itoa(retryAfter))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":       "Too many requests. Please try again later.",
			"error_type":  "rate_limited",
			"retry_after": retryAfter,
		})
		return
	}

	c.Next()
}
