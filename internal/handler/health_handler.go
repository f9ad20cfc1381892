package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthChecker проверяет доступность зависимости
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}

// StatsProvider отдает диагностические счетчики компонента
type StatsProvider interface {
	Metrics() map[string]interface{}
}

// HealthHandler отвечает на проверки работоспособности
type HealthHandler struct {
	checkers []HealthChecker
	liveFeed StatsProvider
}

// NewHealthHandler создает обработчик проверки работоспособности
func NewHealthHandler(checkers ...HealthChecker) *HealthHandler {
	return &HealthHandler{checkers: checkers}
}

// WithLiveFeed добавляет счетчики live-ленты в ответ /health
func (h *HealthHandler) WithLiveFeed(stats StatsProvider) *HealthHandler {
	h.liveFeed = stats
	return h
}

// Root отвечает, что API запущено
// @Summary Проверка работоспособности
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router / [get]
func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "TalaTrivia API is running!",
	})
}

// Detailed проверяет зависимости (БД, Redis) и возвращает 503, если какая-то недоступна
// @Summary Детальная проверка зависимостей
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) Detailed(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(h.checkers))
	for _, checker := range h.checkers {
		if err := checker.Check(ctx); err != nil {
			checks[checker.Name()] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[checker.Name()] = "ok"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}
	body := gin.H{
		"status": overall,
		"checks": checks,
		"time":   time.Now().UTC().Format(time.RFC3339),
	}
	if h.liveFeed != nil {
		body["live_feed"] = h.liveFeed.Metrics()
	}
	c.JSON(status, body)
}

// CheckFunc адаптирует функцию к HealthChecker
type CheckFunc struct {
	CheckName string
	Fn        func(ctx context.Context) error
}

// Name возвращает имя проверки
func (f CheckFunc) Name() string { return f.CheckName }

// Check выполняет проверку
func (f CheckFunc) Check(ctx context.Context) error { return f.Fn(ctx) }
