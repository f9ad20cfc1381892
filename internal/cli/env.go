package cli

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/yourusername/talatrivia-api/internal/config"
	"github.com/yourusername/talatrivia-api/internal/logger"
	"github.com/yourusername/talatrivia-api/pkg/database"
)

// env общие ресурсы команд: конфигурация, логгер и подключение к БД
type env struct {
	cfg *config.Config
	log *logrus.Logger
	db  *gorm.DB
}

func openEnv(configPath string) (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log := logger.New(cfg.Log)
	log.WithField("config", configPath).Debug("Configuration loaded")

	db, err := database.NewPostgresDB(cfg.Database)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: log, db: db}, nil
}

func (e *env) close() {
	sqlDB, err := e.db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		e.log.WithError(err).Warn("Failed to close database connection")
	}
}

// connectRedis возвращает nil, если Redis недоступен: кеш, rate limiting
// и кластерная лента в этом случае отключаются
func connectRedis(ctx context.Context, cfg config.RedisConfig, log logrus.FieldLogger) redis.UniversalClient {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client, err := database.NewUniversalRedisClient(ctx, cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable: ranking cache and rate limiting are disabled")
		return nil
	}
	log.Info("Successfully connected to Redis")
	return client
}
