package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config хранит все настройки приложения
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Log       LogConfig       `mapstructure:"log"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Ranking   RankingConfig   `mapstructure:"ranking"`
	Bootstrap BootstrapConfig `mapstructure:"bootstrap"`
	Testing   TestingConfig   `mapstructure:"testing"`
	Email     EmailConfig     `mapstructure:"email"`
	CORS      CORSConfig      `mapstructure:"cors"`
	WebSocket WebSocketConfig `mapstructure:"websocket"`
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port            string `mapstructure:"port"`
	Mode            string `mapstructure:"mode"` // debug | release | test
	ReadTimeout     int    `mapstructure:"read_timeout"`
	WriteTimeout    int    `mapstructure:"write_timeout"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig содержит настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host           string `mapstructure:"host"`
	Port           string `mapstructure:"port"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	DBName         string `mapstructure:"dbname"`
	SSLMode        string `mapstructure:"sslmode"`
	MigrationsPath string `mapstructure:"migrations_path"`
	LogLevel       string `mapstructure:"log_level"` // silent | error | warn | info
	MaxOpenConns   int    `mapstructure:"max_open_conns"`
	MaxIdleConns   int    `mapstructure:"max_idle_conns"`
}

// RedisConfig содержит настройки подключения к Redis.
// Поддерживает режимы: single, sentinel, cluster
type RedisConfig struct {
	Mode       string   `mapstructure:"mode"`
	Addrs      []string `mapstructure:"addrs"`
	Addr       string   `mapstructure:"addr"`
	Password   string   `mapstructure:"password"`
	DB         int      `mapstructure:"db"`
	MasterName string   `mapstructure:"master_name"`
	MaxRetries int      `mapstructure:"max_retries"`
}

// JWTConfig содержит настройки подписи access-токена
type JWTConfig struct {
	Secret        string `mapstructure:"secret"`
	ExpirationMin int    `mapstructure:"expiration_min"`
}

// AuthConfig содержит настройки cookie с access-токеном
type AuthConfig struct {
	CookieName   string `mapstructure:"cookie_name"`
	CookieDomain string `mapstructure:"cookie_domain"`
	CookieSecure bool   `mapstructure:"cookie_secure"`
}

// LogConfig содержит настройки logrus
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text | json
}

// RateLimitConfig содержит лимиты запросов в минуту на IP
type RateLimitConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	LoginPerMin   int  `mapstructure:"login_per_min"`
	GeneralPerMin int  `mapstructure:"general_per_min"`
	HealthPerMin  int  `mapstructure:"health_per_min"`
}

// RankingConfig содержит настройки кеша рейтинга
type RankingConfig struct {
	CacheTTLSec  int `mapstructure:"cache_ttl_sec"`
	DefaultLimit int `mapstructure:"default_limit"`
	LiveLimit    int `mapstructure:"live_limit"`
}

// BootstrapConfig содержит учетные данные первого администратора
type BootstrapConfig struct {
	AdminEmail    string `mapstructure:"admin_email"`
	AdminPassword string `mapstructure:"admin_password"`
	AdminName     string `mapstructure:"admin_name"`
	DemoQuestions bool   `mapstructure:"demo_questions"`
}

// TestingConfig включает служебные эндпоинты (seed)
type TestingConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// EmailConfig содержит настройки Resend. Пустой APIKey отключает отправку.
type EmailConfig struct {
	ResendAPIKey string `mapstructure:"resend_api_key"`
	From         string `mapstructure:"from"`
	AppURL       string `mapstructure:"app_url"`
}

// CORSConfig содержит разрешенные источники
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// WebSocketConfig содержит настройки live-ленты рейтинга.
// Cluster включает ретрансляцию событий между экземплярами через Redis Pub/Sub.
type WebSocketConfig struct {
	BufferSize int    `mapstructure:"buffer_size"`
	Cluster    bool   `mapstructure:"cluster"`
	Channel    string `mapstructure:"channel"`
}

// PostgresConnectionString формирует строку подключения к PostgreSQL
func (d *DatabaseConfig) PostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// AccessTokenTTL возвращает время жизни access-токена
func (j *JWTConfig) AccessTokenTTL() time.Duration {
	return time.Duration(j.ExpirationMin) * time.Minute
}

// CacheTTL возвращает время жизни закешированного рейтинга
func (r *RankingConfig) CacheTTL() time.Duration {
	return time.Duration(r.CacheTTLSec) * time.Second
}

// IsRelease сообщает, запущен ли сервер в production-режиме
func (s *ServerConfig) IsRelease() bool {
	return s.Mode == "release"
}

func setDefaults(vip *viper.Viper) {
	vip.SetDefault("server.port", "8000")
	vip.SetDefault("server.mode", "debug")
	vip.SetDefault("server.read_timeout", 15)
	vip.SetDefault("server.write_timeout", 15)
	vip.SetDefault("server.shutdown_timeout", 10)

	vip.SetDefault("database.port", "5432")
	vip.SetDefault("database.sslmode", "disable")
	vip.SetDefault("database.migrations_path", "migrations")
	vip.SetDefault("database.log_level", "warn")
	vip.SetDefault("database.max_open_conns", 25)
	vip.SetDefault("database.max_idle_conns", 10)

	vip.SetDefault("redis.mode", "single")
	vip.SetDefault("redis.addr", "localhost:6379")

	vip.SetDefault("jwt.expiration_min", 30)

	vip.SetDefault("auth.cookie_name", "access_token")

	vip.SetDefault("log.level", "info")
	vip.SetDefault("log.format", "text")

	vip.SetDefault("rate_limit.enabled", true)
	vip.SetDefault("rate_limit.login_per_min", 5)
	vip.SetDefault("rate_limit.general_per_min", 100)
	vip.SetDefault("rate_limit.health_per_min", 10)

	vip.SetDefault("ranking.cache_ttl_sec", 60)
	vip.SetDefault("ranking.default_limit", 10)
	vip.SetDefault("ranking.live_limit", 10)

	vip.SetDefault("bootstrap.admin_email", "admin@talana.com")
	vip.SetDefault("bootstrap.admin_password", "admin123")
	vip.SetDefault("bootstrap.admin_name", "Super Admin")
	vip.SetDefault("bootstrap.demo_questions", true)

	vip.SetDefault("websocket.buffer_size", 32)
	vip.SetDefault("websocket.cluster", false)
	vip.SetDefault("websocket.channel", "talatrivia:ranking")

	vip.SetDefault("email.from", "TalaTrivia <no-reply@talatrivia.dev>")

	vip.SetDefault("cors.allow_origins", []string{
		"http://localhost:3000",
		"http://localhost:5173",
		"http://localhost:8080",
		"http://127.0.0.1:3000",
		"http://127.0.0.1:5173",
	})
}

func bindEnv(vip *viper.Viper) {
	// Database
	_ = vip.BindEnv("database.host", "DATABASE_HOST")
	_ = vip.BindEnv("database.port", "DATABASE_PORT")
	_ = vip.BindEnv("database.user", "DATABASE_USER")
	_ = vip.BindEnv("database.password", "DATABASE_PASSWORD")
	_ = vip.BindEnv("database.dbname", "DATABASE_DBNAME")
	_ = vip.BindEnv("database.sslmode", "DATABASE_SSLMODE")
	_ = vip.BindEnv("database.migrations_path", "DATABASE_MIGRATIONS_PATH")

	// Redis
	_ = vip.BindEnv("redis.mode", "REDIS_MODE")
	_ = vip.BindEnv("redis.addrs", "REDIS_ADDRS")
	_ = vip.BindEnv("redis.addr", "REDIS_ADDR")
	_ = vip.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = vip.BindEnv("redis.db", "REDIS_DB")
	_ = vip.BindEnv("redis.master_name", "REDIS_MASTER_NAME")

	// JWT / Auth
	_ = vip.BindEnv("jwt.secret", "JWT_SECRET")
	_ = vip.BindEnv("jwt.expiration_min", "JWT_EXPIRATION_MIN")
	_ = vip.BindEnv("auth.cookie_secure", "AUTH_COOKIE_SECURE")

	// Server / Log
	_ = vip.BindEnv("server.port", "SERVER_PORT")
	_ = vip.BindEnv("server.mode", "GIN_MODE")
	_ = vip.BindEnv("log.level", "LOG_LEVEL")
	_ = vip.BindEnv("log.format", "LOG_FORMAT")

	// Bootstrap / Testing / Email
	_ = vip.BindEnv("bootstrap.admin_email", "FIRST_SUPERUSER_EMAIL")
	_ = vip.BindEnv("bootstrap.admin_password", "FIRST_SUPERUSER_PASSWORD")
	_ = vip.BindEnv("testing.enabled", "TESTING_ENABLED")
	_ = vip.BindEnv("email.resend_api_key", "RESEND_API_KEY")
	_ = vip.BindEnv("email.from", "EMAIL_FROM")
	_ = vip.BindEnv("email.app_url", "APP_URL")
	_ = vip.BindEnv("websocket.cluster", "WS_CLUSTER_ENABLED")
}

// Load загружает конфигурацию из файла и переменных окружения.
// Пустой configPath означает "только переменные окружения и значения по умолчанию".
func Load(configPath string) (*Config, error) {
	vip := viper.New() // отдельный экземпляр, без глобального состояния

	setDefaults(vip)
	bindEnv(vip)

	if configPath != "" {
		vip.SetConfigFile(configPath)
		if err := vip.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !isMissingFile(err) {
				return nil, fmt.Errorf("failed to read config file %q: %w", configPath, err)
			}
		}
	}

	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// REDIS_ADDRS приходит строкой "host1:6379,host2:6379"
	if len(cfg.Redis.Addrs) == 1 && strings.Contains(cfg.Redis.Addrs[0], ",") {
		cfg.Redis.Addrs = strings.Split(cfg.Redis.Addrs[0], ",")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет обязательные параметры
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt secret is required in config (check JWT_SECRET env var)")
	}
	if c.JWT.ExpirationMin <= 0 {
		return fmt.Errorf("jwt expiration_min must be positive, got %d", c.JWT.ExpirationMin)
	}
	if c.Database.Host == "" || c.Database.DBName == "" || c.Database.User == "" {
		return fmt.Errorf("database configuration (host, dbname, user) is incomplete (check DATABASE_HOST, DATABASE_DBNAME, DATABASE_USER env vars)")
	}
	if c.Server.IsRelease() && c.Database.Password == "" {
		return fmt.Errorf("database password is required in release mode (check DATABASE_PASSWORD env var)")
	}
	if c.Ranking.DefaultLimit <= 0 {
		c.Ranking.DefaultLimit = 10
	}
	if c.Ranking.LiveLimit <= 0 {
		c.Ranking.LiveLimit = c.Ranking.DefaultLimit
	}
	return nil
}

// isMissingFile распознает отсутствие файла, указанного через SetConfigFile:
// viper в этом случае возвращает ошибку os, а не ConfigFileNotFoundError.
func isMissingFile(err error) bool {
	return strings.Contains(err.Error(), "no such file or directory") ||
		strings.Contains(err.Error(), "cannot find the file")
}
