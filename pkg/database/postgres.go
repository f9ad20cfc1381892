package database

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	migrateV4 "github.com/golang-migrate/migrate/v4"
	migratePostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/sirupsen/logrus"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yourusername/talatrivia-api/internal/config"
)

// NewPostgresDB создает новое подключение к PostgreSQL
func NewPostgresDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(gormPostgres.Open(cfg.PostgresConnectionString()), &gorm.Config{
		Logger: logger.Default.LogMode(gormLogLevel(cfg.LogLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Настройка пула соединений
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(positiveOr(cfg.MaxOpenConns, 25))
	sqlDB.SetMaxIdleConns(positiveOr(cfg.MaxIdleConns, 10))
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// newMigrator создает экземпляр migrate поверх открытого соединения gorm
func newMigrator(db *gorm.DB, migrationsPath string) (*migrateV4.Migrate, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get *sql.DB from *gorm.DB: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database is not reachable before migration: %w", err)
	}

	driver, err := migratePostgres.WithInstance(sqlDB, &migratePostgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres driver for migrate: %w", err)
	}

	absPath, err := filepath.Abs(migrationsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve migrations path %q: %w", migrationsPath, err)
	}

	m, err := migrateV4.NewWithDatabaseInstance("file://"+filepath.ToSlash(absPath), "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}

// MigrateDB применяет SQL-миграции "вверх" из каталога migrationsPath
func MigrateDB(db *gorm.DB, migrationsPath string, log logrus.FieldLogger) error {
	m, err := newMigrator(db, migrationsPath)
	if err != nil {
		return err
	}

	log.WithField("path", migrationsPath).Info("Applying database migrations")
	err = m.Up()
	switch {
	case errors.Is(err, migrateV4.ErrNoChange):
		log.Info("No new migrations, database schema is up to date")
	case err != nil:
		return fmt.Errorf("migrate up failed: %w", err)
	default:
		log.Info("Migrations applied successfully")
	}
	return nil
}

// RollbackDB откатывает steps последних миграций
func RollbackDB(db *gorm.DB, migrationsPath string, steps int, log logrus.FieldLogger) error {
	if steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", steps)
	}
	m, err := newMigrator(db, migrationsPath)
	if err != nil {
		return err
	}

	log.WithFields(logrus.Fields{"path": migrationsPath, "steps": steps}).Info("Rolling back database migrations")
	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrateV4.ErrNoChange) {
		return fmt.Errorf("migrate down failed: %w", err)
	}
	return nil
}

func gormLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

func positiveOr(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

// ForceVersion устанавливает версию схемы и снимает флаг dirty после неудачной миграции
func ForceVersion(db *gorm.DB, migrationsPath string, version int, log logrus.FieldLogger) error {
	m, err := newMigrator(db, migrationsPath)
	if err != nil {
		return err
	}
	if err := m.Force(version); err != nil {
		return fmt.Errorf("failed to force version %d: %w", version, err)
	}
	log.WithField("version", version).Info("Migration version forced, dirty state cleared")
	return nil
}

// SchemaVersion возвращает текущую версию схемы и признак dirty
func SchemaVersion(db *gorm.DB, migrationsPath string) (uint, bool, error) {
	m, err := newMigrator(db, migrationsPath)
	if err != nil {
		return 0, false, err
	}
	version, dirty, err := m.Version()
	if errors.Is(err, migrateV4.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, dirty, nil
}
