package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"moul.io/zapgorm2"

	"github.com/platefeed/backend/config"
)

func dsn(cfg *config.Config) string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode,
	)
}

// WaitFor pings the database over a raw connection until it answers or the
// timeout elapses. Containerized deployments routinely start the API
// before Postgres is ready to accept connections.
func WaitFor(cfg *config.Config, timeout time.Duration) error {
	db, err := sql.Open("postgres", dsn(cfg))
	if err != nil {
		return fmt.Errorf("error opening database: %w", err)
	}
	defer db.Close()

	deadline := time.Now().Add(timeout)
	for {
		if err = db.Ping(); err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("database not reachable after %s: %w", timeout, err)
		}
		time.Sleep(time.Second)
	}
}

// New opens the GORM connection used by the services. Unique-constraint
// violations are translated to gorm.ErrDuplicatedKey so the toggle
// endpoints can surface them as conflicts.
func New(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	gormLogger := zapgorm2.New(logger)
	gormLogger.SetAsDefault()

	db, err := gorm.Open(postgres.Open(dsn(cfg)), &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	logger.Info("connected to database",
		zap.String("host", cfg.DBHost),
		zap.String("db", cfg.DBName))
	return db, nil
}
