package main

import (
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/platefeed/backend/config"
	"github.com/platefeed/backend/internal/database"
)

// Applies the schema migrations and exits. Deploy pipelines run this
// before rolling the API so schema changes land ahead of new code.
func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	if err := database.WaitFor(cfg, 60*time.Second); err != nil {
		logger.Fatal("database never became ready", zap.Error(err))
	}

	db, err := database.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := database.Migrate(db); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}
	logger.Info("migrations applied")
}
