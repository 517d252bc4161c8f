package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/platefeed/backend/config"
	"github.com/platefeed/backend/internal/database"
	"github.com/platefeed/backend/internal/server"
)

func main() {
	logger, err := newLogger()
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
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis only backs the write rate limiter; the API runs without it.
	redisClient, err := database.NewRedisClient(cfg, logger)
	if err != nil {
		logger.Warn("running without rate limiting", zap.Error(err))
		redisClient = nil
	}

	s3cfg, err := config.NewS3Config(context.Background(), cfg)
	if err != nil {
		logger.Fatal("failed to initialize S3", zap.Error(err))
	}
	if s3cfg == nil {
		logger.Info("storing images locally", zap.String("dir", cfg.MediaDir))
	}

	srv := server.New(cfg, logger, db, redisClient, s3cfg)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start(cfg.Addr())
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	case sig := <-quit:
		logger.Info("received signal", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server shutdown error", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() (*zap.Logger, error) {
	if config.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
