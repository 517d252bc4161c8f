package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/platefeed/backend/config"
	"github.com/platefeed/backend/internal/api"
	"github.com/platefeed/backend/internal/middleware"
	"github.com/platefeed/backend/internal/router"
	"github.com/platefeed/backend/internal/service"
)

// Server assembles the services and handlers and owns the HTTP listener.
type Server struct {
	engine *gin.Engine
	http   *http.Server
	logger *zap.Logger
}

func New(cfg *config.Config, logger *zap.Logger, db *gorm.DB, redisClient *redis.Client, s3cfg *config.S3Config) *Server {
	authService := service.NewAuthService(db, cfg.JWTSecret)
	recipeService := service.NewRecipeService(db)
	favoriteService := service.NewFavoriteService(db)
	cartService := service.NewCartService(db)
	subscriptionService := service.NewSubscriptionService(db)
	catalogService := service.NewCatalogService(db)
	imageService := service.NewImageService(s3cfg, cfg.MediaDir, logger)

	var limiter *middleware.RateLimiter
	if redisClient != nil {
		limiter = middleware.NewRecipeWriteRateLimiter(redisClient)
	}

	engine := router.Setup(cfg, router.Handlers{
		Users:   api.NewUserHandler(authService, subscriptionService, recipeService),
		Recipes: api.NewRecipeHandler(recipeService, favoriteService, cartService, subscriptionService, imageService),
		Catalog: api.NewCatalogHandler(catalogService),
	}, authService, limiter)

	return &Server{
		engine: engine,
		logger: logger,
	}
}

// Start blocks serving HTTP until Shutdown is called or the listener fails.
func (s *Server) Start(addr string) error {
	s.http = &http.Server{
		Addr:    addr,
		Handler: s.engine,
	}
	s.logger.Info("server listening", zap.String("addr", addr))
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http != nil {
		return s.http.Shutdown(ctx)
	}
	return nil
}
