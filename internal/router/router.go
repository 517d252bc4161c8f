package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/platefeed/backend/config"
	"github.com/platefeed/backend/internal/api"
	"github.com/platefeed/backend/internal/middleware"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Users   *api.UserHandler
	Recipes *api.RecipeHandler
	Catalog *api.CatalogHandler
}

// Setup configures the application routes.
func Setup(cfg *config.Config, h Handlers, auth middleware.TokenValidator, limiter *middleware.RateLimiter) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Decoded recipe images land here when S3 is not configured.
	if cfg.MediaDir != "" {
		router.Static("/media", cfg.MediaDir)
	}

	v1 := router.Group("/api/v1")
	h.Users.RegisterRoutes(v1, auth)
	h.Recipes.RegisterRoutes(v1, auth, limiter)
	h.Catalog.RegisterRoutes(v1)

	return router
}
