package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/platefeed/backend/internal/models"
	"github.com/platefeed/backend/internal/service"
	"github.com/platefeed/backend/internal/testhelpers"
)

type testEnv struct {
	router  *gin.Engine
	db      *gorm.DB
	auth    *service.AuthService
	recipes *service.RecipeService
}

// setupTestEnv wires the full handler stack against an in-memory database,
// with images stored in a temp directory and no rate limiter.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupSQLite(t)

	authService := service.NewAuthService(db, "test-secret")
	recipeService := service.NewRecipeService(db)
	favoriteService := service.NewFavoriteService(db)
	cartService := service.NewCartService(db)
	subscriptionService := service.NewSubscriptionService(db)
	catalogService := service.NewCatalogService(db)
	imageService := service.NewImageService(nil, t.TempDir(), zap.NewNop())

	router := gin.New()
	v1 := router.Group("/api/v1")
	NewUserHandler(authService, subscriptionService, recipeService).RegisterRoutes(v1, authService)
	NewRecipeHandler(recipeService, favoriteService, cartService, subscriptionService, imageService).RegisterRoutes(v1, authService, nil)
	NewCatalogHandler(catalogService).RegisterRoutes(v1)

	return &testEnv{
		router:  router,
		db:      db,
		auth:    authService,
		recipes: recipeService,
	}
}

// createUser registers a user through the auth service and returns the
// record together with a valid bearer token.
func (env *testEnv) createUser(t *testing.T, username string) (models.User, string) {
	t.Helper()
	user, token, err := env.auth.Register(context.Background(), service.RegisterInput{
		Username:  username,
		Email:     username + "@example.com",
		FirstName: "Test",
		LastName:  "User",
		Password:  "password-123",
	})
	require.NoError(t, err)
	return *user, token
}

func (env *testEnv) createIngredient(t *testing.T, name, unit string) models.Ingredient {
	t.Helper()
	ingredient := models.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, env.db.Create(&ingredient).Error)
	return ingredient
}

func (env *testEnv) createTag(t *testing.T, name, color, slug string) models.Tag {
	t.Helper()
	tag := models.Tag{Name: name, Color: color, Slug: slug}
	require.NoError(t, env.db.Create(&tag).Error)
	return tag
}

// perform issues a request against the test router. An empty token leaves
// the request anonymous.
func (env *testEnv) perform(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Buffer
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(payload)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out),
		"status %d, body: %s", w.Code, w.Body.String())
}

func clone(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// serviceCreateInput is a minimal valid recipe for fixtures created
// directly through the service layer.
func serviceCreateInput(name string) service.CreateRecipeInput {
	return service.CreateRecipeInput{
		Name:        name,
		Text:        "Cook it.",
		CookingTime: 10,
	}
}
