package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/platefeed/backend/internal/models"
	"github.com/platefeed/backend/internal/testhelpers"
)

// Runs the critical paths against a real PostgreSQL to catch anything the
// sqlite-backed tests paper over. Skipped when docker is unavailable.
func TestPostgresIntegration(t *testing.T) {
	db := testhelpers.SetupPostgres(t)
	ctx := context.Background()

	recipes := NewRecipeService(db)
	favorites := NewFavoriteService(db)
	cart := NewCartService(db)

	author := createTestUser(t, db, "alice")
	flour := createTestIngredient(t, db, "flour", "g")
	tag := createTestTag(t, db, "Dinner", "#8775D2", "dinner")

	recipe, err := recipes.Create(ctx, author.ID, CreateRecipeInput{
		Name:        "Bread",
		Text:        "Bake.",
		CookingTime: 60,
		TagIDs:      []uuid.UUID{tag.ID},
		Ingredients: []IngredientAmount{{IngredientID: flour.ID, Amount: 500}},
	})
	require.NoError(t, err)

	t.Run("duplicate key translation", func(t *testing.T) {
		first := models.Favorite{UserID: author.ID, RecipeID: recipe.ID}
		require.NoError(t, db.Create(&first).Error)

		second := models.Favorite{UserID: author.ID, RecipeID: recipe.ID}
		err := db.Create(&second).Error
		assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey))
	})

	t.Run("favorite conflict via the service", func(t *testing.T) {
		err := favorites.Add(ctx, author.ID, recipe.ID)
		var cerr *ConflictError
		require.ErrorAs(t, err, &cerr)
	})

	t.Run("check constraints are enforced", func(t *testing.T) {
		bad := models.Amount{RecipeID: recipe.ID, IngredientID: flour.ID, Amount: 0}
		assert.Error(t, db.Create(&bad).Error)
	})

	t.Run("cart export round trip", func(t *testing.T) {
		require.NoError(t, cart.Add(ctx, author.ID, recipe.ID))
		report, err := cart.Export(ctx, author.ID)
		require.NoError(t, err)
		assert.Contains(t, string(report), `"flour, g",500`)
	})
}
