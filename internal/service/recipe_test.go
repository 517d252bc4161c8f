package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platefeed/backend/internal/models"
	"github.com/platefeed/backend/internal/testhelpers"
)

func TestRecipeCreate(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	svc := NewRecipeService(db)
	ctx := context.Background()

	author := createTestUser(t, db, "alice")
	flour := createTestIngredient(t, db, "flour", "g")
	sugar := createTestIngredient(t, db, "sugar", "g")
	breakfast := createTestTag(t, db, "Breakfast", "#E26C2D", "breakfast")

	recipe, err := svc.Create(ctx, author.ID, CreateRecipeInput{
		Name:        "Pancakes",
		Text:        "Mix and fry.",
		CookingTime: 20,
		TagIDs:      []uuid.UUID{breakfast.ID},
		Ingredients: []IngredientAmount{
			{IngredientID: flour.ID, Amount: 200},
			{IngredientID: sugar.ID, Amount: 50},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Pancakes", recipe.Name)
	assert.Equal(t, author.ID, recipe.AuthorID)
	assert.Equal(t, "alice", recipe.Author.Username)
	assert.Equal(t, 20, recipe.CookingTime)
	require.Len(t, recipe.Tags, 1)
	assert.Equal(t, "breakfast", recipe.Tags[0].Slug)
	require.Len(t, recipe.Amounts, 2)
	byName := map[string]int{}
	for _, a := range recipe.Amounts {
		byName[a.Ingredient.Name] = a.Amount
	}
	assert.Equal(t, 200, byName["flour"])
	assert.Equal(t, 50, byName["sugar"])
}

func TestRecipeCreateValidation(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	svc := NewRecipeService(db)
	ctx := context.Background()

	author := createTestUser(t, db, "alice")
	flour := createTestIngredient(t, db, "flour", "g")
	tag := createTestTag(t, db, "Dinner", "#8775D2", "dinner")

	valid := CreateRecipeInput{
		Name:        "Bread",
		Text:        "Bake.",
		CookingTime: 60,
		TagIDs:      []uuid.UUID{tag.ID},
		Ingredients: []IngredientAmount{{IngredientID: flour.ID, Amount: 500}},
	}

	t.Run("cooking time below one", func(t *testing.T) {
		in := valid
		in.CookingTime = 0
		_, err := svc.Create(ctx, author.ID, in)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
	})

	t.Run("amount below one", func(t *testing.T) {
		in := valid
		in.Ingredients = []IngredientAmount{{IngredientID: flour.ID, Amount: 0}}
		_, err := svc.Create(ctx, author.ID, in)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
	})

	t.Run("unknown ingredient", func(t *testing.T) {
		in := valid
		in.Ingredients = []IngredientAmount{{IngredientID: uuid.New(), Amount: 10}}
		_, err := svc.Create(ctx, author.ID, in)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
	})

	t.Run("unknown tag", func(t *testing.T) {
		in := valid
		in.TagIDs = []uuid.UUID{uuid.New()}
		_, err := svc.Create(ctx, author.ID, in)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
	})

	t.Run("duplicate ingredient", func(t *testing.T) {
		in := valid
		in.Ingredients = []IngredientAmount{
			{IngredientID: flour.ID, Amount: 100},
			{IngredientID: flour.ID, Amount: 200},
		}
		_, err := svc.Create(ctx, author.ID, in)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Message, "flour")
	})

	t.Run("nothing persisted after failure", func(t *testing.T) {
		var count int64
		require.NoError(t, db.Model(&models.Recipe{}).Count(&count).Error)
		assert.Zero(t, count)
	})
}

func TestRecipeUpdate(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	svc := NewRecipeService(db)
	ctx := context.Background()

	author := createTestUser(t, db, "alice")
	other := createTestUser(t, db, "bob")
	flour := createTestIngredient(t, db, "flour", "g")
	sugar := createTestIngredient(t, db, "sugar", "g")
	breakfast := createTestTag(t, db, "Breakfast", "#E26C2D", "breakfast")
	dinner := createTestTag(t, db, "Dinner", "#8775D2", "dinner")

	recipe, err := svc.Create(ctx, author.ID, CreateRecipeInput{
		Name:        "Pancakes",
		Text:        "Mix and fry.",
		CookingTime: 20,
		TagIDs:      []uuid.UUID{breakfast.ID},
		Ingredients: []IngredientAmount{
			{IngredientID: flour.ID, Amount: 200},
			{IngredientID: sugar.ID, Amount: 50},
		},
	})
	require.NoError(t, err)

	t.Run("only author may modify", func(t *testing.T) {
		_, err := svc.Update(ctx, recipe.ID, other.ID, UpdateRecipeInput{})
		var ferr *ForbiddenError
		require.ErrorAs(t, err, &ferr)
	})

	t.Run("unknown recipe", func(t *testing.T) {
		_, err := svc.Update(ctx, uuid.New(), author.ID, UpdateRecipeInput{})
		var nerr *NotFoundError
		require.ErrorAs(t, err, &nerr)
	})

	t.Run("replaces ingredient and tag sets, keeps omitted scalars", func(t *testing.T) {
		newTime := 35
		updated, err := svc.Update(ctx, recipe.ID, author.ID, UpdateRecipeInput{
			CookingTime: &newTime,
			TagIDs:      []uuid.UUID{dinner.ID},
			Ingredients: []IngredientAmount{{IngredientID: sugar.ID, Amount: 75}},
		})
		require.NoError(t, err)

		assert.Equal(t, "Pancakes", updated.Name)
		assert.Equal(t, 35, updated.CookingTime)
		require.Len(t, updated.Tags, 1)
		assert.Equal(t, "dinner", updated.Tags[0].Slug)
		require.Len(t, updated.Amounts, 1)
		assert.Equal(t, "sugar", updated.Amounts[0].Ingredient.Name)
		assert.Equal(t, 75, updated.Amounts[0].Amount)

		// No orphaned rows from the replaced set.
		var count int64
		require.NoError(t, db.Model(&models.Amount{}).
			Where("recipe_id = ?", recipe.ID).Count(&count).Error)
		assert.EqualValues(t, 1, count)
	})

	t.Run("failed update leaves the recipe untouched", func(t *testing.T) {
		_, err := svc.Update(ctx, recipe.ID, author.ID, UpdateRecipeInput{
			Ingredients: []IngredientAmount{{IngredientID: uuid.New(), Amount: 5}},
		})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)

		current, err := svc.Get(ctx, recipe.ID)
		require.NoError(t, err)
		require.Len(t, current.Amounts, 1)
		assert.Equal(t, "sugar", current.Amounts[0].Ingredient.Name)
	})
}

func TestRecipeDelete(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	svc := NewRecipeService(db)
	favorites := NewFavoriteService(db)
	cart := NewCartService(db)
	ctx := context.Background()

	author := createTestUser(t, db, "alice")
	fan := createTestUser(t, db, "bob")
	flour := createTestIngredient(t, db, "flour", "g")

	recipe, err := svc.Create(ctx, author.ID, CreateRecipeInput{
		Name:        "Bread",
		Text:        "Bake.",
		CookingTime: 60,
		Ingredients: []IngredientAmount{{IngredientID: flour.ID, Amount: 500}},
	})
	require.NoError(t, err)
	require.NoError(t, favorites.Add(ctx, fan.ID, recipe.ID))
	require.NoError(t, cart.Add(ctx, fan.ID, recipe.ID))

	t.Run("only author may delete", func(t *testing.T) {
		err := svc.Delete(ctx, recipe.ID, fan.ID)
		var ferr *ForbiddenError
		require.ErrorAs(t, err, &ferr)
	})

	t.Run("delete cascades to amounts and memberships", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, recipe.ID, author.ID))

		_, err := svc.Get(ctx, recipe.ID)
		var nerr *NotFoundError
		require.ErrorAs(t, err, &nerr)

		for _, model := range []any{&models.Amount{}, &models.Favorite{}, &models.CartItem{}} {
			var count int64
			require.NoError(t, db.Model(model).
				Where("recipe_id = ?", recipe.ID).Count(&count).Error)
			assert.Zero(t, count)
		}
	})

	t.Run("deleting again is not found", func(t *testing.T) {
		err := svc.Delete(ctx, recipe.ID, author.ID)
		var nerr *NotFoundError
		require.ErrorAs(t, err, &nerr)
	})
}

func TestRecipeListFilters(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	svc := NewRecipeService(db)
	favorites := NewFavoriteService(db)
	cart := NewCartService(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	flour := createTestIngredient(t, db, "flour", "g")
	breakfast := createTestTag(t, db, "Breakfast", "#E26C2D", "breakfast")
	dinner := createTestTag(t, db, "Dinner", "#8775D2", "dinner")

	mk := func(author uuid.UUID, name string, tags ...uuid.UUID) *models.Recipe {
		r, err := svc.Create(ctx, author, CreateRecipeInput{
			Name:        name,
			Text:        "...",
			CookingTime: 10,
			TagIDs:      tags,
			Ingredients: []IngredientAmount{{IngredientID: flour.ID, Amount: 1}},
		})
		require.NoError(t, err)
		return r
	}

	porridge := mk(alice.ID, "Porridge", breakfast.ID)
	stew := mk(alice.ID, "Stew", dinner.ID)
	omelette := mk(bob.ID, "Omelette", breakfast.ID)

	require.NoError(t, favorites.Add(ctx, bob.ID, porridge.ID))
	require.NoError(t, cart.Add(ctx, bob.ID, stew.ID))

	names := func(recipes []models.Recipe) []string {
		var out []string
		for _, r := range recipes {
			out = append(out, r.Name)
		}
		return out
	}

	t.Run("by author", func(t *testing.T) {
		got, total, err := svc.List(ctx, RecipeFilter{AuthorID: &alice.ID})
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		assert.ElementsMatch(t, []string{"Porridge", "Stew"}, names(got))
	})

	t.Run("tag slugs are OR-combined", func(t *testing.T) {
		got, total, err := svc.List(ctx, RecipeFilter{TagSlugs: []string{"breakfast", "dinner"}})
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)
		assert.ElementsMatch(t, []string{"Porridge", "Stew", "Omelette"}, names(got))
	})

	t.Run("favorited requires a requester", func(t *testing.T) {
		_, total, err := svc.List(ctx, RecipeFilter{Favorited: true})
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)
	})

	t.Run("favorited for requester", func(t *testing.T) {
		got, total, err := svc.List(ctx, RecipeFilter{Favorited: true, Requester: &bob.ID})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		assert.Equal(t, []string{"Porridge"}, names(got))
	})

	t.Run("in cart for requester", func(t *testing.T) {
		got, total, err := svc.List(ctx, RecipeFilter{InCart: true, Requester: &bob.ID})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		assert.Equal(t, []string{"Stew"}, names(got))
	})

	t.Run("favorited wins when both flags are set", func(t *testing.T) {
		got, _, err := svc.List(ctx, RecipeFilter{Favorited: true, InCart: true, Requester: &bob.ID})
		require.NoError(t, err)
		assert.Equal(t, []string{"Porridge"}, names(got))
	})

	_ = omelette
}

func TestRecipeListPagination(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	svc := NewRecipeService(db)
	ctx := context.Background()

	author := createTestUser(t, db, "alice")
	for i := 0; i < 8; i++ {
		_, err := svc.Create(ctx, author.ID, CreateRecipeInput{
			Name:        fmt.Sprintf("Recipe %d", i),
			Text:        "...",
			CookingTime: 5,
		})
		require.NoError(t, err)
	}

	page1, total, err := svc.List(ctx, RecipeFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 8, total)
	assert.Len(t, page1, DefaultPageSize)

	page2, total, err := svc.List(ctx, RecipeFilter{Page: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 8, total)
	assert.Len(t, page2, 2)

	limited, _, err := svc.List(ctx, RecipeFilter{Limit: 3})
	require.NoError(t, err)
	assert.Len(t, limited, 3)
}

func TestRecipeByAuthorLimit(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	svc := NewRecipeService(db)
	ctx := context.Background()

	author := createTestUser(t, db, "alice")
	for i := 0; i < 4; i++ {
		_, err := svc.Create(ctx, author.ID, CreateRecipeInput{
			Name:        fmt.Sprintf("Recipe %d", i),
			Text:        "...",
			CookingTime: 5,
		})
		require.NoError(t, err)
	}

	recipes, total, err := svc.ByAuthor(ctx, author.ID, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	assert.Len(t, recipes, 2)

	all, total, err := svc.ByAuthor(ctx, author.ID, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	assert.Len(t, all, 4)
}
