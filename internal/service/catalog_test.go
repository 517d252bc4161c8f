package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platefeed/backend/internal/testhelpers"
)

func TestListIngredientsPrefixSearch(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	svc := NewCatalogService(db)
	ctx := context.Background()

	createTestIngredient(t, db, "flour", "g")
	createTestIngredient(t, db, "flaxseed", "g")
	createTestIngredient(t, db, "sugar", "g")

	t.Run("no prefix returns everything ordered by name", func(t *testing.T) {
		got, err := svc.ListIngredients(ctx, "")
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "flaxseed", got[0].Name)
		assert.Equal(t, "flour", got[1].Name)
		assert.Equal(t, "sugar", got[2].Name)
	})

	t.Run("prefix narrows the list", func(t *testing.T) {
		got, err := svc.ListIngredients(ctx, "fl")
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("prefix matching is case-insensitive", func(t *testing.T) {
		got, err := svc.ListIngredients(ctx, "FL")
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("prefix only matches the start of the name", func(t *testing.T) {
		got, err := svc.ListIngredients(ctx, "our")
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestGetIngredient(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	svc := NewCatalogService(db)
	ctx := context.Background()

	flour := createTestIngredient(t, db, "flour", "g")

	got, err := svc.GetIngredient(ctx, flour.ID)
	require.NoError(t, err)
	assert.Equal(t, "flour", got.Name)
	assert.Equal(t, "g", got.MeasurementUnit)

	_, err = svc.GetIngredient(ctx, uuid.New())
	var nerr *NotFoundError
	require.ErrorAs(t, err, &nerr)
}

func TestTags(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	svc := NewCatalogService(db)
	ctx := context.Background()

	dinner := createTestTag(t, db, "Dinner", "#8775D2", "dinner")
	createTestTag(t, db, "Breakfast", "#E26C2D", "breakfast")

	tags, err := svc.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "Breakfast", tags[0].Name)
	assert.Equal(t, "Dinner", tags[1].Name)

	got, err := svc.GetTag(ctx, dinner.ID)
	require.NoError(t, err)
	assert.Equal(t, "dinner", got.Slug)

	_, err = svc.GetTag(ctx, uuid.New())
	var nerr *NotFoundError
	require.ErrorAs(t, err, &nerr)
}
