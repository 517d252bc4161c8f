package service

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/platefeed/backend/internal/models"
)

func createTestUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: "not-a-real-hash",
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createTestIngredient(t *testing.T, db *gorm.DB, name, unit string) models.Ingredient {
	t.Helper()
	ingredient := models.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, db.Create(&ingredient).Error)
	return ingredient
}

func createTestTag(t *testing.T, db *gorm.DB, name, color, slug string) models.Tag {
	t.Helper()
	tag := models.Tag{Name: name, Color: color, Slug: slug}
	require.NoError(t, db.Create(&tag).Error)
	return tag
}
