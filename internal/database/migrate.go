package database

import (
	"gorm.io/gorm"

	"github.com/platefeed/backend/internal/models"
)

// Migrate applies the schema for every persisted entity.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Ingredient{},
		&models.Tag{},
		&models.Recipe{},
		&models.Amount{},
		&models.Favorite{},
		&models.CartItem{},
		&models.Follow{},
	)
}
