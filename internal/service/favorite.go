package service

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/platefeed/backend/internal/models"
)

// FavoriteService toggles recipes in a user's favorites.
type FavoriteService struct {
	membership[models.Favorite]
}

func NewFavoriteService(db *gorm.DB) *FavoriteService {
	return &FavoriteService{
		membership: membership[models.Favorite]{
			db: db,
			newRow: func(userID, recipeID uuid.UUID) models.Favorite {
				return models.Favorite{UserID: userID, RecipeID: recipeID}
			},
			presentMsg: "recipe is already in favorites",
			absentMsg:  "recipe is not in favorites",
		},
	}
}

func (s *FavoriteService) Add(ctx context.Context, userID, recipeID uuid.UUID) error {
	return s.add(ctx, userID, recipeID)
}

func (s *FavoriteService) Remove(ctx context.Context, userID, recipeID uuid.UUID) error {
	return s.remove(ctx, userID, recipeID)
}

func (s *FavoriteService) Contains(ctx context.Context, userID uuid.UUID, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	return s.contains(ctx, userID, recipeIDs)
}
