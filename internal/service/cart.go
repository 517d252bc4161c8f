package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/platefeed/backend/internal/models"
)

// ExportFilename is the attachment name of the shopping-cart report.
const ExportFilename = "ingredients.csv"

// CartService toggles recipes in a user's shopping cart and exports the
// aggregated ingredient report.
type CartService struct {
	membership[models.CartItem]
}

func NewCartService(db *gorm.DB) *CartService {
	return &CartService{
		membership: membership[models.CartItem]{
			db: db,
			newRow: func(userID, recipeID uuid.UUID) models.CartItem {
				return models.CartItem{UserID: userID, RecipeID: recipeID}
			},
			presentMsg: "recipe is already in the shopping cart",
			absentMsg:  "recipe is not in the shopping cart",
		},
	}
}

func (s *CartService) Add(ctx context.Context, userID, recipeID uuid.UUID) error {
	return s.add(ctx, userID, recipeID)
}

func (s *CartService) Remove(ctx context.Context, userID, recipeID uuid.UUID) error {
	return s.remove(ctx, userID, recipeID)
}

func (s *CartService) Contains(ctx context.Context, userID uuid.UUID, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	return s.contains(ctx, userID, recipeIDs)
}

// Export builds the CSV shopping list for every recipe in the user's cart
// and clears the cart. Quantities are summed per ingredient display
// identity "name, measurement_unit", so the same ingredient name with
// different units stays on separate rows. Rows are emitted in discovery
// order: cart insertion order for recipes, then each recipe's amounts.
// The snapshot and the clear run in one transaction so a concurrent cart
// mutation cannot drop or duplicate an item. Downloading consumes the
// cart; an empty cart yields a header-only report.
func (s *CartService) Export(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	totals := make(map[string]int)
	var order []string

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipeIDs, err := s.recipeIDs(tx, userID)
		if err != nil {
			return err
		}
		for _, recipeID := range recipeIDs {
			var amounts []models.Amount
			if err := tx.Preload("Ingredient").
				Where("recipe_id = ?", recipeID).
				Order("id").
				Find(&amounts).Error; err != nil {
				return err
			}
			for _, a := range amounts {
				key := fmt.Sprintf("%s, %s", a.Ingredient.Name, a.Ingredient.MeasurementUnit)
				if _, ok := totals[key]; !ok {
					order = append(order, key)
				}
				totals[key] += a.Amount
			}
		}
		return tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
	})
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"ingredient", "amount"}); err != nil {
		return nil, err
	}
	for _, key := range order {
		if err := w.Write([]string{key, strconv.Itoa(totals[key])}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
