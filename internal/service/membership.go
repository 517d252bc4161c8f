package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// membership is the shared add/remove-with-state-check shape behind
// favorites and the shopping cart. Both relations are (user_id, recipe_id)
// rows with a composite unique index, so one implementation serves both.
type membership[T any] struct {
	db         *gorm.DB
	newRow     func(userID, recipeID uuid.UUID) T
	presentMsg string
	absentMsg  string
}

// add transitions the pair to present. Adding an already-present pair is a
// conflict. The unique index backstops concurrent adds: a duplicate-key
// error from the insert is reported as the same conflict.
func (m *membership[T]) add(ctx context.Context, userID, recipeID uuid.UUID) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(new(T)).
			Where("user_id = ? AND recipe_id = ?", userID, recipeID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return conflict(m.presentMsg)
		}
		row := m.newRow(userID, recipeID)
		if err := tx.Create(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return conflict(m.presentMsg)
			}
			return err
		}
		return nil
	})
}

// remove transitions the pair to absent. Removing an absent pair is a
// not-found condition.
func (m *membership[T]) remove(ctx context.Context, userID, recipeID uuid.UUID) error {
	res := m.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(new(T))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound(m.absentMsg)
	}
	return nil
}

// contains reports which of the given recipes are present for the user.
func (m *membership[T]) contains(ctx context.Context, userID uuid.UUID, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	present := make(map[uuid.UUID]bool, len(recipeIDs))
	if len(recipeIDs) == 0 {
		return present, nil
	}
	var found []uuid.UUID
	if err := m.db.WithContext(ctx).Model(new(T)).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Pluck("recipe_id", &found).Error; err != nil {
		return nil, err
	}
	for _, id := range found {
		present[id] = true
	}
	return present, nil
}

// recipeIDs lists the user's member recipes in insertion order.
func (m *membership[T]) recipeIDs(tx *gorm.DB, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := tx.Model(new(T)).
		Where("user_id = ?", userID).
		Order("created_at, id").
		Pluck("recipe_id", &ids).Error
	return ids, err
}
