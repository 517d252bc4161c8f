package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/platefeed/backend/internal/models"
)

const DefaultPageSize = 6

// RecipeService handles recipe reads, writes and listing filters.
type RecipeService struct {
	db *gorm.DB
}

func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{db: db}
}

// IngredientAmount is one entry of a submitted ingredient list.
type IngredientAmount struct {
	IngredientID uuid.UUID
	Amount       int
}

type CreateRecipeInput struct {
	Name        string
	ImageURL    string
	Text        string
	CookingTime int
	TagIDs      []uuid.UUID
	Ingredients []IngredientAmount
}

// UpdateRecipeInput carries a partial update. Nil scalar fields keep the
// previous value; ingredients and tags always replace the previous sets.
type UpdateRecipeInput struct {
	Name        *string
	ImageURL    *string
	Text        *string
	CookingTime *int
	TagIDs      []uuid.UUID
	Ingredients []IngredientAmount
}

// RecipeFilter narrows a listing. Favorited and InCart only apply when a
// requester is known; Favorited takes precedence when both are set.
type RecipeFilter struct {
	AuthorID  *uuid.UUID
	TagSlugs  []string
	Favorited bool
	InCart    bool
	Requester *uuid.UUID
	Page      int
	Limit     int
}

func (s *RecipeService) Create(ctx context.Context, authorID uuid.UUID, in CreateRecipeInput) (*models.Recipe, error) {
	if in.CookingTime < 1 {
		return nil, invalidf("cooking_time must be at least 1 minute")
	}

	var recipeID uuid.UUID
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := resolveTags(tx, in.TagIDs)
		if err != nil {
			return err
		}
		amounts, err := buildAmounts(tx, in.Ingredients)
		if err != nil {
			return err
		}

		recipe := models.Recipe{
			AuthorID:    authorID,
			Name:        in.Name,
			ImageURL:    in.ImageURL,
			Text:        in.Text,
			CookingTime: in.CookingTime,
		}
		if err := tx.Create(&recipe).Error; err != nil {
			return err
		}
		for i := range amounts {
			amounts[i].RecipeID = recipe.ID
		}
		if len(amounts) > 0 {
			if err := tx.Create(&amounts).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(&recipe).Association("Tags").Replace(tags); err != nil {
			return err
		}
		recipeID = recipe.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, recipeID)
}

func (s *RecipeService) Update(ctx context.Context, recipeID, userID uuid.UUID, in UpdateRecipeInput) (*models.Recipe, error) {
	if in.CookingTime != nil && *in.CookingTime < 1 {
		return nil, invalidf("cooking_time must be at least 1 minute")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.First(&recipe, "id = ?", recipeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("recipe not found")
			}
			return err
		}
		if recipe.AuthorID != userID {
			return forbidden("only the author can modify this recipe")
		}

		tags, err := resolveTags(tx, in.TagIDs)
		if err != nil {
			return err
		}
		amounts, err := buildAmounts(tx, in.Ingredients)
		if err != nil {
			return err
		}

		// Full replace of the ingredient set: drop every prior Amount row
		// and insert the submitted ones. The enclosing transaction keeps a
		// late failure from leaving the recipe half-written.
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.Amount{}).Error; err != nil {
			return err
		}
		for i := range amounts {
			amounts[i].RecipeID = recipe.ID
		}
		if len(amounts) > 0 {
			if err := tx.Create(&amounts).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(&recipe).Association("Tags").Replace(tags); err != nil {
			return err
		}

		if in.Name != nil {
			recipe.Name = *in.Name
		}
		if in.ImageURL != nil {
			recipe.ImageURL = *in.ImageURL
		}
		if in.Text != nil {
			recipe.Text = *in.Text
		}
		if in.CookingTime != nil {
			recipe.CookingTime = *in.CookingTime
		}
		return tx.Save(&recipe).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, recipeID)
}

func (s *RecipeService) Delete(ctx context.Context, recipeID, userID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.First(&recipe, "id = ?", recipeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("recipe not found")
			}
			return err
		}
		if recipe.AuthorID != userID {
			return forbidden("only the author can delete this recipe")
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.Amount{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&recipe).Error
	})
}

func (s *RecipeService) Get(ctx context.Context, recipeID uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.preloaded(s.db.WithContext(ctx)).First(&recipe, "id = ?", recipeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("recipe not found")
	}
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

// List returns one page of recipes, newest first, plus the unpaginated total.
func (s *RecipeService) List(ctx context.Context, f RecipeFilter) ([]models.Recipe, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Recipe{})

	if f.AuthorID != nil {
		q = q.Where("author_id = ?", *f.AuthorID)
	}
	if len(f.TagSlugs) > 0 {
		tagged := s.db.Model(&models.Tag{}).
			Select("recipe_tags.recipe_id").
			Joins("JOIN recipe_tags ON recipe_tags.tag_id = tags.id").
			Where("tags.slug IN ?", f.TagSlugs)
		q = q.Where("recipes.id IN (?)", tagged)
	}
	if f.Requester != nil {
		if f.Favorited {
			member := s.db.Model(&models.Favorite{}).
				Select("recipe_id").Where("user_id = ?", *f.Requester)
			q = q.Where("recipes.id IN (?)", member)
		} else if f.InCart {
			member := s.db.Model(&models.CartItem{}).
				Select("recipe_id").Where("user_id = ?", *f.Requester)
			q = q.Where("recipes.id IN (?)", member)
		}
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	limit := f.Limit
	if limit < 1 {
		limit = DefaultPageSize
	}

	var recipes []models.Recipe
	err := s.preloaded(q).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

// ByAuthor returns an author's recipes, newest first, capped at limit when
// limit > 0, together with the author's full recipe count.
func (s *RecipeService) ByAuthor(ctx context.Context, authorID uuid.UUID, limit int) ([]models.Recipe, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("author_id = ?", authorID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := s.preloaded(s.db.WithContext(ctx)).
		Where("author_id = ?", authorID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var recipes []models.Recipe
	if err := q.Find(&recipes).Error; err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

func (s *RecipeService) preloaded(q *gorm.DB) *gorm.DB {
	return q.Preload("Author").Preload("Tags").Preload("Amounts.Ingredient")
}

// resolveTags checks that every submitted tag id references an existing tag.
func resolveTags(tx *gorm.DB, tagIDs []uuid.UUID) ([]models.Tag, error) {
	if len(tagIDs) == 0 {
		return nil, nil
	}
	var tags []models.Tag
	if err := tx.Find(&tags, "id IN ?", tagIDs).Error; err != nil {
		return nil, err
	}
	known := make(map[uuid.UUID]bool, len(tags))
	for _, t := range tags {
		known[t.ID] = true
	}
	for _, id := range tagIDs {
		if !known[id] {
			return nil, invalidf("tag %s does not exist", id)
		}
	}
	return tags, nil
}

// buildAmounts validates a submitted ingredient list and turns it into
// Amount rows without recipe ids. Quantities must be positive, every
// ingredient must exist, and no ingredient may appear twice.
func buildAmounts(tx *gorm.DB, entries []IngredientAmount) ([]models.Amount, error) {
	ids := make([]uuid.UUID, 0, len(entries))
	for _, e := range entries {
		if e.Amount < 1 {
			return nil, invalidf("ingredient amount must be at least 1")
		}
		ids = append(ids, e.IngredientID)
	}

	var ingredients []models.Ingredient
	if len(ids) > 0 {
		if err := tx.Find(&ingredients, "id IN ?", ids).Error; err != nil {
			return nil, err
		}
	}
	byID := make(map[uuid.UUID]models.Ingredient, len(ingredients))
	for _, ing := range ingredients {
		byID[ing.ID] = ing
	}

	seen := make(map[uuid.UUID]bool, len(entries))
	amounts := make([]models.Amount, 0, len(entries))
	for _, e := range entries {
		ing, ok := byID[e.IngredientID]
		if !ok {
			return nil, invalidf("ingredient %s does not exist", e.IngredientID)
		}
		if seen[e.IngredientID] {
			return nil, invalidf("ingredient %q is already in the recipe", ing.Name)
		}
		seen[e.IngredientID] = true
		amounts = append(amounts, models.Amount{
			IngredientID: e.IngredientID,
			Amount:       e.Amount,
		})
	}
	return amounts, nil
}
