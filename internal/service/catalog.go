package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/platefeed/backend/internal/models"
)

// CatalogService serves the immutable reference data: ingredients and tags.
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// ListIngredients returns ingredients ordered by name, optionally narrowed
// to those whose name starts with the given prefix (case-insensitive), for
// autocomplete-style search.
func (s *CatalogService) ListIngredients(ctx context.Context, namePrefix string) ([]models.Ingredient, error) {
	q := s.db.WithContext(ctx).Order("name")
	if namePrefix != "" {
		q = q.Where("LOWER(name) LIKE ?", strings.ToLower(namePrefix)+"%")
	}
	var ingredients []models.Ingredient
	if err := q.Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

func (s *CatalogService) GetIngredient(ctx context.Context, id uuid.UUID) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	err := s.db.WithContext(ctx).First(&ingredient, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("ingredient not found")
	}
	if err != nil {
		return nil, err
	}
	return &ingredient, nil
}

func (s *CatalogService) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := s.db.WithContext(ctx).Order("name").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func (s *CatalogService) GetTag(ctx context.Context, id uuid.UUID) (*models.Tag, error) {
	var tag models.Tag
	err := s.db.WithContext(ctx).First(&tag, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("tag not found")
	}
	if err != nil {
		return nil, err
	}
	return &tag, nil
}
