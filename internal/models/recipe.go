package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Recipe struct {
	ID          uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	AuthorID    uuid.UUID `gorm:"type:varchar(36);not null;index" json:"author_id"`
	Author      User      `json:"author"`
	Name        string    `gorm:"size:200;not null" json:"name"`
	ImageURL    string    `gorm:"size:255" json:"image"`
	Text        string    `gorm:"type:text" json:"text"`
	CookingTime int       `gorm:"not null;check:cooking_time >= 1" json:"cooking_time"`
	Tags        []Tag     `gorm:"many2many:recipe_tags" json:"tags"`
	Amounts     []Amount  `json:"ingredients"`
}

func (r *Recipe) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Ingredient is shared reference data; recipes point at it through Amount.
// The same name may appear with different units, but never twice with the
// same one.
type Ingredient struct {
	ID              uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	Name            string    `gorm:"size:200;not null;uniqueIndex:idx_ingredient_name_unit" json:"name"`
	MeasurementUnit string    `gorm:"size:200;not null;uniqueIndex:idx_ingredient_name_unit" json:"measurement_unit"`
}

func (i *Ingredient) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// Amount joins a recipe to one ingredient with a quantity. At most one row
// may exist per (recipe, ingredient) pair; recipe writes replace the whole
// set rather than patching individual rows.
type Amount struct {
	ID           uuid.UUID  `gorm:"type:varchar(36);primarykey" json:"id"`
	RecipeID     uuid.UUID  `gorm:"type:varchar(36);not null;uniqueIndex:idx_amount_recipe_ingredient" json:"recipe_id"`
	IngredientID uuid.UUID  `gorm:"type:varchar(36);not null;uniqueIndex:idx_amount_recipe_ingredient" json:"ingredient_id"`
	Ingredient   Ingredient `json:"ingredient"`
	Amount       int        `gorm:"not null;check:amount >= 1" json:"amount"`
}

func (a *Amount) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

type Tag struct {
	ID    uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	Name  string    `gorm:"size:256;uniqueIndex;not null" json:"name"`
	Color string    `gorm:"size:7;uniqueIndex;not null" json:"color"`
	Slug  string    `gorm:"size:100;uniqueIndex;not null" json:"slug"`
}

func (t *Tag) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
