package api

import (
	"github.com/google/uuid"

	"github.com/platefeed/backend/internal/models"
)

// Explicit request/response schemas per resource. Read and write shapes
// are separate types rather than one struct reused for both directions.

type RegisterRequest struct {
	Username  string `json:"username" binding:"required,max=150"`
	Email     string `json:"email" binding:"required,email,max=254"`
	FirstName string `json:"first_name" binding:"required,max=150"`
	LastName  string `json:"last_name" binding:"required,max=150"`
	Password  string `json:"password" binding:"required,min=8,max=150"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type UserResponse struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	IsSubscribed bool      `json:"is_subscribed"`
}

type TagResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Color string    `json:"color"`
	Slug  string    `json:"slug"`
}

type IngredientResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	MeasurementUnit string    `json:"measurement_unit"`
}

// AmountResponse flattens an Amount row into its ingredient plus quantity.
type AmountResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	MeasurementUnit string    `json:"measurement_unit"`
	Amount          int       `json:"amount"`
}

type RecipeResponse struct {
	ID               uuid.UUID        `json:"id"`
	Tags             []TagResponse    `json:"tags"`
	Author           UserResponse     `json:"author"`
	Ingredients      []AmountResponse `json:"ingredients"`
	IsFavorited      bool             `json:"is_favorited"`
	IsInShoppingCart bool             `json:"is_in_shopping_cart"`
	Name             string           `json:"name"`
	Image            string           `json:"image"`
	Text             string           `json:"text"`
	CookingTime      int              `json:"cooking_time"`
}

// RecipeSummaryResponse is the short recipe form used by the toggle
// endpoints and subscription previews.
type RecipeSummaryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Image       string    `json:"image"`
	CookingTime int       `json:"cooking_time"`
}

type SubscriptionResponse struct {
	UserResponse
	Recipes      []RecipeSummaryResponse `json:"recipes"`
	RecipesCount int64                   `json:"recipes_count"`
}

type AmountRequest struct {
	ID     uuid.UUID `json:"id" binding:"required"`
	Amount int       `json:"amount"`
}

type CreateRecipeRequest struct {
	Ingredients []AmountRequest `json:"ingredients" binding:"required"`
	Tags        []uuid.UUID     `json:"tags" binding:"required"`
	Name        string          `json:"name" binding:"required,max=200"`
	Image       string          `json:"image"`
	Text        string          `json:"text" binding:"required"`
	CookingTime int             `json:"cooking_time" binding:"required"`
}

// UpdateRecipeRequest replaces the ingredient and tag sets wholesale;
// omitted scalar fields keep their previous value.
type UpdateRecipeRequest struct {
	Ingredients []AmountRequest `json:"ingredients" binding:"required"`
	Tags        []uuid.UUID     `json:"tags" binding:"required"`
	Name        *string         `json:"name" binding:"omitempty,max=200"`
	Image       *string         `json:"image"`
	Text        *string         `json:"text"`
	CookingTime *int            `json:"cooking_time"`
}

// PagedResponse wraps page-number paginated listings.
type PagedResponse struct {
	Count   int64 `json:"count"`
	Results any   `json:"results"`
}

func newUserResponse(u models.User, subscribed bool) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}
}

func newTagResponse(t models.Tag) TagResponse {
	return TagResponse{ID: t.ID, Name: t.Name, Color: t.Color, Slug: t.Slug}
}

func newIngredientResponse(i models.Ingredient) IngredientResponse {
	return IngredientResponse{ID: i.ID, Name: i.Name, MeasurementUnit: i.MeasurementUnit}
}

func newRecipeSummaryResponse(r models.Recipe) RecipeSummaryResponse {
	return RecipeSummaryResponse{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.ImageURL,
		CookingTime: r.CookingTime,
	}
}

// relationFlags marks how a recipe relates to the requester.
type relationFlags struct {
	favorited  map[uuid.UUID]bool
	inCart     map[uuid.UUID]bool
	subscribed map[uuid.UUID]bool
}

func newRecipeResponse(r models.Recipe, flags relationFlags) RecipeResponse {
	tags := make([]TagResponse, 0, len(r.Tags))
	for _, t := range r.Tags {
		tags = append(tags, newTagResponse(t))
	}
	ingredients := make([]AmountResponse, 0, len(r.Amounts))
	for _, a := range r.Amounts {
		ingredients = append(ingredients, AmountResponse{
			ID:              a.IngredientID,
			Name:            a.Ingredient.Name,
			MeasurementUnit: a.Ingredient.MeasurementUnit,
			Amount:          a.Amount,
		})
	}
	return RecipeResponse{
		ID:               r.ID,
		Tags:             tags,
		Author:           newUserResponse(r.Author, flags.subscribed[r.AuthorID]),
		Ingredients:      ingredients,
		IsFavorited:      flags.favorited[r.ID],
		IsInShoppingCart: flags.inCart[r.ID],
		Name:             r.Name,
		Image:            r.ImageURL,
		Text:             r.Text,
		CookingTime:      r.CookingTime,
	}
}
