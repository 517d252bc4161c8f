package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/platefeed/backend/internal/middleware"
	"github.com/platefeed/backend/internal/models"
	"github.com/platefeed/backend/internal/service"
)

type RecipeHandler struct {
	recipes   *service.RecipeService
	favorites *service.FavoriteService
	cart      *service.CartService
	subs      *service.SubscriptionService
	images    *service.ImageService
}

func NewRecipeHandler(
	recipes *service.RecipeService,
	favorites *service.FavoriteService,
	cart *service.CartService,
	subs *service.SubscriptionService,
	images *service.ImageService,
) *RecipeHandler {
	return &RecipeHandler{
		recipes:   recipes,
		favorites: favorites,
		cart:      cart,
		subs:      subs,
		images:    images,
	}
}

// RegisterRoutes wires the recipe surface. Reads are public with optional
// authentication (the requester, when known, gets is_favorited and
// is_in_shopping_cart flags); writes require authentication. The write
// limiter is optional and only applied when Redis is configured.
func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup, auth middleware.TokenValidator, limiter *middleware.RateLimiter) {
	recipes := router.Group("/recipes")

	recipes.GET("", middleware.OptionalAuthMiddleware(auth), h.ListRecipes)
	recipes.GET("/:id", middleware.OptionalAuthMiddleware(auth), h.GetRecipe)

	authed := recipes.Group("", middleware.AuthMiddleware(auth))
	{
		write := authed.Group("")
		if limiter != nil {
			write.Use(limiter.RateLimitMiddleware())
		}
		write.POST("", h.CreateRecipe)
		write.PATCH("/:id", h.UpdateRecipe)
		write.DELETE("/:id", h.DeleteRecipe)

		authed.POST("/:id/favorite", h.FavoriteRecipe)
		authed.DELETE("/:id/favorite", h.UnfavoriteRecipe)
		authed.POST("/:id/shopping_cart", h.AddToShoppingCart)
		authed.DELETE("/:id/shopping_cart", h.RemoveFromShoppingCart)
		authed.GET("/download_shopping_cart", h.DownloadShoppingCart)
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	filter := service.RecipeFilter{
		Page:  queryInt(c, "page", 1),
		Limit: queryInt(c, "limit", 0),
	}

	if author := c.Query("author"); author != "" {
		authorID, err := uuid.Parse(author)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid author id"})
			return
		}
		filter.AuthorID = &authorID
	}
	filter.TagSlugs = c.QueryArray("tags")

	if userID, ok := middleware.CurrentUserID(c); ok {
		filter.Requester = &userID
		filter.Favorited = c.Query("is_favorited") == "1"
		filter.InCart = c.Query("is_in_shopping_cart") == "1"
	}

	recipes, total, err := h.recipes.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	flags, err := h.loadFlags(c, recipes)
	if err != nil {
		respondError(c, err)
		return
	}

	results := make([]RecipeResponse, 0, len(recipes))
	for _, r := range recipes {
		results = append(results, newRecipeResponse(r, flags))
	}
	c.JSON(http.StatusOK, PagedResponse{Count: total, Results: results})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	recipeID, ok := pathID(c)
	if !ok {
		return
	}

	recipe, err := h.recipes.Get(c.Request.Context(), recipeID)
	if err != nil {
		respondError(c, err)
		return
	}

	flags, err := h.loadFlags(c, []models.Recipe{*recipe})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newRecipeResponse(*recipe, flags))
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req CreateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID, _ := middleware.CurrentUserID(c)

	imageURL := ""
	if req.Image != "" {
		var err error
		imageURL, err = h.images.StoreBase64(c.Request.Context(), req.Image)
		if err != nil {
			respondError(c, err)
			return
		}
	}

	recipe, err := h.recipes.Create(c.Request.Context(), userID, service.CreateRecipeInput{
		Name:        req.Name,
		ImageURL:    imageURL,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		TagIDs:      req.Tags,
		Ingredients: toIngredientAmounts(req.Ingredients),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	flags, err := h.loadFlags(c, []models.Recipe{*recipe})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newRecipeResponse(*recipe, flags))
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	recipeID, ok := pathID(c)
	if !ok {
		return
	}
	var req UpdateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID, _ := middleware.CurrentUserID(c)

	var imageURL *string
	if req.Image != nil && *req.Image != "" {
		stored, err := h.images.StoreBase64(c.Request.Context(), *req.Image)
		if err != nil {
			respondError(c, err)
			return
		}
		imageURL = &stored
	}

	recipe, err := h.recipes.Update(c.Request.Context(), recipeID, userID, service.UpdateRecipeInput{
		Name:        req.Name,
		ImageURL:    imageURL,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		TagIDs:      req.Tags,
		Ingredients: toIngredientAmounts(req.Ingredients),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	flags, err := h.loadFlags(c, []models.Recipe{*recipe})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newRecipeResponse(*recipe, flags))
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	recipeID, ok := pathID(c)
	if !ok {
		return
	}
	userID, _ := middleware.CurrentUserID(c)

	if err := h.recipes.Delete(c.Request.Context(), recipeID, userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) FavoriteRecipe(c *gin.Context) {
	h.addMembership(c, h.favorites.Add)
}

func (h *RecipeHandler) UnfavoriteRecipe(c *gin.Context) {
	h.removeMembership(c, h.favorites.Remove)
}

func (h *RecipeHandler) AddToShoppingCart(c *gin.Context) {
	h.addMembership(c, h.cart.Add)
}

func (h *RecipeHandler) RemoveFromShoppingCart(c *gin.Context) {
	h.removeMembership(c, h.cart.Remove)
}

func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)

	report, err := h.cart.Export(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+service.ExportFilename+`"`)
	c.Data(http.StatusOK, "text/csv", report)
}

type membershipOp func(ctx context.Context, userID, recipeID uuid.UUID) error

func (h *RecipeHandler) addMembership(c *gin.Context, op membershipOp) {
	recipeID, ok := pathID(c)
	if !ok {
		return
	}
	userID, _ := middleware.CurrentUserID(c)

	recipe, err := h.recipes.Get(c.Request.Context(), recipeID)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := op(c.Request.Context(), userID, recipe.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newRecipeSummaryResponse(*recipe))
}

func (h *RecipeHandler) removeMembership(c *gin.Context, op membershipOp) {
	recipeID, ok := pathID(c)
	if !ok {
		return
	}
	userID, _ := middleware.CurrentUserID(c)

	if _, err := h.recipes.Get(c.Request.Context(), recipeID); err != nil {
		respondError(c, err)
		return
	}
	if err := op(c.Request.Context(), userID, recipeID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// loadFlags resolves the requester's relation to the given recipes and
// their authors. Anonymous requesters get all-false flags.
func (h *RecipeHandler) loadFlags(c *gin.Context, recipes []models.Recipe) (relationFlags, error) {
	var flags relationFlags
	userID, ok := middleware.CurrentUserID(c)
	if !ok || len(recipes) == 0 {
		return flags, nil
	}

	recipeIDs := make([]uuid.UUID, 0, len(recipes))
	authorIDs := make([]uuid.UUID, 0, len(recipes))
	seenAuthors := make(map[uuid.UUID]bool)
	for _, r := range recipes {
		recipeIDs = append(recipeIDs, r.ID)
		if !seenAuthors[r.AuthorID] {
			seenAuthors[r.AuthorID] = true
			authorIDs = append(authorIDs, r.AuthorID)
		}
	}

	ctx := c.Request.Context()
	var err error
	if flags.favorited, err = h.favorites.Contains(ctx, userID, recipeIDs); err != nil {
		return flags, err
	}
	if flags.inCart, err = h.cart.Contains(ctx, userID, recipeIDs); err != nil {
		return flags, err
	}
	if flags.subscribed, err = h.subs.IsSubscribed(ctx, userID, authorIDs); err != nil {
		return flags, err
	}
	return flags, nil
}

func toIngredientAmounts(entries []AmountRequest) []service.IngredientAmount {
	out := make([]service.IngredientAmount, 0, len(entries))
	for _, e := range entries {
		out = append(out, service.IngredientAmount{IngredientID: e.ID, Amount: e.Amount})
	}
	return out
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
