package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/platefeed/backend/internal/service"
)

// CatalogHandler serves the ingredient and tag reference data. Both are
// public and unpaginated.
type CatalogHandler struct {
	catalog *service.CatalogService
}

func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup) {
	ingredients := router.Group("/ingredients")
	{
		ingredients.GET("", h.ListIngredients)
		ingredients.GET("/:id", h.GetIngredient)
	}
	tags := router.Group("/tags")
	{
		tags.GET("", h.ListTags)
		tags.GET("/:id", h.GetTag)
	}
}

// ListIngredients supports a case-insensitive starts-with name filter for
// autocomplete-style search.
func (h *CatalogHandler) ListIngredients(c *gin.Context) {
	ingredients, err := h.catalog.ListIngredients(c.Request.Context(), c.Query("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	results := make([]IngredientResponse, 0, len(ingredients))
	for _, ing := range ingredients {
		results = append(results, newIngredientResponse(ing))
	}
	c.JSON(http.StatusOK, results)
}

func (h *CatalogHandler) GetIngredient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	ingredient, err := h.catalog.GetIngredient(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newIngredientResponse(*ingredient))
}

func (h *CatalogHandler) ListTags(c *gin.Context) {
	tags, err := h.catalog.ListTags(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	results := make([]TagResponse, 0, len(tags))
	for _, t := range tags {
		results = append(results, newTagResponse(t))
	}
	c.JSON(http.StatusOK, results)
}

func (h *CatalogHandler) GetTag(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	tag, err := h.catalog.GetTag(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTagResponse(*tag))
}
