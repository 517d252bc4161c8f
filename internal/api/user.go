package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/platefeed/backend/internal/middleware"
	"github.com/platefeed/backend/internal/models"
	"github.com/platefeed/backend/internal/service"
)

type UserHandler struct {
	auth    *service.AuthService
	subs    *service.SubscriptionService
	recipes *service.RecipeService
}

func NewUserHandler(auth *service.AuthService, subs *service.SubscriptionService, recipes *service.RecipeService) *UserHandler {
	return &UserHandler{
		auth:    auth,
		subs:    subs,
		recipes: recipes,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup, validator middleware.TokenValidator) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
	}

	users := router.Group("/users")
	{
		users.GET("", middleware.OptionalAuthMiddleware(validator), h.ListUsers)
		users.GET("/:id", middleware.OptionalAuthMiddleware(validator), h.GetUser)

		authed := users.Group("", middleware.AuthMiddleware(validator))
		{
			authed.GET("/subscriptions", h.ListSubscriptions)
			authed.POST("/:id/subscribe", h.Subscribe)
			authed.DELETE("/:id/subscribe", h.Unsubscribe)
		}
	}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, token, err := h.auth.Register(c.Request.Context(), service.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"user":  newUserResponse(*user, false),
		"token": token,
	})
}

func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, TokenResponse{Token: token})
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	users, total, err := h.auth.ListUsers(c.Request.Context(), queryInt(c, "page", 1), queryInt(c, "limit", 0))
	if err != nil {
		respondError(c, err)
		return
	}

	subscribed, err := h.subscribedSet(c, users)
	if err != nil {
		respondError(c, err)
		return
	}

	results := make([]UserResponse, 0, len(users))
	for _, u := range users {
		results = append(results, newUserResponse(u, subscribed[u.ID]))
	}
	c.JSON(http.StatusOK, PagedResponse{Count: total, Results: results})
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	user, err := h.auth.GetUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	subscribed, err := h.subscribedSet(c, []models.User{*user})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(*user, subscribed[user.ID]))
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	authorID, ok := pathID(c)
	if !ok {
		return
	}
	userID, _ := middleware.CurrentUserID(c)

	author, err := h.subs.Subscribe(c.Request.Context(), userID, authorID)
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.subscriptionResponse(c, *author, queryInt(c, "recipes_limit", 0))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	authorID, ok := pathID(c)
	if !ok {
		return
	}
	userID, _ := middleware.CurrentUserID(c)

	if err := h.subs.Unsubscribe(c.Request.Context(), userID, authorID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListSubscriptions returns the authors the caller follows, each with a
// preview of their recipes capped at recipes_limit when given.
func (h *UserHandler) ListSubscriptions(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)
	recipesLimit := queryInt(c, "recipes_limit", 0)

	authors, total, err := h.subs.Authors(c.Request.Context(), userID, queryInt(c, "page", 1), queryInt(c, "limit", 0))
	if err != nil {
		respondError(c, err)
		return
	}

	results := make([]SubscriptionResponse, 0, len(authors))
	for _, author := range authors {
		resp, err := h.subscriptionResponse(c, author, recipesLimit)
		if err != nil {
			respondError(c, err)
			return
		}
		results = append(results, resp)
	}
	c.JSON(http.StatusOK, PagedResponse{Count: total, Results: results})
}

func (h *UserHandler) subscriptionResponse(c *gin.Context, author models.User, recipesLimit int) (SubscriptionResponse, error) {
	recipes, count, err := h.recipes.ByAuthor(c.Request.Context(), author.ID, recipesLimit)
	if err != nil {
		return SubscriptionResponse{}, err
	}
	previews := make([]RecipeSummaryResponse, 0, len(recipes))
	for _, r := range recipes {
		previews = append(previews, newRecipeSummaryResponse(r))
	}
	return SubscriptionResponse{
		UserResponse: newUserResponse(author, true),
		Recipes:      previews,
		RecipesCount: count,
	}, nil
}

func (h *UserHandler) subscribedSet(c *gin.Context, users []models.User) (map[uuid.UUID]bool, error) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return nil, nil
	}
	ids := make([]uuid.UUID, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return h.subs.IsSubscribed(c.Request.Context(), userID, ids)
}
