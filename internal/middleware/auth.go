package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TokenClaims carries the authenticated principal extracted from a JWT.
type TokenClaims struct {
	UserID uuid.UUID
}

// TokenValidator is an interface for validating JWT tokens
type TokenValidator interface {
	ValidateToken(token string) (*TokenClaims, error)
}

const userIDKey = "user_id"

// AuthMiddleware creates a middleware that requires a valid bearer token
// and stores the caller's user id in the request context.
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseBearer(c, validator)
		if !ok {
			return
		}
		c.Set(userIDKey, claims.UserID)
		c.Next()
	}
}

// OptionalAuthMiddleware resolves the caller when an Authorization header
// is present but lets anonymous requests through. A malformed or invalid
// token is still rejected rather than silently downgraded to anonymous.
func OptionalAuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		claims, ok := parseBearer(c, validator)
		if !ok {
			return
		}
		c.Set(userIDKey, claims.UserID)
		c.Next()
	}
}

// CurrentUserID returns the authenticated caller, if any.
func CurrentUserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(userIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

func parseBearer(c *gin.Context, validator TokenValidator) (*TokenClaims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
		c.Abort()
		return nil, false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
		c.Abort()
		return nil, false
	}

	claims, err := validator.ValidateToken(parts[1])
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		c.Abort()
		return nil, false
	}
	return claims, true
}
