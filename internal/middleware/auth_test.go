package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubValidator struct {
	userID uuid.UUID
}

func (v *stubValidator) ValidateToken(token string) (*TokenClaims, error) {
	if token != "good-token" {
		return nil, errors.New("invalid token")
	}
	return &TokenClaims{UserID: v.userID}, nil
}

func authTestRouter(validator TokenValidator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	report := func(c *gin.Context) {
		if id, ok := CurrentUserID(c); ok {
			c.JSON(http.StatusOK, gin.H{"user_id": id.String()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": nil})
	}
	router.GET("/required", AuthMiddleware(validator), report)
	router.GET("/optional", OptionalAuthMiddleware(validator), report)
	return router
}

func get(router *gin.Engine, path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	userID := uuid.New()
	router := authTestRouter(&stubValidator{userID: userID})

	t.Run("missing header", func(t *testing.T) {
		w := get(router, "/required", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		w := get(router, "/required", "good-token")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		w := get(router, "/required", "Bearer bad-token")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid token sets the user", func(t *testing.T) {
		w := get(router, "/required", "Bearer good-token")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), userID.String())
	})
}

func TestOptionalAuthMiddleware(t *testing.T) {
	userID := uuid.New()
	router := authTestRouter(&stubValidator{userID: userID})

	t.Run("anonymous requests pass through", func(t *testing.T) {
		w := get(router, "/optional", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "null")
	})

	t.Run("a bad token is still rejected", func(t *testing.T) {
		w := get(router, "/optional", "Bearer bad-token")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("a good token resolves the user", func(t *testing.T) {
		w := get(router, "/optional", "Bearer good-token")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), userID.String())
	})
}
