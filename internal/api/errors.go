package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/platefeed/backend/internal/service"
)

// respondError maps the service error taxonomy to structured 4xx
// responses. Anything unrecognized is a 500 with a generic body.
func respondError(c *gin.Context, err error) {
	var (
		validationErr *service.ValidationError
		notFoundErr   *service.NotFoundError
		conflictErr   *service.ConflictError
		forbiddenErr  *service.ForbiddenError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundErr.Message})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, gin.H{"error": conflictErr.Message})
	case errors.As(err, &forbiddenErr):
		c.JSON(http.StatusForbidden, gin.H{"error": forbiddenErr.Message})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, gorm.ErrDuplicatedKey):
		c.JSON(http.StatusConflict, gin.H{"error": "already exists"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
