package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/KRaymonne/pro/internal/apperr"
	"github.com/KRaymonne/pro/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps an application error to an HTTP status and a JSON body
// the React client can show as-is. Unknown errors are logged and hidden
// behind a generic message.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		switch appErr.Kind {
		case apperr.KindNotFound:
			status = http.StatusNotFound
		case apperr.KindValidation:
			status = http.StatusBadRequest
		case apperr.KindConflict:
			status = http.StatusConflict
		case apperr.KindForbidden:
			status = http.StatusForbidden
		case apperr.KindStorage:
			status = http.StatusInternalServerError
			log.Error("Storage failure", zap.Error(err), zap.String("path", c.Request.URL.Path))
		}
		c.JSON(status, gin.H{"message": appErr.Msg})
		return
	}

	log.Error("Unhandled error", zap.Error(err), zap.String("path", c.Request.URL.Path))
	c.JSON(http.StatusInternalServerError, gin.H{"message": "erreur serveur"})
}

// currentUser returns the user loaded into the context by the router
// middleware. Handlers behind AuthRequired can rely on it being present.
func currentUser(c *gin.Context) *models.User {
	user, exists := c.Get("user")
	if !exists {
		return nil
	}
	return user.(*models.User)
}

// formFloat parses an optional numeric form field. An absent field yields
// zero; a present but malformed one is a validation error.
func formFloat(c *gin.Context, name string) (float64, error) {
	raw := c.PostForm(name)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, apperr.Validation("champ " + name + " invalide")
	}
	return value, nil
}

// paramID parses a numeric path parameter.
func paramID(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, apperr.Validation("identifiant invalide")
	}
	return uint(id), nil
}

// pagination pulls page/limit query parameters with sane bounds.
func pagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

// paginated is the envelope for list endpoints.
func paginated(items any, total int64, page, limit int) gin.H {
	pages := total / int64(limit)
	if total%int64(limit) != 0 {
		pages++
	}
	return gin.H{
		"donnees":    items,
		"total":      total,
		"page":       page,
		"totalPages": pages,
	}
}
