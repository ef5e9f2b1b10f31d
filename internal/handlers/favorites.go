package handlers

import (
	"net/http"

	"github.com/KRaymonne/pro/internal/apperr"
	"github.com/KRaymonne/pro/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type FavoriteHandler struct {
	log *zap.Logger
}

func NewFavoriteHandler(log *zap.Logger) *FavoriteHandler {
	return &FavoriteHandler{log: log}
}

type favoriteRequest struct {
	PoemID uint `json:"poesieId" binding:"required"`
}

func (h *FavoriteHandler) Add(c *gin.Context) {
	user := currentUser(c)

	var req favoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, apperr.Validation("poesieId requis"))
		return
	}

	// The poem must exist and be active before it can be pinned.
	if _, err := repository.GetActivePoem(c.Request.Context(), req.PoemID); err != nil {
		respondError(c, h.log, err)
		return
	}

	favorite, err := repository.AddFavorite(c.Request.Context(), user.ID, req.PoemID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, favorite)
}

func (h *FavoriteHandler) Remove(c *gin.Context) {
	user := currentUser(c)
	poemID, err := paramID(c, "id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	if err := repository.RemoveFavorite(c.Request.Context(), user.ID, poemID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "favori retiré"})
}

func (h *FavoriteHandler) List(c *gin.Context) {
	user := currentUser(c)

	favorites, err := repository.ListFavorites(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"favoris": favorites, "nombre": len(favorites)})
}
