package handlers

import (
	"net/http"

	"github.com/KRaymonne/pro/internal/apperr"
	"github.com/KRaymonne/pro/internal/models"
	"github.com/KRaymonne/pro/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type PoemHandler struct {
	log *zap.Logger
}

func NewPoemHandler(log *zap.Logger) *PoemHandler {
	return &PoemHandler{log: log}
}

func (h *PoemHandler) List(c *gin.Context) {
	page, limit := pagination(c)
	filter := repository.PoemFilter{
		Level:      c.Query("niveau"),
		Theme:      c.Query("theme"),
		Difficulty: c.Query("difficulte"),
		Search:     c.Query("recherche"),
		Page:       page,
		Limit:      limit,
	}

	poems, total, err := repository.ListPoems(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, paginated(poems, total, page, limit))
}

func (h *PoemHandler) Get(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	poem, err := repository.GetActivePoem(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, poem)
}

type poemRequest struct {
	Title              string   `json:"titre" binding:"required"`
	Author             string   `json:"auteur" binding:"required"`
	Content            string   `json:"contenu" binding:"required"`
	Level              string   `json:"niveau" binding:"required"`
	Theme              string   `json:"theme" binding:"required"`
	Difficulty         string   `json:"difficulte" binding:"required"`
	EstimatedMinutes   int      `json:"dureeEstimee"`
	Description        string   `json:"description"`
	AgeMin             int      `json:"ageMin"`
	AgeMax             int      `json:"ageMax"`
	Keywords           []string `json:"motsCles"`
	NarrationFeminine  string   `json:"narrationFeminine"`
	NarrationMasculine string   `json:"narrationMasculine"`
}

func (r poemRequest) validate() error {
	if !models.ValidLevel(r.Level) {
		return apperr.Validation("niveau invalide")
	}
	if !models.ValidTheme(r.Theme) {
		return apperr.Validation("thème invalide")
	}
	if !models.ValidDifficulty(r.Difficulty) {
		return apperr.Validation("difficulté invalide")
	}
	return nil
}

func (h *PoemHandler) Create(c *gin.Context) {
	var req poemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, apperr.Validation("données de poésie invalides"))
		return
	}
	if err := req.validate(); err != nil {
		respondError(c, h.log, err)
		return
	}

	poem := &models.Poem{
		Title:              req.Title,
		Author:             req.Author,
		Content:            req.Content,
		Level:              req.Level,
		Theme:              req.Theme,
		Difficulty:         req.Difficulty,
		EstimatedMinutes:   req.EstimatedMinutes,
		Description:        req.Description,
		AgeMin:             req.AgeMin,
		AgeMax:             req.AgeMax,
		Keywords:           datatypes.JSONSlice[string](req.Keywords),
		NarrationFeminine:  req.NarrationFeminine,
		NarrationMasculine: req.NarrationMasculine,
		Active:             true,
	}
	if err := repository.CreatePoem(c.Request.Context(), poem); err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Info("Poem created", zap.Uint("poemID", poem.ID), zap.String("title", poem.Title))
	c.JSON(http.StatusCreated, poem)
}

func (h *PoemHandler) Update(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	var req poemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, apperr.Validation("données de poésie invalides"))
		return
	}
	if err := req.validate(); err != nil {
		respondError(c, h.log, err)
		return
	}

	poem, err := repository.GetActivePoem(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	poem.Title = req.Title
	poem.Author = req.Author
	poem.Content = req.Content
	poem.Level = req.Level
	poem.Theme = req.Theme
	poem.Difficulty = req.Difficulty
	poem.EstimatedMinutes = req.EstimatedMinutes
	poem.Description = req.Description
	poem.AgeMin = req.AgeMin
	poem.AgeMax = req.AgeMax
	poem.Keywords = datatypes.JSONSlice[string](req.Keywords)
	poem.NarrationFeminine = req.NarrationFeminine
	poem.NarrationMasculine = req.NarrationMasculine

	if err := repository.SavePoem(c.Request.Context(), poem); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, poem)
}

func (h *PoemHandler) Delete(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if err := repository.DeactivatePoem(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "poésie désactivée"})
}
