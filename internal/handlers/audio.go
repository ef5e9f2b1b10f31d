package handlers

import (
	"net/http"

	"github.com/KRaymonne/pro/internal/apperr"
	"github.com/KRaymonne/pro/internal/models"
	"github.com/KRaymonne/pro/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AudioHandler struct {
	log *zap.Logger
}

func NewAudioHandler(log *zap.Logger) *AudioHandler {
	return &AudioHandler{log: log}
}

// Narration resolves the narration track for a poem, honoring the listener's
// voice preference and falling back to whichever voice the poem has.
func (h *AudioHandler) Narration(c *gin.Context) {
	user := currentUser(c)
	poemID, err := paramID(c, "id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	poem, err := repository.GetActivePoem(c.Request.Context(), poemID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	voice := c.Query("voix")
	if voice == "" {
		voice = user.VoicePreference
	}

	url, used := poem.NarrationFor(voice)
	if url == "" {
		respondError(c, h.log, apperr.NotFound("aucune narration disponible pour cette poésie"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url, "voix": used})
}

type voiceRequest struct {
	Voice string `json:"preferenceVoix" binding:"required"`
}

// UpdateVoicePreference stores the narration voice the listener wants by
// default.
func (h *AudioHandler) UpdateVoicePreference(c *gin.Context) {
	user := currentUser(c)

	var req voiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, apperr.Validation("preferenceVoix requise"))
		return
	}
	if req.Voice != models.VoiceFeminine && req.Voice != models.VoiceMasculine {
		respondError(c, h.log, apperr.Validation("voix invalide"))
		return
	}

	if err := repository.UpdateVoicePreference(c.Request.Context(), user.ID, req.Voice); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"preferenceVoix": req.Voice})
}
