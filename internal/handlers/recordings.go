package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/KRaymonne/pro/internal/apperr"
	"github.com/KRaymonne/pro/internal/config"
	"github.com/KRaymonne/pro/internal/models"
	"github.com/KRaymonne/pro/internal/repository"
	"github.com/KRaymonne/pro/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RecordingHandler struct {
	log      *zap.Logger
	sessions *services.SessionService
}

func NewRecordingHandler(log *zap.Logger, sessions *services.SessionService) *RecordingHandler {
	return &RecordingHandler{log: log, sessions: sessions}
}

// Upload stores a fresh take for an existing session (a re-record). The
// multipart form carries the session id alongside the audio blob.
func (h *RecordingHandler) Upload(c *gin.Context) {
	user := currentUser(c)

	sessionID, err := strconv.ParseUint(c.PostForm("lectureId"), 10, 32)
	if err != nil || sessionID == 0 {
		respondError(c, h.log, apperr.Validation("lectureId requis"))
		return
	}

	fileHeader, err := c.FormFile("audio")
	if err != nil {
		respondError(c, h.log, apperr.Validation("fichier audio requis"))
		return
	}
	if fileHeader.Size > config.Conf.Uploads.MaxBytes {
		respondError(c, h.log, apperr.Validation("fichier audio trop volumineux"))
		return
	}
	if mime := fileHeader.Header.Get("Content-Type"); mime != "" &&
		!strings.HasPrefix(mime, "audio/") && !strings.HasPrefix(mime, "video/webm") {
		respondError(c, h.log, apperr.Validation("seuls les fichiers audio sont acceptés"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, h.log, apperr.Storage("lecture du fichier audio impossible", err))
		return
	}
	defer file.Close()

	duration, err := formFloat(c, "duree")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	upload := services.RecordingUpload{
		Data:     file,
		Filename: fileHeader.Filename,
		Duration: duration,
		Comment:  c.PostForm("commentaires"),
	}

	recording, err := h.sessions.AttachRecording(c.Request.Context(), user.ID, uint(sessionID), upload)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, recording)
}

func (h *RecordingHandler) Get(c *gin.Context) {
	user := currentUser(c)
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	recording, err := repository.GetRecordingForUser(c.Request.Context(), id, user.ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, recording)
}

func (h *RecordingHandler) List(c *gin.Context) {
	user := currentUser(c)
	page, limit := pagination(c)

	recordings, total, err := repository.ListRecordingsByUser(c.Request.Context(), user.ID, page, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, paginated(recordings, total, page, limit))
}

func (h *RecordingHandler) ListBySession(c *gin.Context) {
	user := currentUser(c)
	sessionID, err := paramID(c, "id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	// Ownership check before listing the takes.
	if _, err := repository.GetSessionForUser(c.Request.Context(), sessionID, user.ID); err != nil {
		respondError(c, h.log, err)
		return
	}

	recordings, err := repository.ListRecordingsBySession(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"enregistrements": recordings, "nombre": len(recordings)})
}

type recordingCorrection struct {
	Quality         *string  `json:"qualite"`
	ComparisonScore *float64 `json:"scoreComparaison"`
	Comment         *string  `json:"commentaires"`
}

// Update applies the post-hoc corrections a review can make. File fields
// are immutable; a bad take gets re-recorded, not edited.
func (h *RecordingHandler) Update(c *gin.Context) {
	user := currentUser(c)
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	var req recordingCorrection
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, apperr.Validation("données de correction invalides"))
		return
	}

	recording, err := repository.GetRecordingForUser(c.Request.Context(), id, user.ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	if req.Quality != nil {
		if !models.ValidQuality(*req.Quality) {
			respondError(c, h.log, apperr.Validation("qualité invalide"))
			return
		}
		recording.Quality = *req.Quality
	}
	if req.ComparisonScore != nil {
		if *req.ComparisonScore < 0 || *req.ComparisonScore > 100 {
			respondError(c, h.log, apperr.Validation("le score de comparaison doit être entre 0 et 100"))
			return
		}
		recording.ComparisonScore = req.ComparisonScore
	}
	if req.Comment != nil {
		recording.Comment = *req.Comment
	}

	if err := repository.SaveRecording(c.Request.Context(), recording); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, recording)
}

// Delete soft-deletes a recording. The file stays on disk and the row stays
// in history; only Active flips.
func (h *RecordingHandler) Delete(c *gin.Context) {
	user := currentUser(c)
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	if err := repository.DeactivateRecording(c.Request.Context(), id, user.ID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "enregistrement supprimé"})
}

func (h *RecordingHandler) Stats(c *gin.Context) {
	user := currentUser(c)

	stats, err := repository.GetRecordingStats(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	qualities, err := repository.GetRecordingQualityCounts(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"statistiques": stats, "repartitionQualite": qualities})
}
