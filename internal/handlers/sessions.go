package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/KRaymonne/pro/internal/apperr"
	"github.com/KRaymonne/pro/internal/config"
	"github.com/KRaymonne/pro/internal/repository"
	"github.com/KRaymonne/pro/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SessionHandler struct {
	log      *zap.Logger
	sessions *services.SessionService
}

func NewSessionHandler(log *zap.Logger, sessions *services.SessionService) *SessionHandler {
	return &SessionHandler{log: log, sessions: sessions}
}

type startRequest struct {
	PoemID uint `json:"poesieId" binding:"required"`
}

// Start opens a reading session, or resumes the active one for the same
// poem. The response tells the client which case it got.
func (h *SessionHandler) Start(c *gin.Context) {
	user := currentUser(c)

	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, apperr.Validation("poesieId requis"))
		return
	}

	session, resumed, err := h.sessions.Start(c.Request.Context(), user.ID, req.PoemID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	status := http.StatusCreated
	if resumed {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{"lecture": session, "reprise": resumed})
}

func (h *SessionHandler) List(c *gin.Context) {
	user := currentUser(c)
	page, limit := pagination(c)

	sessions, total, err := repository.ListSessions(c.Request.Context(), user.ID, c.Query("statut"), page, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, paginated(sessions, total, page, limit))
}

func (h *SessionHandler) Get(c *gin.Context) {
	user := currentUser(c)
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	session, err := repository.GetSessionForUser(c.Request.Context(), id, user.ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *SessionHandler) UpdateProgress(c *gin.Context) {
	user := currentUser(c)
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	var update services.ProgressUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		respondError(c, h.log, apperr.Validation("données de progression invalides"))
		return
	}

	session, err := h.sessions.UpdateProgress(c.Request.Context(), user.ID, id, update)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

type stepRequest struct {
	Current string `json:"etapeActuelle" binding:"required"`
}

// NextStep answers which workflow step follows the one the client just
// finished. The recording step has no successor here: the client must call
// the finalize endpoint instead.
func (h *SessionHandler) NextStep(c *gin.Context) {
	var req stepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, apperr.Validation("etapeActuelle requise"))
		return
	}

	next, err := services.NextStep(services.Step(req.Current))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"etapeSuivante": next})
}

// Finalize accepts the multipart finalization payload: the audio blob plus
// the client-side measurements. The stored duration of the session itself is
// derived server-side from wall clocks, not from the upload.
func (h *SessionHandler) Finalize(c *gin.Context) {
	user := currentUser(c)
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, h.log, err)
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

	audioDuration, err := formFloat(c, "duree")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	input := services.FinalizeInput{
		Upload: services.RecordingUpload{
			Data:     file,
			Filename: fileHeader.Filename,
			Duration: audioDuration,
			Comment:  c.PostForm("commentaires"),
		},
	}
	if raw := c.PostForm("score"); raw != "" {
		score, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			respondError(c, h.log, apperr.Validation("score invalide"))
			return
		}
		input.Score = &score
	}

	session, recording, err := h.sessions.Finalize(c.Request.Context(), user.ID, id, input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"lecture": session, "enregistrement": recording})
}

func (h *SessionHandler) Abandon(c *gin.Context) {
	user := currentUser(c)
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	session, err := h.sessions.Abandon(c.Request.Context(), user.ID, id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// PersonalStats serves the quick dashboard counters: lifetime totals plus
// the current week.
func (h *SessionHandler) PersonalStats(c *gin.Context) {
	user := currentUser(c)

	stats, err := repository.GetPersonalStats(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	week, err := repository.GetWeekStats(c.Request.Context(), user.ID, time.Now())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"statistiques": stats, "cetteSemaine": week})
}

// Progress lists every attempt the student made on one poem, oldest first.
func (h *SessionHandler) Progress(c *gin.Context) {
	user := currentUser(c)
	poemID, err := paramID(c, "id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	attempts, err := repository.ProgressForPoem(c.Request.Context(), user.ID, poemID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tentatives": attempts, "nombre": len(attempts)})
}
