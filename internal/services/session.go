package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/KRaymonne/pro/internal/apperr"
	"github.com/KRaymonne/pro/internal/database"
	"github.com/KRaymonne/pro/internal/models"
	"github.com/KRaymonne/pro/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SessionService drives the reading workflow: start or resume a session,
// track its progress, and finalize or abandon it. Finalization couples the
// recording upload and the session's terminal transition in one transaction.
type SessionService struct {
	log     *zap.Logger
	storage MediaStorage
	now     func() time.Time
}

func NewSessionService(log *zap.Logger, storage MediaStorage) *SessionService {
	return &SessionService{log: log, storage: storage, now: time.Now}
}

// Start begins a session for (user, poem), or resumes the in-progress one.
// The returned bool is true on resume.
func (s *SessionService) Start(ctx context.Context, userID, poemID uint) (*models.ReadingSession, bool, error) {
	if _, err := repository.GetActivePoem(ctx, poemID); err != nil {
		return nil, false, err
	}
	return repository.GetOrCreateSession(ctx, userID, poemID, s.now())
}

// ProgressUpdate carries the in-flight fields a client may push mid-session.
// Status is deliberately absent: terminal transitions go through Finalize and
// Abandon only.
type ProgressUpdate struct {
	Progression    *float64               `json:"progression"`
	Score          *float64               `json:"score"`
	DifficultWords []models.DifficultWord `json:"motsDifficiles"`
	Comment        *string                `json:"commentaires"`
}

// UpdateProgress applies mid-session mutations to a non-terminal session.
func (s *SessionService) UpdateProgress(ctx context.Context, userID, sessionID uint, update ProgressUpdate) (*models.ReadingSession, error) {
	session, err := repository.GetSessionForUser(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if session.Terminal() {
		return nil, apperr.Validation("la lecture est déjà terminée")
	}

	if update.Progression != nil {
		if *update.Progression < 0 || *update.Progression > 100 {
			return nil, apperr.Validation("la progression doit être entre 0 et 100")
		}
		session.Progression = *update.Progression
	}
	if update.Score != nil {
		if *update.Score < 0 || *update.Score > 100 {
			return nil, apperr.Validation("le score doit être entre 0 et 100")
		}
		session.Score = update.Score
	}
	if update.DifficultWords != nil {
		session.DifficultWords = update.DifficultWords
	}
	if update.Comment != nil {
		session.Comment = *update.Comment
	}

	if err := repository.SaveSession(ctx, nil, session); err != nil {
		return nil, err
	}
	return session, nil
}

// RecordingUpload is the audio artifact handed over at finalize time.
type RecordingUpload struct {
	Data     io.Reader
	Filename string
	Duration float64 // seconds, as measured by the capturing client
	Comment  string
}

// FinalizeInput bundles everything the terminal transition needs.
type FinalizeInput struct {
	Upload RecordingUpload
	Score  *float64
}

// Finalize completes a session: stores the audio, then atomically creates the
// Recording row and marks the session terminee with its derived duration
// (wall-clock seconds since start, truncated). If the database transaction
// fails after the bytes were stored, the stored object is deleted; a failed
// compensation is logged as an orphan for offline reconciliation, never
// retried.
func (s *SessionService) Finalize(ctx context.Context, userID, sessionID uint, input FinalizeInput) (*models.ReadingSession, *models.Recording, error) {
	session, err := repository.GetSessionForUser(ctx, sessionID, userID)
	if err != nil {
		return nil, nil, err
	}
	if session.Terminal() {
		return nil, nil, apperr.Validation("la lecture est déjà terminée")
	}
	if input.Score != nil && (*input.Score < 0 || *input.Score > 100) {
		return nil, nil, apperr.Validation("le score doit être entre 0 et 100")
	}
	format, err := recordingFormat(input.Upload.Filename)
	if err != nil {
		return nil, nil, err
	}
	if input.Upload.Duration < 0 {
		return nil, nil, apperr.Validation("la durée doit être positive")
	}

	name := fmt.Sprintf("enregistrement-%s.%s", uuid.NewString(), format)
	ref, size, err := s.storage.Store(ctx, name, input.Upload.Data)
	if err != nil {
		return nil, nil, err
	}

	endedAt := s.now()
	duration := int(endedAt.Sub(session.StartedAt) / time.Second)
	if duration < 0 {
		duration = 0
	}

	recording := &models.Recording{
		UserID:     session.UserID,
		PoemID:     session.PoemID,
		SessionID:  session.ID,
		FileURL:    ref,
		Duration:   input.Upload.Duration,
		Quality:    models.QualityGood,
		FileSize:   size,
		FileFormat: format,
		Comment:    input.Upload.Comment,
		Active:     true,
	}

	txErr := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := repository.CreateRecording(ctx, tx, recording); err != nil {
			return err
		}
		session.Status = models.StatusCompleted
		session.EndedAt = &endedAt
		session.Duration = &duration
		session.Progression = 100
		session.RecordingID = &recording.ID
		if input.Score != nil {
			session.Score = input.Score
		}
		return repository.SaveSession(ctx, tx, session)
	})
	if txErr != nil {
		s.compensateStoredMedia(ctx, ref)
		return nil, nil, fmt.Errorf("session finalize failed: %w", txErr)
	}

	s.log.Info("Session finalized",
		zap.Uint("sessionID", session.ID),
		zap.Uint("userID", session.UserID),
		zap.Int("duration", duration),
	)
	return session, recording, nil
}

// Abandon marks a non-terminal session abandonnee. No duration or score side
// effects; terminal states are absorbing.
func (s *SessionService) Abandon(ctx context.Context, userID, sessionID uint) (*models.ReadingSession, error) {
	session, err := repository.GetSessionForUser(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if session.Terminal() {
		return nil, apperr.Validation("la lecture est déjà terminée")
	}

	session.Status = models.StatusAbandoned
	if err := repository.SaveSession(ctx, nil, session); err != nil {
		return nil, err
	}
	return session, nil
}

// AttachRecording uploads a fresh take for an existing session outside the
// finalize path (a re-record). The session keeps its status; only its
// recording link moves to the new take. Storage cleanup mirrors Finalize.
func (s *SessionService) AttachRecording(ctx context.Context, userID, sessionID uint, upload RecordingUpload) (*models.Recording, error) {
	session, err := repository.GetSessionForUser(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	format, err := recordingFormat(upload.Filename)
	if err != nil {
		return nil, err
	}
	if upload.Duration < 0 {
		return nil, apperr.Validation("la durée doit être positive")
	}

	name := fmt.Sprintf("enregistrement-%s.%s", uuid.NewString(), format)
	ref, size, err := s.storage.Store(ctx, name, upload.Data)
	if err != nil {
		return nil, err
	}

	recording := &models.Recording{
		UserID:     session.UserID,
		PoemID:     session.PoemID,
		SessionID:  session.ID,
		FileURL:    ref,
		Duration:   upload.Duration,
		Quality:    models.QualityGood,
		FileSize:   size,
		FileFormat: format,
		Comment:    upload.Comment,
		Active:     true,
	}

	txErr := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := repository.CreateRecording(ctx, tx, recording); err != nil {
			return err
		}
		session.RecordingID = &recording.ID
		return repository.SaveSession(ctx, tx, session)
	})
	if txErr != nil {
		s.compensateStoredMedia(ctx, ref)
		return nil, fmt.Errorf("recording attach failed: %w", txErr)
	}
	return recording, nil
}

// compensateStoredMedia makes the single compensating delete attempt after a
// failed transaction. Orphans are logged, not retried.
func (s *SessionService) compensateStoredMedia(ctx context.Context, ref string) {
	if delErr := s.storage.Delete(ctx, ref); delErr != nil {
		s.log.Error("Orphaned recording left in storage, manual cleanup required",
			zap.String("ref", ref),
			zap.Error(delErr),
		)
	}
}

// recordingFormat derives and validates the audio container from a filename.
func recordingFormat(filename string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	for _, f := range models.RecordingFormats {
		if ext == f {
			return ext, nil
		}
	}
	return "", apperr.Validation("format audio non supporté")
}
