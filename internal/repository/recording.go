package repository

import (
	"context"
	"errors"
	"time"

	"github.com/KRaymonne/pro/internal/apperr"
	"github.com/KRaymonne/pro/internal/database"
	"github.com/KRaymonne/pro/internal/models"

	"gorm.io/gorm"
)

// CreateRecording inserts a recording row. A non-nil tx lets session
// finalization create the recording inside its transaction.
func CreateRecording(ctx context.Context, tx *gorm.DB, rec *models.Recording) error {
	db := tx
	if db == nil {
		db = database.DB
	}
	return db.WithContext(ctx).Create(rec).Error
}

// GetRecordingForUser loads an active recording owned by userID.
func GetRecordingForUser(ctx context.Context, id, userID uint) (*models.Recording, error) {
	var rec models.Recording
	err := database.DB.WithContext(ctx).
		Preload("Poem").
		Where("id = ? AND user_id = ? AND active = ?", id, userID, true).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("enregistrement non trouvé")
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListRecordingsBySession returns a session's active recordings, newest first.
func ListRecordingsBySession(ctx context.Context, sessionID uint) ([]models.Recording, error) {
	var recs []models.Recording
	err := database.DB.WithContext(ctx).
		Preload("Poem").
		Where("session_id = ? AND active = ?", sessionID, true).
		Order("recorded_at DESC").
		Find(&recs).Error
	return recs, err
}

// ListRecordingsByUser returns a page of the user's active recordings.
func ListRecordingsByUser(ctx context.Context, userID uint, page, limit int) ([]models.Recording, int64, error) {
	query := database.DB.WithContext(ctx).Model(&models.Recording{}).
		Where("user_id = ? AND active = ?", userID, true)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recs []models.Recording
	err := query.
		Preload("Poem").
		Order("recorded_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&recs).Error
	return recs, total, err
}

// SaveRecording persists post-hoc corrections (quality, comparison score,
// comment). Core fields stay untouched by callers.
func SaveRecording(ctx context.Context, rec *models.Recording) error {
	return database.DB.WithContext(ctx).Save(rec).Error
}

// DeactivateRecording soft-deletes a recording, keeping the row for history.
func DeactivateRecording(ctx context.Context, id, userID uint) error {
	result := database.DB.WithContext(ctx).Model(&models.Recording{}).
		Where("id = ? AND user_id = ? AND active = ?", id, userID, true).
		Update("active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("enregistrement non trouvé")
	}
	return nil
}

// RecordingsInWindow returns the user's active recordings made within
// [start, end).
func RecordingsInWindow(ctx context.Context, userID uint, start, end time.Time) ([]models.Recording, error) {
	var recs []models.Recording
	err := database.DB.WithContext(ctx).
		Where("user_id = ? AND active = ? AND recorded_at >= ? AND recorded_at < ?", userID, true, start, end).
		Find(&recs).Error
	return recs, err
}

// RecordingsForUser returns the user's full active recording history,
// newest first, with poems joined for export.
func RecordingsForUser(ctx context.Context, userID uint) ([]models.Recording, error) {
	var recs []models.Recording
	err := database.DB.WithContext(ctx).
		Preload("Poem").
		Where("user_id = ? AND active = ?", userID, true).
		Order("recorded_at DESC").
		Find(&recs).Error
	return recs, err
}
