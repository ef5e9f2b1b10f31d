package repository

import (
	"context"
	"errors"
	"time"

	"github.com/KRaymonne/pro/internal/apperr"
	"github.com/KRaymonne/pro/internal/database"
	"github.com/KRaymonne/pro/internal/models"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// isUniqueViolation detects duplicate-key failures from either the gorm
// translator or the raw postgres driver.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// FindActiveSession returns the en-cours session for (user, poem), if any.
func FindActiveSession(ctx context.Context, userID, poemID uint) (*models.ReadingSession, error) {
	var session models.ReadingSession
	err := database.DB.WithContext(ctx).
		Preload("Poem").
		Where("user_id = ? AND poem_id = ? AND status = ?", userID, poemID, models.StatusInProgress).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// GetOrCreateSession resumes the existing en-cours session for (user, poem) or
// inserts a new one. The returned bool is true when an existing session was
// resumed. The check-then-insert is racy on its own; the partial unique index
// on (user_id, poem_id) WHERE status='en-cours' serializes concurrent starts,
// and the loser of the race re-reads the winner's row.
func GetOrCreateSession(ctx context.Context, userID, poemID uint, startedAt time.Time) (*models.ReadingSession, bool, error) {
	existing, err := FindActiveSession(ctx, userID, poemID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, true, nil
	}

	var attempt int64
	if err := database.DB.WithContext(ctx).Model(&models.ReadingSession{}).
		Where("user_id = ? AND poem_id = ?", userID, poemID).
		Count(&attempt).Error; err != nil {
		return nil, false, err
	}

	session := &models.ReadingSession{
		UserID:    userID,
		PoemID:    poemID,
		StartedAt: startedAt,
		Status:    models.StatusInProgress,
		Attempt:   int(attempt) + 1,
	}
	if err := database.DB.WithContext(ctx).Create(session).Error; err != nil {
		if isUniqueViolation(err) {
			// Lost the race: another request created the session first.
			winner, findErr := FindActiveSession(ctx, userID, poemID)
			if findErr != nil {
				return nil, false, findErr
			}
			if winner != nil {
				return winner, true, nil
			}
			return nil, false, apperr.Conflict("une lecture est déjà en cours pour cette poésie")
		}
		return nil, false, err
	}

	if err := database.DB.WithContext(ctx).Preload("Poem").First(session, session.ID).Error; err != nil {
		return nil, false, err
	}
	return session, false, nil
}

// GetSessionForUser loads a session owned by userID.
func GetSessionForUser(ctx context.Context, id, userID uint) (*models.ReadingSession, error) {
	var session models.ReadingSession
	err := database.DB.WithContext(ctx).
		Preload("Poem").
		Preload("Recording").
		Where("id = ? AND user_id = ?", id, userID).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("lecture non trouvée")
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// SaveSession persists in-place mutations of a session row.
func SaveSession(ctx context.Context, tx *gorm.DB, session *models.ReadingSession) error {
	db := tx
	if db == nil {
		db = database.DB
	}
	return db.WithContext(ctx).Save(session).Error
}

// ListSessions returns a page of the user's session history, newest first.
func ListSessions(ctx context.Context, userID uint, status string, page, limit int) ([]models.ReadingSession, int64, error) {
	query := database.DB.WithContext(ctx).Model(&models.ReadingSession{}).Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var sessions []models.ReadingSession
	err := query.
		Preload("Poem").
		Order("started_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&sessions).Error
	return sessions, total, err
}

// SessionsInWindow returns all sessions of the given users that started
// within [start, end), with their poems preloaded for level/theme joins.
func SessionsInWindow(ctx context.Context, userIDs []uint, start, end time.Time) ([]models.ReadingSession, error) {
	var sessions []models.ReadingSession
	if len(userIDs) == 0 {
		return sessions, nil
	}
	err := database.DB.WithContext(ctx).
		Preload("Poem").
		Where("user_id IN ? AND started_at >= ? AND started_at < ?", userIDs, start, end).
		Order("started_at").
		Find(&sessions).Error
	return sessions, err
}

// SessionsForUser returns the user's full session history, newest first.
func SessionsForUser(ctx context.Context, userID uint) ([]models.ReadingSession, error) {
	var sessions []models.ReadingSession
	err := database.DB.WithContext(ctx).
		Preload("Poem").
		Where("user_id = ?", userID).
		Order("started_at DESC").
		Find(&sessions).Error
	return sessions, err
}

// ProgressForPoem returns the user's attempts at one poem in chronological order.
func ProgressForPoem(ctx context.Context, userID, poemID uint) ([]models.ReadingSession, error) {
	var sessions []models.ReadingSession
	err := database.DB.WithContext(ctx).
		Where("user_id = ? AND poem_id = ?", userID, poemID).
		Order("started_at").
		Find(&sessions).Error
	return sessions, err
}
