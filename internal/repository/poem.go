package repository

import (
	"context"
	"errors"

	"github.com/KRaymonne/pro/internal/apperr"
	"github.com/KRaymonne/pro/internal/database"
	"github.com/KRaymonne/pro/internal/models"

	"gorm.io/gorm"
)

// PoemFilter narrows the library listing.
type PoemFilter struct {
	Level      string
	Theme      string
	Difficulty string
	Search     string
	Page       int
	Limit      int
}

// GetActivePoem loads a poem; missing or deactivated rows are NotFound.
func GetActivePoem(ctx context.Context, id uint) (*models.Poem, error) {
	var poem models.Poem
	err := database.DB.WithContext(ctx).
		Where("id = ? AND active = ?", id, true).
		First(&poem).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("poésie non trouvée")
	}
	if err != nil {
		return nil, err
	}
	return &poem, nil
}

// ListPoems returns a filtered page of the active library, newest first.
func ListPoems(ctx context.Context, filter PoemFilter) ([]models.Poem, int64, error) {
	query := database.DB.WithContext(ctx).Model(&models.Poem{}).Where("active = ?", true)
	if filter.Level != "" {
		query = query.Where("level = ?", filter.Level)
	}
	if filter.Theme != "" {
		query = query.Where("theme = ?", filter.Theme)
	}
	if filter.Difficulty != "" {
		query = query.Where("difficulty = ?", filter.Difficulty)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("title LIKE ? OR author LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var poems []models.Poem
	err := query.
		Order("added_at DESC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&poems).Error
	return poems, total, err
}

// CreatePoem inserts a new library entry.
func CreatePoem(ctx context.Context, poem *models.Poem) error {
	return database.DB.WithContext(ctx).Create(poem).Error
}

// SavePoem persists edits to an existing entry.
func SavePoem(ctx context.Context, poem *models.Poem) error {
	return database.DB.WithContext(ctx).Save(poem).Error
}

// DeactivatePoem soft-deletes a poem so session history keeps its join target.
func DeactivatePoem(ctx context.Context, id uint) error {
	result := database.DB.WithContext(ctx).Model(&models.Poem{}).
		Where("id = ? AND active = ?", id, true).
		Update("active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("poésie non trouvée")
	}
	return nil
}

// CountPoems counts every library row, active or not. Used by the seeder to
// decide whether the library needs populating.
func CountPoems(ctx context.Context) (int64, error) {
	var count int64
	err := database.DB.WithContext(ctx).Model(&models.Poem{}).Count(&count).Error
	return count, err
}
