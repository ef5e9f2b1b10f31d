package repository

import (
	"context"

	"github.com/KRaymonne/pro/internal/apperr"
	"github.com/KRaymonne/pro/internal/database"
	"github.com/KRaymonne/pro/internal/models"
)

// AddFavorite pins a poem for a user. Adding twice is a Conflict.
func AddFavorite(ctx context.Context, userID, poemID uint) (*models.Favorite, error) {
	fav := &models.Favorite{UserID: userID, PoemID: poemID}
	if err := database.DB.WithContext(ctx).Create(fav).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Conflict("cette poésie est déjà dans les favoris")
		}
		return nil, err
	}
	return fav, nil
}

// RemoveFavorite unpins a poem.
func RemoveFavorite(ctx context.Context, userID, poemID uint) error {
	result := database.DB.WithContext(ctx).
		Where("user_id = ? AND poem_id = ?", userID, poemID).
		Delete(&models.Favorite{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("favori non trouvé")
	}
	return nil
}

// ListFavorites returns the user's pinned poems, newest first.
func ListFavorites(ctx context.Context, userID uint) ([]models.Favorite, error) {
	var favorites []models.Favorite
	err := database.DB.WithContext(ctx).
		Preload("Poem").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&favorites).Error
	return favorites, err
}
