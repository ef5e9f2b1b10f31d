package repository

import (
	"context"
	"errors"

	"github.com/KRaymonne/pro/internal/apperr"
	"github.com/KRaymonne/pro/internal/database"
	"github.com/KRaymonne/pro/internal/models"

	"gorm.io/gorm"
)

func CreateUser(ctx context.Context, user *models.User) error {
	err := database.DB.WithContext(ctx).Create(user).Error
	if isUniqueViolation(err) {
		return apperr.Conflict("un compte existe déjà avec cet email")
	}
	return err
}

func GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	result := database.DB.WithContext(ctx).First(&user, "email = ?", email)
	return &user, result.Error
}

func GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := database.DB.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("utilisateur non trouvé")
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateVoicePreference stores the narration voice the user wants to hear.
func UpdateVoicePreference(ctx context.Context, userID uint, voice string) error {
	return database.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("voice_preference", voice).Error
}

// FindStudents resolves the classroom roster: every student matching the
// class and institution filters. Empty filters match everyone.
func FindStudents(ctx context.Context, class, institution string) ([]models.User, error) {
	query := database.DB.WithContext(ctx).Where("role = ?", models.RoleStudent)
	if class != "" {
		query = query.Where("class = ?", class)
	}
	if institution != "" {
		query = query.Where("institution = ?", institution)
	}

	var students []models.User
	err := query.Order("id").Find(&students).Error
	return students, err
}
