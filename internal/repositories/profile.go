package repositories

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wolram/jobapp/internal/models"
)

type ProfileRepository interface {
	FindActiveByUser(userID uuid.UUID) ([]models.CareerProfile, error)
	FindByIDForUser(id, userID uuid.UUID) (*models.CareerProfile, error)
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

// FindActiveByUser implements ProfileRepository.
func (r *profileRepository) FindActiveByUser(userID uuid.UUID) ([]models.CareerProfile, error) {
	var profiles []models.CareerProfile
	err := r.db.
		Preload("Skills").
		Where("user_id = ? AND is_active = true", userID).
		Find(&profiles).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find active profiles: %w", err)
	}

	return profiles, nil
}

// FindByIDForUser implements ProfileRepository.
func (r *profileRepository) FindByIDForUser(id, userID uuid.UUID) (*models.CareerProfile, error) {
	var profile models.CareerProfile
	err := r.db.
		Where("id = ? AND user_id = ?", id, userID).
		First(&profile).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("profile not found")
		}
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}

	return &profile, nil
}
