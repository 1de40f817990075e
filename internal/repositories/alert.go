package repositories

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wolram/jobapp/internal/models"
)

type AlertRepository interface {
	Create(alert *models.Alert) error
	FindByUser(userID uuid.UUID) ([]models.Alert, error)
	FindDue(cutoff time.Time) ([]models.Alert, error)
	MarkSent(id uuid.UUID, sentAt time.Time) error
}

type alertRepository struct {
	db *gorm.DB
}

func NewAlertRepository(db *gorm.DB) AlertRepository {
	return &alertRepository{db: db}
}

func (r *alertRepository) Create(alert *models.Alert) error {
	if err := r.db.Create(alert).Error; err != nil {
		return fmt.Errorf("failed to create alert: %w", err)
	}
	return nil
}

func (r *alertRepository) FindByUser(userID uuid.UUID) ([]models.Alert, error) {
	var alerts []models.Alert
	err := r.db.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&alerts).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find alerts: %w", err)
	}

	return alerts, nil
}

// FindDue returns alerts that have never been sent or were last sent before
// the cutoff.
func (r *alertRepository) FindDue(cutoff time.Time) ([]models.Alert, error) {
	var alerts []models.Alert
	err := r.db.
		Where("last_sent_at IS NULL OR last_sent_at < ?", cutoff).
		Find(&alerts).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find due alerts: %w", err)
	}

	return alerts, nil
}

func (r *alertRepository) MarkSent(id uuid.UUID, sentAt time.Time) error {
	err := r.db.Model(&models.Alert{}).
		Where("id = ?", id).
		Update("last_sent_at", sentAt).Error

	if err != nil {
		return fmt.Errorf("failed to mark alert sent: %w", err)
	}

	return nil
}
