package repositories

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wolram/jobapp/internal/models"
)

type TokenRepository interface {
	FindActiveByHash(hash string) (*models.APIToken, error)
	TouchLastUsed(id uuid.UUID) error
}

type tokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

// FindActiveByHash implements TokenRepository. Revoked tokens never match.
func (r *tokenRepository) FindActiveByHash(hash string) (*models.APIToken, error) {
	var token models.APIToken
	err := r.db.
		Where("token_hash = ? AND revoked_at IS NULL", hash).
		First(&token).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("token not found")
		}
		return nil, fmt.Errorf("failed to find token: %w", err)
	}

	return &token, nil
}

// TouchLastUsed implements TokenRepository.
func (r *tokenRepository) TouchLastUsed(id uuid.UUID) error {
	err := r.db.Model(&models.APIToken{}).
		Where("id = ?", id).
		Update("last_used_at", time.Now()).Error

	if err != nil {
		return fmt.Errorf("failed to touch token: %w", err)
	}

	return nil
}
