package repositories

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wolram/jobapp/internal/models"
)

type ScoreRepository interface {
	Upsert(score *models.ProfileOpportunityScore) error
	FindByIDForUser(id, userID uuid.UUID) (*models.ProfileOpportunityScore, error)
	UpdateStatus(id uuid.UUID, status models.ScoreStatus) error
	FindScored(query ScoredQuery) ([]models.ProfileOpportunityScore, error)
	FindRecentMatches(profileID uuid.UUID, threshold int, since time.Time, limit int) ([]models.ProfileOpportunityScore, error)
}

// ScoredQuery filters the scored-opportunity listing.
type ScoredQuery struct {
	ProfileID uuid.UUID
	Status    *models.ScoreStatus
	MinScore  *int
	Limit     int
}

type scoreRepository struct {
	db *gorm.DB
}

func NewScoreRepository(db *gorm.DB) ScoreRepository {
	return &scoreRepository{db: db}
}

// Upsert writes the score for a (profile, opportunity) pair. The uniqueness
// constraint on the pair makes this atomic; on conflict only the recomputed
// fields are overwritten, status stays whatever the user set.
func (r *scoreRepository) Upsert(score *models.ProfileOpportunityScore) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "profile_id"}, {Name: "opportunity_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_score", "rule_score", "semantic_score", "reasons_json", "scored_at",
		}),
	}).Create(score).Error

	if err != nil {
		return fmt.Errorf("failed to upsert score: %w", err)
	}

	return nil
}

// FindByIDForUser loads a score row only if its profile belongs to the user.
func (r *scoreRepository) FindByIDForUser(id, userID uuid.UUID) (*models.ProfileOpportunityScore, error) {
	var score models.ProfileOpportunityScore
	err := r.db.
		Joins("JOIN career_profiles ON career_profiles.id = profile_opportunity_scores.profile_id").
		Where("profile_opportunity_scores.id = ? AND career_profiles.user_id = ?", id, userID).
		First(&score).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("score not found")
		}
		return nil, fmt.Errorf("failed to find score: %w", err)
	}

	return &score, nil
}

func (r *scoreRepository) UpdateStatus(id uuid.UUID, status models.ScoreStatus) error {
	result := r.db.Model(&models.ProfileOpportunityScore{}).
		Where("id = ?", id).
		Update("status", status)

	if result.Error != nil {
		return fmt.Errorf("failed to update score status: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("score not found")
	}

	return nil
}

// FindScored lists score rows for one profile, best matches first.
func (r *scoreRepository) FindScored(query ScoredQuery) ([]models.ProfileOpportunityScore, error) {
	tx := r.db.
		Preload("Opportunity").
		Preload("Opportunity.Skills").
		Where("profile_id = ?", query.ProfileID)

	if query.Status != nil {
		tx = tx.Where("status = ?", *query.Status)
	}
	if query.MinScore != nil {
		tx = tx.Where("total_score >= ?", *query.MinScore)
	}

	var scores []models.ProfileOpportunityScore
	err := tx.
		Order("total_score DESC, scored_at DESC").
		Limit(query.Limit).
		Find(&scores).Error

	if err != nil {
		return nil, fmt.Errorf("failed to list scores: %w", err)
	}

	return scores, nil
}

// FindRecentMatches is the read contract for digest consumers: fresh,
// unreviewed scores at or above the threshold.
func (r *scoreRepository) FindRecentMatches(profileID uuid.UUID, threshold int, since time.Time, limit int) ([]models.ProfileOpportunityScore, error) {
	var scores []models.ProfileOpportunityScore
	err := r.db.
		Preload("Opportunity").
		Where("profile_id = ? AND status = ? AND total_score >= ? AND scored_at >= ?",
			profileID, models.ScoreStatusNew, threshold, since).
		Order("total_score DESC").
		Limit(limit).
		Find(&scores).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find recent matches: %w", err)
	}

	return scores, nil
}
