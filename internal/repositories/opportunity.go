package repositories

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wolram/jobapp/internal/models"
)

type OpportunityRepository interface {
	CreateIfAbsent(opp *models.Opportunity) (bool, error)
	FindByDedupeKey(key string) (*models.Opportunity, error)
	FindByID(id uuid.UUID) (*models.Opportunity, error)
	ApplyPatch(id uuid.UUID, patch *OpportunityPatch) error
	CreateSkills(skills []models.OpportunitySkill) error
	FindSkills(opportunityID uuid.UUID) ([]models.OpportunitySkill, error)
}

// OpportunityPatch lists the mutable fields a re-ingestion may update.
// Identity fields (dedupe key, source, captured_at) are deliberately absent.
type OpportunityPatch struct {
	Title          string
	Company        string
	Location       *string
	EmploymentType *string
	DescriptionRaw *string
}

type opportunityRepository struct {
	db *gorm.DB
}

func NewOpportunityRepository(db *gorm.DB) OpportunityRepository {
	return &opportunityRepository{db: db}
}

// CreateIfAbsent inserts the opportunity unless its dedupe key already
// exists. The uniqueness constraint resolves concurrent ingests of the same
// listing: exactly one row is ever created per key. Returns whether this
// call created the row.
func (r *opportunityRepository) CreateIfAbsent(opp *models.Opportunity) (bool, error) {
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "dedupe_key"}},
		DoNothing: true,
	}).Create(opp)

	if result.Error != nil {
		return false, fmt.Errorf("failed to create opportunity: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

func (r *opportunityRepository) FindByDedupeKey(key string) (*models.Opportunity, error) {
	var opp models.Opportunity
	if err := r.db.Where("dedupe_key = ?", key).First(&opp).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("opportunity not found")
		}
		return nil, fmt.Errorf("failed to find opportunity: %w", err)
	}
	return &opp, nil
}

func (r *opportunityRepository) FindByID(id uuid.UUID) (*models.Opportunity, error) {
	var opp models.Opportunity
	if err := r.db.Preload("Skills").Where("id = ?", id).First(&opp).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("opportunity not found")
		}
		return nil, fmt.Errorf("failed to find opportunity: %w", err)
	}
	return &opp, nil
}

// ApplyPatch updates the mutable fields only. Optional fields are written
// field-by-field when present in the patch, so a sparse re-ingestion does
// not blank out earlier data.
func (r *opportunityRepository) ApplyPatch(id uuid.UUID, patch *OpportunityPatch) error {
	updates := map[string]interface{}{
		"title":      patch.Title,
		"company":    patch.Company,
		"updated_at": time.Now(),
	}

	if patch.Location != nil {
		updates["location"] = *patch.Location
	}
	if patch.EmploymentType != nil {
		updates["employment_type"] = *patch.EmploymentType
	}
	if patch.DescriptionRaw != nil {
		updates["description_raw"] = *patch.DescriptionRaw
	}

	result := r.db.Model(&models.Opportunity{}).
		Where("id = ?", id).
		Updates(updates)

	if result.Error != nil {
		return fmt.Errorf("failed to update opportunity: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("opportunity not found")
	}

	return nil
}

func (r *opportunityRepository) CreateSkills(skills []models.OpportunitySkill) error {
	if len(skills) == 0 {
		return nil
	}
	if err := r.db.Create(&skills).Error; err != nil {
		return fmt.Errorf("failed to create opportunity skills: %w", err)
	}
	return nil
}

func (r *opportunityRepository) FindSkills(opportunityID uuid.UUID) ([]models.OpportunitySkill, error) {
	var skills []models.OpportunitySkill
	if err := r.db.Where("opportunity_id = ?", opportunityID).Find(&skills).Error; err != nil {
		return nil, fmt.Errorf("failed to find opportunity skills: %w", err)
	}
	return skills, nil
}
