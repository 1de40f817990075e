package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type ScoreStatus string

const (
	ScoreStatusNew       ScoreStatus = "new"
	ScoreStatusSaved     ScoreStatus = "saved"
	ScoreStatusDismissed ScoreStatus = "dismissed"
	ScoreStatusApplied   ScoreStatus = "applied"
)

// ValidScoreStatus reports whether s is a status a user may set.
// "new" is the pipeline default and never set by hand.
func ValidScoreStatus(s string) bool {
	switch ScoreStatus(s) {
	case ScoreStatusSaved, ScoreStatusDismissed, ScoreStatusApplied:
		return true
	}
	return false
}

// ScoreReason is one itemized explanation behind a score.
type ScoreReason struct {
	Factor string `json:"factor"`
	Score  int    `json:"score"`
	Detail string `json:"detail"`
}

// ScoreReasons is stored as a JSONB column.
type ScoreReasons []ScoreReason

func (r ScoreReasons) Value() (driver.Value, error) {
	if r == nil {
		r = ScoreReasons{}
	}
	return json.Marshal(r)
}

func (r *ScoreReasons) Scan(value interface{}) error {
	if value == nil {
		*r = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for ScoreReasons: %T", value)
	}

	return json.Unmarshal(data, r)
}

// ProfileOpportunityScore holds the match result for one (profile,
// opportunity) pair. Score fields are overwritten on every re-score; status
// is owned by user action and never reset by the pipeline.
type ProfileOpportunityScore struct {
	ID            uuid.UUID    `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ProfileID     uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_profile_opportunity" json:"profile_id"`
	OpportunityID uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_profile_opportunity" json:"opportunity_id"`
	TotalScore    int          `gorm:"not null" json:"total_score"`
	RuleScore     int          `gorm:"not null" json:"rule_score"`
	SemanticScore int          `gorm:"not null" json:"semantic_score"`
	ReasonsJSON   ScoreReasons `gorm:"type:jsonb;column:reasons_json" json:"reasons"`
	Status        ScoreStatus  `gorm:"type:varchar(20);not null;default:'new'" json:"status"`
	ScoredAt      time.Time    `gorm:"type:timestamp;not null" json:"scored_at"`
	CreatedAt     time.Time    `gorm:"type:timestamp;default:now()" json:"created_at"`

	// Relations
	Opportunity Opportunity   `gorm:"foreignKey:OpportunityID" json:"-"`
	Profile     CareerProfile `gorm:"foreignKey:ProfileID" json:"-"`
}

func (ProfileOpportunityScore) TableName() string {
	return "profile_opportunity_scores"
}
