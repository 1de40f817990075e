package models

import (
	"time"

	"github.com/google/uuid"
)

type OpportunitySource string

const (
	SourceLinkedIn OpportunitySource = "linkedin"
	SourceGupy     OpportunitySource = "gupy"
)

// ValidSource reports whether s is one of the accepted listing sources.
func ValidSource(s string) bool {
	switch OpportunitySource(s) {
	case SourceLinkedIn, SourceGupy:
		return true
	}
	return false
}

// Opportunity is a deduplicated job listing. Identity is the dedupe key:
// re-ingesting the same listing updates the mutable fields but never the
// key, the source, or captured_at.
type Opportunity struct {
	ID             uuid.UUID         `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	DedupeKey      string            `gorm:"type:varchar(64);uniqueIndex;not null" json:"-"`
	Source         OpportunitySource `gorm:"type:varchar(20);not null" json:"source"`
	ExternalID     *string           `gorm:"type:text" json:"external_id,omitempty"`
	URL            string            `gorm:"type:text;not null" json:"url"`
	Title          string            `gorm:"type:text;not null" json:"title"`
	Company        string            `gorm:"type:text;not null" json:"company"`
	Location       *string           `gorm:"type:text" json:"location,omitempty"`
	EmploymentType *string           `gorm:"type:text" json:"employment_type,omitempty"`
	DescriptionRaw *string           `gorm:"type:text" json:"description_raw,omitempty"`
	Language       *string           `gorm:"type:varchar(10)" json:"language,omitempty"`
	PostedAt       *time.Time        `gorm:"type:timestamp" json:"posted_at,omitempty"`
	CapturedAt     time.Time         `gorm:"type:timestamp;not null" json:"captured_at"`
	CreatedAt      time.Time         `gorm:"type:timestamp;default:now()" json:"created_at"`
	UpdatedAt      time.Time         `gorm:"type:timestamp;default:now()" json:"updated_at"`

	// Relations
	Skills []OpportunitySkill `gorm:"foreignKey:OpportunityID" json:"skills,omitempty"`
}

func (Opportunity) TableName() string {
	return "opportunities"
}

// OpportunitySkill is one extracted skill signal. Skills are written once,
// when the opportunity is first created.
type OpportunitySkill struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	OpportunityID uuid.UUID `gorm:"type:uuid;not null;index" json:"opportunity_id"`
	SkillName     string    `gorm:"type:text;not null" json:"skill_name"`
	Confidence    float64   `gorm:"type:decimal(3,2);not null" json:"confidence"`
	CreatedAt     time.Time `gorm:"type:timestamp;default:now()" json:"created_at"`
}

func (OpportunitySkill) TableName() string {
	return "opportunity_skills"
}
