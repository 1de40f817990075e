package models

import (
	"time"

	"github.com/google/uuid"
)

// CareerProfile is a user-authored target-role description. The ingestion
// pipeline only ever reads active profiles; profile CRUD belongs to the web
// application.
type CareerProfile struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Title        string    `gorm:"type:text;not null" json:"title"`
	FunctionArea *string   `gorm:"type:text" json:"function_area,omitempty"`
	LocationPref *string   `gorm:"type:text" json:"location_pref,omitempty"`
	Seniority    *string   `gorm:"type:varchar(50)" json:"seniority,omitempty"`
	WorkMode     *string   `gorm:"type:varchar(50)" json:"work_mode,omitempty"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `gorm:"type:timestamp;default:now()" json:"created_at"`
	UpdatedAt    time.Time `gorm:"type:timestamp;default:now()" json:"updated_at"`

	// Relations
	Skills []ProfileSkill `gorm:"foreignKey:ProfileID" json:"skills,omitempty"`
}

func (CareerProfile) TableName() string {
	return "career_profiles"
}

// ProfileSkill carries the weight a skill contributes to the rule score and
// whether missing it should be flagged.
type ProfileSkill struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ProfileID uuid.UUID `gorm:"type:uuid;not null;index" json:"profile_id"`
	SkillName string    `gorm:"type:text;not null" json:"skill_name"`
	Weight    int       `gorm:"not null" json:"weight"`
	Required  bool      `gorm:"not null;default:false" json:"required"`
}

func (ProfileSkill) TableName() string {
	return "profile_skills"
}
