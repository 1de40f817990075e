package models

import (
	"time"

	"github.com/google/uuid"
)

type AlertChannel string

const (
	AlertChannelInApp AlertChannel = "in_app"
	AlertChannelEmail AlertChannel = "email"
)

func ValidAlertChannel(s string) bool {
	switch AlertChannel(s) {
	case AlertChannelInApp, AlertChannelEmail:
		return true
	}
	return false
}

// Alert configures the daily digest for a user: any score at or above the
// threshold with status "new" is eligible for the next digest.
type Alert struct {
	ID         uuid.UUID    `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID     uuid.UUID    `gorm:"type:uuid;not null;index" json:"user_id"`
	Channel    AlertChannel `gorm:"type:varchar(20);not null" json:"channel"`
	Frequency  string       `gorm:"type:varchar(20);not null;default:'daily'" json:"frequency"`
	Threshold  int          `gorm:"not null;default:50" json:"threshold"`
	LastSentAt *time.Time   `gorm:"type:timestamp" json:"last_sent_at,omitempty"`
	CreatedAt  time.Time    `gorm:"type:timestamp;default:now()" json:"created_at"`
}

func (Alert) TableName() string {
	return "alerts"
}

// AlertDigest is the payload handed to a digest notifier: the best fresh
// matches for one profile of one user.
type AlertDigest struct {
	UserID        uuid.UUID           `json:"user_id"`
	ProfileTitle  string              `json:"profile_title"`
	Opportunities []DigestOpportunity `json:"opportunities"`
	GeneratedAt   time.Time           `json:"generated_at"`
}

type DigestOpportunity struct {
	Title      string       `json:"title"`
	Company    string       `json:"company"`
	URL        string       `json:"url"`
	TotalScore int          `json:"total_score"`
	Reasons    ScoreReasons `json:"reasons"`
}
