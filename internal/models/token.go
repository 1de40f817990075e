package models

import (
	"time"

	"github.com/google/uuid"
)

// APIToken is a personal access token used by the collector. Only the
// SHA-256 hash of the token is stored; issuance happens in the web
// application, this service only validates.
type APIToken struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Name       string     `gorm:"type:text;not null" json:"name"`
	TokenHash  string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"-"`
	LastUsedAt *time.Time `gorm:"type:timestamp" json:"last_used_at,omitempty"`
	RevokedAt  *time.Time `gorm:"type:timestamp" json:"revoked_at,omitempty"`
	CreatedAt  time.Time  `gorm:"type:timestamp;default:now()" json:"created_at"`
}

func (APIToken) TableName() string {
	return "api_tokens"
}
