package models

import (
	"time"

	"gorm.io/gorm"
)

// APIKey authenticates headless campus integrations (room displays,
// calendar feeds, chat bots) on the X-API-KEY header. Keys act with their
// owner's role and may carry an expiry.
type APIKey struct {
	gorm.Model
	UserID     uint       `json:"user_id"`
	User       User       `json:"user"`
	Key        string     `json:"key" gorm:"uniqueIndex"`
	Name       string     `json:"name"`
	ExpiresAt  *time.Time `json:"expires_at"`
	LastUsedAt *time.Time `json:"last_used_at"`
}
