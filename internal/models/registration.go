package models

import (
	"time"

	"gorm.io/gorm"
)

type RegistrationStatus string

const (
	RegistrationRegistered RegistrationStatus = "registered"
	RegistrationWaitlisted RegistrationStatus = "waitlisted"
	RegistrationCancelled  RegistrationStatus = "cancelled"
)

// Registration is a user's registration for an event. There is at most one
// row per (event, user) pair: cancelling keeps the row around so a later
// re-registration reactivates it instead of inserting a duplicate.
type Registration struct {
	gorm.Model
	EventID uint  `gorm:"uniqueIndex:idx_event_user" json:"event_id"`
	Event   Event `json:"-"`
	UserID  uint  `gorm:"uniqueIndex:idx_event_user" json:"user_id"`
	User    User  `gorm:"foreignKey:UserID" json:"user"`
	// RegisteredAt orders waitlist promotion (FIFO). It is reset when a
	// cancelled registration is reactivated.
	RegisteredAt time.Time          `gorm:"index" json:"registered_at"`
	Status       RegistrationStatus `gorm:"size:32;index" json:"status"`
}

func (r *Registration) Active() bool {
	return r.Status == RegistrationRegistered || r.Status == RegistrationWaitlisted
}
