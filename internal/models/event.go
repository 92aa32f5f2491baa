package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type EventStatus string

const (
	StatusDraft             EventStatus = "draft"
	StatusPendingApproval   EventStatus = "pending_approval"
	StatusRevisionRequested EventStatus = "revision_requested"
	StatusPublished         EventStatus = "published"
	StatusCancelled         EventStatus = "cancelled"
	StatusCompleted         EventStatus = "completed"
)

// Terminal reports whether no further transitions are allowed from s.
func (s EventStatus) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

type Event struct {
	gorm.Model
	Title       string `json:"title"`
	Description string `json:"description"`
	// StartsAt is the event date and time.
	StartsAt             time.Time `gorm:"index" json:"starts_at"`
	RegistrationOpensAt  time.Time `json:"registration_opens_at"`
	RegistrationClosesAt time.Time `gorm:"index" json:"registration_closes_at"`
	LocationID           uint      `json:"location_id"`
	Location             Location  `json:"location"`
	// MaxAttendees is nil for unlimited capacity.
	MaxAttendees *int        `json:"max_attendees"`
	CreatedByID  uint        `json:"created_by_id"`
	CreatedBy    User        `gorm:"foreignKey:CreatedByID" json:"created_by"`
	Status       EventStatus `gorm:"size:32;index;default:draft" json:"status"`
	ApprovedByID *uint       `json:"approved_by_id"`
	ApprovedAt   *time.Time  `json:"approved_at"`
	// RevisionComments holds the approver's feedback from the most recent
	// request-revision action.
	RevisionComments string `json:"revision_comments"`
	// AllowedCategories is a comma-separated allow-list of user categories.
	// Empty means every category may register.
	AllowedCategories string `json:"allowed_categories"`
}

func (e *Event) InPast(now time.Time) bool {
	return !e.StartsAt.After(now)
}

func (e *Event) RegistrationOpen(now time.Time) bool {
	return !now.Before(e.RegistrationOpensAt) && now.Before(e.RegistrationClosesAt)
}

// CategoryAllowed reports whether a user with the given category may
// register. An empty allow-list admits everyone.
func (e *Event) CategoryAllowed(category string) bool {
	allowed := strings.TrimSpace(e.AllowedCategories)
	if allowed == "" {
		return true
	}
	for _, c := range strings.Split(allowed, ",") {
		if strings.EqualFold(strings.TrimSpace(c), strings.TrimSpace(category)) {
			return true
		}
	}
	return false
}
