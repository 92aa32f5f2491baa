package models

import "time"

type ReminderType string

const (
	ReminderEventAttendance      ReminderType = "event_attendance"
	ReminderRegistrationDeadline ReminderType = "registration_deadline"
)

// ReminderLog records that a reminder was sent. A row with a nil UserID
// means the reminder went out as one batch to all eligible recipients; the
// unique index over (event, type) is what makes the periodic scan
// at-most-once per event and reminder type.
type ReminderLog struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	EventID      uint         `gorm:"uniqueIndex:idx_event_reminder" json:"event_id"`
	UserID       *uint        `json:"user_id"`
	ReminderType ReminderType `gorm:"size:32;uniqueIndex:idx_event_reminder" json:"reminder_type"`
	SentAt       time.Time    `json:"sent_at"`
	CreatedAt    time.Time    `json:"created_at"`
}
