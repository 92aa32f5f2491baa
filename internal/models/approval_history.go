package models

import "time"

type ApprovalAction string

const (
	ActionSubmitted         ApprovalAction = "submitted"
	ActionApproved          ApprovalAction = "approved"
	ActionRevisionRequested ApprovalAction = "revision_requested"
)

// EventApprovalHistory is an append-only audit trail of approval-workflow
// transitions. Rows are never updated or deleted, so there is no gorm.Model
// here: no UpdatedAt, no soft delete.
type EventApprovalHistory struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	EventID       uint           `gorm:"index" json:"event_id"`
	Action        ApprovalAction `gorm:"size:32" json:"action"`
	PerformedByID uint           `json:"performed_by_id"`
	// PerformerName is captured at write time on purpose: the audit record
	// must keep showing the name the actor had when they acted, even if the
	// account is later renamed.
	PerformerName string      `json:"performer_name"`
	Comments      string      `json:"comments"`
	StatusBefore  EventStatus `gorm:"size:32" json:"status_before"`
	StatusAfter   EventStatus `gorm:"size:32" json:"status_after"`
	CreatedAt     time.Time   `json:"created_at"`
}
