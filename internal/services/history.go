package services

import (
	"gorm.io/gorm"

	"github.com/campus-hub/campus-events-api/internal/models"
)

// HistoryRecorder appends an approval-workflow audit record. Record is
// called with the transaction that carries the status change itself, so a
// failed history write rolls the transition back with it.
type HistoryRecorder interface {
	Record(tx *gorm.DB, entry *models.EventApprovalHistory) error
	ListForEvent(eventID uint) ([]models.EventApprovalHistory, error)
}

type GormHistory struct {
	db *gorm.DB
}

func NewGormHistory(db *gorm.DB) *GormHistory {
	return &GormHistory{db: db}
}

func (h *GormHistory) Record(tx *gorm.DB, entry *models.EventApprovalHistory) error {
	return tx.Create(entry).Error
}

func (h *GormHistory) ListForEvent(eventID uint) ([]models.EventApprovalHistory, error) {
	var entries []models.EventApprovalHistory
	err := h.db.Where("event_id = ?", eventID).Order("created_at ASC, id ASC").Find(&entries).Error
	return entries, err
}

// NoopHistory satisfies HistoryRecorder where auditing is genuinely absent
// (e.g. throwaway tooling), so call sites never need presence checks.
type NoopHistory struct{}

func (NoopHistory) Record(*gorm.DB, *models.EventApprovalHistory) error { return nil }

func (NoopHistory) ListForEvent(uint) ([]models.EventApprovalHistory, error) { return nil, nil }
