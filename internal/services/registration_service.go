package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/campus-hub/campus-events-api/internal/apperr"
	"github.com/campus-hub/campus-events-api/internal/metrics"
	"github.com/campus-hub/campus-events-api/internal/models"
)

// RegistrationService is the capacity-aware registration allocator. Every
// decision runs inside one transaction holding a lock on the event row, so
// two concurrent registrations can never both see the last free slot.
// Counts are always computed from live rows, never cached.
type RegistrationService struct {
	db      *gorm.DB
	metrics *metrics.Metrics
	log     *zap.Logger
	now     func() time.Time
}

func NewRegistrationService(db *gorm.DB, m *metrics.Metrics, log *zap.Logger) *RegistrationService {
	return &RegistrationService{
		db:      db,
		metrics: m,
		log:     log,
		now:     time.Now,
	}
}

// SetClock overrides the service clock. Test use only.
func (s *RegistrationService) SetClock(now func() time.Time) { s.now = now }

// EventStats is a live snapshot of an event's registration state.
type EventStats struct {
	Registered  int64 `json:"registered"`
	Waitlisted  int64 `json:"waitlisted"`
	Cancelled   int64 `json:"cancelled"`
	IsFull      bool  `json:"is_full"`
	CanRegister bool  `json:"can_register"`
}

// Register places the user on the event, either as registered or, when the
// event is at capacity, waitlisted. A previously cancelled registration is
// reactivated in place rather than duplicated; reactivation goes through the
// same capacity check, so it can land on the waitlist if the event filled up
// in the meantime.
func (s *RegistrationService) Register(ctx context.Context, eventID uint, actor models.User) (*models.Registration, error) {
	var registration models.Registration
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event models.Event
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&event, eventID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: event %d", apperr.ErrNotFound, eventID)
		}
		if err != nil {
			return err
		}

		now := s.now()
		if event.Status != models.StatusPublished {
			return fmt.Errorf("%w: event is not open for registration", apperr.ErrValidation)
		}
		if event.InPast(now) {
			return apperr.ErrEventInPast
		}
		if !event.RegistrationOpen(now) {
			return fmt.Errorf("%w: registration window is closed", apperr.ErrValidation)
		}
		if !event.CategoryAllowed(actor.Category) {
			return apperr.ErrCategoryRestricted
		}

		var existing models.Registration
		err = tx.Where("event_id = ? AND user_id = ?", eventID, actor.ID).First(&existing).Error
		switch {
		case err == nil:
			switch existing.Status {
			case models.RegistrationRegistered:
				return apperr.ErrAlreadyRegistered
			case models.RegistrationWaitlisted:
				return apperr.ErrAlreadyWaitlisted
			}
			// Reactivate the cancelled row.
			status, err := s.allocate(tx, &event)
			if err != nil {
				return err
			}
			existing.Status = status
			existing.RegisteredAt = now
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
			registration = existing
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			status, err := s.allocate(tx, &event)
			if err != nil {
				return err
			}
			registration = models.Registration{
				EventID:      eventID,
				UserID:       actor.ID,
				RegisteredAt: now,
				Status:       status,
			}
			return tx.Create(&registration).Error
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Registrations.WithLabelValues(string(registration.Status)).Inc()
	return &registration, nil
}

// allocate decides registered vs waitlisted from the live registered count.
func (s *RegistrationService) allocate(tx *gorm.DB, event *models.Event) (models.RegistrationStatus, error) {
	if event.MaxAttendees == nil {
		return models.RegistrationRegistered, nil
	}
	var count int64
	err := tx.Model(&models.Registration{}).
		Where("event_id = ? AND status = ?", event.ID, models.RegistrationRegistered).
		Count(&count).Error
	if err != nil {
		return "", err
	}
	if count < int64(*event.MaxAttendees) {
		return models.RegistrationRegistered, nil
	}
	return models.RegistrationWaitlisted, nil
}

// Unregister cancels the user's registration. When a registered slot is
// vacated, the earliest-registered waitlisted user is promoted — exactly one
// promotion per vacancy.
func (s *RegistrationService) Unregister(ctx context.Context, eventID, userID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event models.Event
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&event, eventID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: event %d", apperr.ErrNotFound, eventID)
		}
		if err != nil {
			return err
		}

		var registration models.Registration
		err = tx.Where("event_id = ? AND user_id = ? AND status IN ?",
			eventID, userID,
			[]models.RegistrationStatus{models.RegistrationRegistered, models.RegistrationWaitlisted}).
			First(&registration).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrNotRegistered
		}
		if err != nil {
			return err
		}

		freedSlot := registration.Status == models.RegistrationRegistered
		registration.Status = models.RegistrationCancelled
		if err := tx.Save(&registration).Error; err != nil {
			return err
		}

		if freedSlot {
			return s.promoteOne(tx, eventID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.metrics.Registrations.WithLabelValues("cancelled").Inc()
	return nil
}

// promoteOne flips the longest-waiting waitlisted registration to
// registered. FIFO order is by registration timestamp, not by row id.
func (s *RegistrationService) promoteOne(tx *gorm.DB, eventID uint) error {
	var next models.Registration
	err := tx.Where("event_id = ? AND status = ?", eventID, models.RegistrationWaitlisted).
		Order("registered_at ASC, created_at ASC").
		First(&next).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	next.Status = models.RegistrationRegistered
	if err := tx.Save(&next).Error; err != nil {
		return err
	}
	s.log.Info("promoted from waitlist",
		zap.Uint("event_id", eventID), zap.Uint("user_id", next.UserID))
	return nil
}

// Stats returns live counts by status plus the derived flags.
func (s *RegistrationService) Stats(ctx context.Context, eventID uint) (*EventStats, error) {
	var event models.Event
	err := s.db.WithContext(ctx).First(&event, eventID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: event %d", apperr.ErrNotFound, eventID)
	}
	if err != nil {
		return nil, err
	}

	stats := &EventStats{}
	rows := []struct {
		Status models.RegistrationStatus
		N      int64
	}{}
	err = s.db.WithContext(ctx).Model(&models.Registration{}).
		Select("status, COUNT(*) AS n").
		Where("event_id = ?", eventID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		switch r.Status {
		case models.RegistrationRegistered:
			stats.Registered = r.N
		case models.RegistrationWaitlisted:
			stats.Waitlisted = r.N
		case models.RegistrationCancelled:
			stats.Cancelled = r.N
		}
	}

	now := s.now()
	if event.MaxAttendees != nil {
		stats.IsFull = stats.Registered >= int64(*event.MaxAttendees)
	}
	stats.CanRegister = event.Status == models.StatusPublished &&
		event.RegistrationOpen(now) &&
		!stats.IsFull &&
		!event.InPast(now)
	return stats, nil
}

// ListForEvent returns all registrations for an event, for organizers.
func (s *RegistrationService) ListForEvent(ctx context.Context, eventID uint) ([]models.Registration, error) {
	var registrations []models.Registration
	err := s.db.WithContext(ctx).Preload("User").
		Where("event_id = ?", eventID).
		Order("registered_at ASC, created_at ASC").
		Find(&registrations).Error
	return registrations, err
}

// ListForUser returns the user's registrations with events preloaded.
func (s *RegistrationService) ListForUser(ctx context.Context, userID uint) ([]models.Registration, error) {
	var registrations []models.Registration
	err := s.db.WithContext(ctx).Preload("Event").Preload("Event.Location").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&registrations).Error
	return registrations, err
}
