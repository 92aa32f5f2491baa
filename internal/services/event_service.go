package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/campus-hub/campus-events-api/internal/apperr"
	"github.com/campus-hub/campus-events-api/internal/metrics"
	"github.com/campus-hub/campus-events-api/internal/models"
	"github.com/campus-hub/campus-events-api/internal/notifier"
)

// EventService owns all writes to Event.status. Transitions are validated
// against the persisted state inside one transaction, and every successful
// workflow transition appends exactly one approval-history record in the
// same transaction.
type EventService struct {
	db        *gorm.DB
	history   HistoryRecorder
	notifier  notifier.Notifier
	announcer notifier.Announcer
	metrics   *metrics.Metrics
	log       *zap.Logger

	// now is swappable so tests can pin the clock.
	now func() time.Time
}

func NewEventService(db *gorm.DB, history HistoryRecorder, n notifier.Notifier, announcer notifier.Announcer, m *metrics.Metrics, log *zap.Logger) *EventService {
	return &EventService{
		db:        db,
		history:   history,
		notifier:  n,
		announcer: announcer,
		metrics:   m,
		log:       log,
		now:       time.Now,
	}
}

// SetClock overrides the service clock. Test use only.
func (s *EventService) SetClock(now func() time.Time) { s.now = now }

type EventInput struct {
	Title                string
	Description          string
	StartsAt             time.Time
	RegistrationOpensAt  time.Time
	RegistrationClosesAt time.Time
	LocationID           uint
	MaxAttendees         *int
	AllowedCategories    string
	// Publish creates the event directly in published status; only
	// moderator roles may do that.
	Publish bool
}

func (s *EventService) validateInput(in EventInput, now time.Time) error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", apperr.ErrValidation)
	}
	if in.StartsAt.IsZero() || in.RegistrationOpensAt.IsZero() || in.RegistrationClosesAt.IsZero() {
		return fmt.Errorf("%w: event and registration times are required", apperr.ErrValidation)
	}
	if !in.StartsAt.After(now) {
		return fmt.Errorf("%w: event date must be in the future", apperr.ErrValidation)
	}
	if !in.RegistrationOpensAt.Before(in.RegistrationClosesAt) {
		return fmt.Errorf("%w: registration must open before it closes", apperr.ErrValidation)
	}
	if in.RegistrationClosesAt.After(in.StartsAt) {
		return fmt.Errorf("%w: registration cannot close after the event starts", apperr.ErrValidation)
	}
	if in.MaxAttendees != nil && *in.MaxAttendees <= 0 {
		return fmt.Errorf("%w: max attendees must be positive", apperr.ErrValidation)
	}
	return nil
}

// Create stores a new event in draft status, or directly published when the
// actor holds a moderator role and asked for it.
func (s *EventService) Create(ctx context.Context, actor models.User, in EventInput) (*models.Event, error) {
	now := s.now()
	if err := s.validateInput(in, now); err != nil {
		return nil, err
	}

	var location models.Location
	if err := s.db.WithContext(ctx).First(&location, in.LocationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: location %d", apperr.ErrNotFound, in.LocationID)
		}
		return nil, err
	}
	if !location.Active {
		return nil, fmt.Errorf("%w: location %q is not active", apperr.ErrValidation, location.Name)
	}

	status := models.StatusDraft
	if in.Publish {
		if !actor.Role.CanModerate() {
			return nil, fmt.Errorf("%w: only approvers and admins may publish directly", apperr.ErrPermissionDenied)
		}
		status = models.StatusPublished
	}

	event := models.Event{
		Title:                in.Title,
		Description:          in.Description,
		StartsAt:             in.StartsAt,
		RegistrationOpensAt:  in.RegistrationOpensAt,
		RegistrationClosesAt: in.RegistrationClosesAt,
		LocationID:           in.LocationID,
		MaxAttendees:         in.MaxAttendees,
		AllowedCategories:    in.AllowedCategories,
		CreatedByID:          actor.ID,
		Status:               status,
	}
	if err := s.db.WithContext(ctx).Create(&event).Error; err != nil {
		return nil, err
	}

	if status == models.StatusPublished {
		s.announcePublished(&event)
	}
	return &event, nil
}

// Update modifies an event that has not entered the approval pipeline yet.
func (s *EventService) Update(ctx context.Context, eventID uint, actor models.User, in EventInput) (*models.Event, error) {
	if err := s.validateInput(in, s.now()); err != nil {
		return nil, err
	}

	var event models.Event
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.lockEvent(tx, eventID, &event); err != nil {
			return err
		}
		if event.Status != models.StatusDraft && event.Status != models.StatusRevisionRequested {
			return fmt.Errorf("%w: cannot edit event in status %q", apperr.ErrInvalidTransition, event.Status)
		}
		if event.CreatedByID != actor.ID && !actor.Role.IsAdmin() {
			return fmt.Errorf("%w: only the creator or an admin may edit this event", apperr.ErrPermissionDenied)
		}

		event.Title = in.Title
		event.Description = in.Description
		event.StartsAt = in.StartsAt
		event.RegistrationOpensAt = in.RegistrationOpensAt
		event.RegistrationClosesAt = in.RegistrationClosesAt
		event.LocationID = in.LocationID
		event.MaxAttendees = in.MaxAttendees
		event.AllowedCategories = in.AllowedCategories
		return tx.Save(&event).Error
	})
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// Get returns one event with its location and creator preloaded.
func (s *EventService) Get(ctx context.Context, eventID uint) (*models.Event, error) {
	var event models.Event
	err := s.db.WithContext(ctx).Preload("Location").Preload("CreatedBy").First(&event, eventID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: event %d", apperr.ErrNotFound, eventID)
		}
		return nil, err
	}
	return &event, nil
}

// List returns the events visible to the actor: published ones for
// everybody, plus the actor's own events, plus everything for moderators.
// An empty status filters nothing.
func (s *EventService) List(ctx context.Context, actor models.User, status models.EventStatus) ([]models.Event, error) {
	q := s.db.WithContext(ctx).Preload("Location").Order("starts_at ASC")
	if !actor.Role.CanModerate() {
		q = q.Where("status = ? OR created_by_id = ?", models.StatusPublished, actor.ID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var events []models.Event
	if err := q.Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// SubmitForApproval moves a draft or revision-requested event into the
// approval queue. Only the creator may submit, and only from the regular
// user role; moderator-created events publish directly instead.
func (s *EventService) SubmitForApproval(ctx context.Context, eventID uint, actor models.User) (*models.Event, error) {
	var event models.Event
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.lockEvent(tx, eventID, &event); err != nil {
			return err
		}
		if event.Status != models.StatusDraft && event.Status != models.StatusRevisionRequested {
			return fmt.Errorf("%w: cannot submit event in status %q", apperr.ErrInvalidTransition, event.Status)
		}
		if event.CreatedByID != actor.ID || actor.Role != models.RoleUser {
			return fmt.Errorf("%w: only the creator may submit for approval", apperr.ErrPermissionDenied)
		}

		before := event.Status
		event.Status = models.StatusPendingApproval
		if err := tx.Save(&event).Error; err != nil {
			return err
		}
		return s.history.Record(tx, &models.EventApprovalHistory{
			EventID:       event.ID,
			Action:        models.ActionSubmitted,
			PerformedByID: actor.ID,
			PerformerName: actor.Name,
			StatusBefore:  before,
			StatusAfter:   event.Status,
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Transitions.WithLabelValues(string(models.ActionSubmitted)).Inc()
	return &event, nil
}

// Approve publishes a pending event. The creator is notified out-of-band; a
// failed notification never rolls the transition back.
func (s *EventService) Approve(ctx context.Context, eventID uint, actor models.User) (*models.Event, error) {
	var event models.Event
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.lockEvent(tx, eventID, &event); err != nil {
			return err
		}
		if event.Status != models.StatusPendingApproval {
			return fmt.Errorf("%w: cannot approve event in status %q", apperr.ErrInvalidTransition, event.Status)
		}
		if !actor.Role.CanModerate() {
			return fmt.Errorf("%w: approver role required", apperr.ErrPermissionDenied)
		}
		now := s.now()
		if event.InPast(now) {
			return apperr.ErrEventInPast
		}

		before := event.Status
		event.Status = models.StatusPublished
		event.ApprovedByID = &actor.ID
		event.ApprovedAt = &now
		if err := tx.Save(&event).Error; err != nil {
			return err
		}
		return s.history.Record(tx, &models.EventApprovalHistory{
			EventID:       event.ID,
			Action:        models.ActionApproved,
			PerformedByID: actor.ID,
			PerformerName: actor.Name,
			StatusBefore:  before,
			StatusAfter:   event.Status,
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Transitions.WithLabelValues(string(models.ActionApproved)).Inc()
	s.notifyCreatorApproved(&event)
	s.announcePublished(&event)
	return &event, nil
}

// RequestRevision sends a pending event back to its creator with feedback.
func (s *EventService) RequestRevision(ctx context.Context, eventID uint, actor models.User, comments string) (*models.Event, error) {
	if strings.TrimSpace(comments) == "" {
		return nil, fmt.Errorf("%w: revision comments are required", apperr.ErrValidation)
	}

	var event models.Event
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.lockEvent(tx, eventID, &event); err != nil {
			return err
		}
		if event.Status != models.StatusPendingApproval {
			return fmt.Errorf("%w: cannot request revision for event in status %q", apperr.ErrInvalidTransition, event.Status)
		}
		if !actor.Role.CanModerate() {
			return fmt.Errorf("%w: approver role required", apperr.ErrPermissionDenied)
		}

		before := event.Status
		event.Status = models.StatusRevisionRequested
		event.RevisionComments = comments
		if err := tx.Save(&event).Error; err != nil {
			return err
		}
		return s.history.Record(tx, &models.EventApprovalHistory{
			EventID:       event.ID,
			Action:        models.ActionRevisionRequested,
			PerformedByID: actor.ID,
			PerformerName: actor.Name,
			Comments:      comments,
			StatusBefore:  before,
			StatusAfter:   event.Status,
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Transitions.WithLabelValues(string(models.ActionRevisionRequested)).Inc()
	return &event, nil
}

// Publish puts a draft live without going through approval. Moderator roles
// only; regular users must submit instead.
func (s *EventService) Publish(ctx context.Context, eventID uint, actor models.User) (*models.Event, error) {
	var event models.Event
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.lockEvent(tx, eventID, &event); err != nil {
			return err
		}
		if event.Status != models.StatusDraft {
			return fmt.Errorf("%w: cannot publish event in status %q", apperr.ErrInvalidTransition, event.Status)
		}
		if !actor.Role.CanModerate() {
			return fmt.Errorf("%w: approver role required to publish directly", apperr.ErrPermissionDenied)
		}
		if event.InPast(s.now()) {
			return apperr.ErrEventInPast
		}

		event.Status = models.StatusPublished
		return tx.Save(&event).Error
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Transitions.WithLabelValues("published").Inc()
	s.announcePublished(&event)
	return &event, nil
}

// Cancel moves any non-terminal event to cancelled.
func (s *EventService) Cancel(ctx context.Context, eventID uint, actor models.User) (*models.Event, error) {
	var event models.Event
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.lockEvent(tx, eventID, &event); err != nil {
			return err
		}
		if event.Status.Terminal() {
			return fmt.Errorf("%w: cannot cancel event in status %q", apperr.ErrInvalidTransition, event.Status)
		}
		if event.CreatedByID != actor.ID && !actor.Role.CanModerate() {
			return fmt.Errorf("%w: only the creator or a moderator may cancel", apperr.ErrPermissionDenied)
		}

		event.Status = models.StatusCancelled
		return tx.Save(&event).Error
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Transitions.WithLabelValues("cancelled").Inc()
	return &event, nil
}

// Delete removes an event and its registrations and attachment metadata.
// Approval history is kept: it is an audit trail. The returned attachments
// let the caller clean up stored blobs.
func (s *EventService) Delete(ctx context.Context, eventID uint, actor models.User) ([]models.Attachment, error) {
	var attachments []models.Attachment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event models.Event
		if err := s.lockEvent(tx, eventID, &event); err != nil {
			return err
		}
		if event.CreatedByID != actor.ID && !actor.Role.IsAdmin() {
			return fmt.Errorf("%w: only the creator or an admin may delete this event", apperr.ErrPermissionDenied)
		}

		if err := tx.Where("event_id = ?", eventID).Find(&attachments).Error; err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", eventID).Delete(&models.Registration{}).Error; err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", eventID).Delete(&models.Attachment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", eventID).Delete(&models.ReminderLog{}).Error; err != nil {
			return err
		}
		return tx.Delete(&event).Error
	})
	if err != nil {
		return nil, err
	}
	return attachments, nil
}

// History returns the approval audit trail for an event, oldest first.
func (s *EventService) History(ctx context.Context, eventID uint) ([]models.EventApprovalHistory, error) {
	if _, err := s.Get(ctx, eventID); err != nil {
		return nil, err
	}
	return s.history.ListForEvent(eventID)
}

func (s *EventService) lockEvent(tx *gorm.DB, eventID uint, event *models.Event) error {
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(event, eventID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: event %d", apperr.ErrNotFound, eventID)
	}
	return err
}

func (s *EventService) notifyCreatorApproved(event *models.Event) {
	var creator models.User
	if err := s.db.First(&creator, event.CreatedByID).Error; err != nil {
		s.log.Warn("approval notification skipped: creator lookup failed",
			zap.Uint("event_id", event.ID), zap.Error(err))
		return
	}
	go func() {
		err := s.notifier.SendBatch(context.Background(), []models.User{creator}, notifier.KindEventApproved, map[string]string{
			"event_title": event.Title,
			"starts_at":   event.StartsAt.Format(time.RFC1123),
		})
		if err != nil {
			s.log.Warn("approval notification failed", zap.Uint("event_id", event.ID), zap.Error(err))
		}
	}()
}

func (s *EventService) announcePublished(event *models.Event) {
	go func() {
		if err := s.announcer.AnnounceEventPublished(event); err != nil {
			s.log.Warn("publish announcement failed", zap.Uint("event_id", event.ID), zap.Error(err))
		}
	}()
}
