// Package reminder runs the periodic scan that sends 24-hours-before
// reminders. A scan window wider than the tick interval guarantees no event
// is skipped when a tick is late; the persisted reminder log guarantees no
// event is reminded twice when several ticks see it in-window. Together they
// give at-most-once delivery per event and reminder type without a durable
// job queue.
package reminder

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/campus-hub/campus-events-api/internal/metrics"
	"github.com/campus-hub/campus-events-api/internal/models"
	"github.com/campus-hub/campus-events-api/internal/notifier"
)

const (
	// reminderLead is how far before the deadline the reminder goes out.
	reminderLead = 24 * time.Hour
	// minHalfWindow gives the reference 30-minute window at a 1-minute tick.
	minHalfWindow = 15 * time.Minute
)

type Worker struct {
	db       *gorm.DB
	notifier notifier.Notifier
	metrics  *metrics.Metrics
	log      *zap.Logger
	interval time.Duration
	now      func() time.Time
}

func NewWorker(db *gorm.DB, n notifier.Notifier, m *metrics.Metrics, log *zap.Logger, interval time.Duration) *Worker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Worker{
		db:       db,
		notifier: n,
		metrics:  m,
		log:      log,
		interval: interval,
		now:      time.Now,
	}
}

// SetClock overrides the worker clock. Test use only.
func (w *Worker) SetClock(now func() time.Time) { w.now = now }

// Start launches the scan loop. Cancel the context to stop; the returned
// channel closes once the loop has exited.
func (w *Worker) Start(ctx context.Context) chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.RunScan(ctx)
			}
		}
	}()
	return done
}

// window is [now+24h-half, now+24h+half]. The half-width grows with the
// tick interval so a slow tick can never open a gap between windows.
func (w *Worker) window(now time.Time) (time.Time, time.Time) {
	half := minHalfWindow
	if w.interval > half {
		half = w.interval
	}
	return now.Add(reminderLead - half), now.Add(reminderLead + half)
}

// RunScan performs one tick: sweep past events to completed, then the two
// independent reminder scans. A failure on one event is logged and the scan
// moves on; the scheduler itself never dies on a bad event.
func (w *Worker) RunScan(ctx context.Context) {
	now := w.now()

	if err := w.completePastEvents(ctx, now); err != nil {
		w.log.Error("completed-event sweep failed", zap.Error(err))
	}
	w.scanAttendance(ctx, now)
	w.scanRegistrationDeadline(ctx, now)
	w.metrics.ReminderScans.Inc()
}

// completePastEvents moves published events whose start time has passed
// into the terminal completed status.
func (w *Worker) completePastEvents(ctx context.Context, now time.Time) error {
	return w.db.WithContext(ctx).Model(&models.Event{}).
		Where("status = ? AND starts_at <= ?", models.StatusPublished, now).
		Update("status", models.StatusCompleted).Error
}

func (w *Worker) scanAttendance(ctx context.Context, now time.Time) {
	from, to := w.window(now)
	var events []models.Event
	err := w.db.WithContext(ctx).Preload("Location").
		Where("status = ? AND starts_at BETWEEN ? AND ?", models.StatusPublished, from, to).
		Find(&events).Error
	if err != nil {
		w.log.Error("attendance reminder scan failed", zap.Error(err))
		return
	}

	for i := range events {
		if err := w.remindAttendance(ctx, &events[i], now); err != nil {
			w.log.Error("attendance reminder failed",
				zap.Uint("event_id", events[i].ID), zap.Error(err))
		}
	}
}

func (w *Worker) remindAttendance(ctx context.Context, event *models.Event, now time.Time) error {
	sent, err := w.alreadySent(ctx, event.ID, models.ReminderEventAttendance)
	if err != nil || sent {
		return err
	}

	var recipients []models.User
	err = w.db.WithContext(ctx).
		Joins("JOIN registrations ON registrations.user_id = users.id").
		Where("registrations.event_id = ? AND registrations.status = ?", event.ID, models.RegistrationRegistered).
		Find(&recipients).Error
	if err != nil {
		return err
	}

	if len(recipients) > 0 {
		err = w.notifier.SendBatch(ctx, recipients, notifier.KindEventReminder, map[string]string{
			"event_title": event.Title,
			"starts_at":   event.StartsAt.Format(time.RFC1123),
			"location":    event.Location.Name,
		})
		if err != nil {
			// No log row is written, so the next in-window tick retries.
			return err
		}
	}

	w.metrics.RemindersSent.WithLabelValues(string(models.ReminderEventAttendance)).Inc()
	return w.markSent(ctx, event.ID, models.ReminderEventAttendance, now)
}

func (w *Worker) scanRegistrationDeadline(ctx context.Context, now time.Time) {
	from, to := w.window(now)
	var events []models.Event
	err := w.db.WithContext(ctx).
		Where("status = ? AND registration_closes_at BETWEEN ? AND ?", models.StatusPublished, from, to).
		Find(&events).Error
	if err != nil {
		w.log.Error("deadline reminder scan failed", zap.Error(err))
		return
	}

	for i := range events {
		if err := w.remindDeadline(ctx, &events[i], now); err != nil {
			w.log.Error("deadline reminder failed",
				zap.Uint("event_id", events[i].ID), zap.Error(err))
		}
	}
}

func (w *Worker) remindDeadline(ctx context.Context, event *models.Event, now time.Time) error {
	sent, err := w.alreadySent(ctx, event.ID, models.ReminderRegistrationDeadline)
	if err != nil || sent {
		return err
	}

	// Everyone who could still register: active users without an active
	// registration for this event, filtered by the category allow-list.
	var candidates []models.User
	err = w.db.WithContext(ctx).
		Where("active = ?", true).
		Where("id NOT IN (?)",
			w.db.Model(&models.Registration{}).
				Select("user_id").
				Where("event_id = ? AND status IN ?", event.ID,
					[]models.RegistrationStatus{models.RegistrationRegistered, models.RegistrationWaitlisted})).
		Find(&candidates).Error
	if err != nil {
		return err
	}

	recipients := candidates[:0]
	for _, u := range candidates {
		if event.CategoryAllowed(u.Category) {
			recipients = append(recipients, u)
		}
	}

	if len(recipients) > 0 {
		err = w.notifier.SendBatch(ctx, recipients, notifier.KindRegistrationDeadline, map[string]string{
			"event_title":            event.Title,
			"registration_closes_at": event.RegistrationClosesAt.Format(time.RFC1123),
		})
		if err != nil {
			return err
		}
	}

	w.metrics.RemindersSent.WithLabelValues(string(models.ReminderRegistrationDeadline)).Inc()
	return w.markSent(ctx, event.ID, models.ReminderRegistrationDeadline, now)
}

// alreadySent checks the dedup log for the batch row (nil user id).
func (w *Worker) alreadySent(ctx context.Context, eventID uint, kind models.ReminderType) (bool, error) {
	var count int64
	err := w.db.WithContext(ctx).Model(&models.ReminderLog{}).
		Where("event_id = ? AND reminder_type = ? AND user_id IS NULL", eventID, kind).
		Count(&count).Error
	return count > 0, err
}

func (w *Worker) markSent(ctx context.Context, eventID uint, kind models.ReminderType, now time.Time) error {
	return w.db.WithContext(ctx).Create(&models.ReminderLog{
		EventID:      eventID,
		ReminderType: kind,
		SentAt:       now,
	}).Error
}
