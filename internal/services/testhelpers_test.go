package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/campus-hub/campus-events-api/internal/database"
	"github.com/campus-hub/campus-events-api/internal/metrics"
	"github.com/campus-hub/campus-events-api/internal/models"
	"github.com/campus-hub/campus-events-api/internal/notifier"
)

// baseTime is the pinned clock for every service test.
var baseTime = time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

type sentBatch struct {
	recipients []models.User
	kind       notifier.Kind
	data       map[string]string
}

// recordingNotifier captures batches so tests can assert on fire-and-forget
// notifications.
type recordingNotifier struct {
	mu      sync.Mutex
	batches []sentBatch
}

func (n *recordingNotifier) SendBatch(_ context.Context, recipients []models.User, kind notifier.Kind, data map[string]string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.batches = append(n.batches, sentBatch{recipients: recipients, kind: kind, data: data})
	return nil
}

func (n *recordingNotifier) sent() []sentBatch {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]sentBatch, len(n.batches))
	copy(out, n.batches)
	return out
}

func newEventService(t *testing.T, db *gorm.DB, n notifier.Notifier) *EventService {
	t.Helper()
	if n == nil {
		n = notifier.Noop{}
	}
	svc := NewEventService(db, NewGormHistory(db), n, notifier.Noop{}, metrics.New(prometheus.NewRegistry()), zap.NewNop())
	svc.SetClock(func() time.Time { return baseTime })
	return svc
}

func newRegistrationService(t *testing.T, db *gorm.DB) *RegistrationService {
	t.Helper()
	svc := NewRegistrationService(db, metrics.New(prometheus.NewRegistry()), zap.NewNop())
	svc.SetClock(func() time.Time { return baseTime })
	return svc
}

func createUser(t *testing.T, db *gorm.DB, name string, role models.Role) models.User {
	t.Helper()
	user := models.User{
		Name:   name,
		Email:  name + "@campus.example",
		Role:   role,
		Active: true,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createLocation(t *testing.T, db *gorm.DB) models.Location {
	t.Helper()
	location := models.Location{Name: "Main Hall", Capacity: 200, Active: true}
	require.NoError(t, db.Create(&location).Error)
	return location
}

// createEvent inserts an event directly, bypassing the service, so tests
// can start from any status.
func createEvent(t *testing.T, db *gorm.DB, creator models.User, status models.EventStatus, maxAttendees *int) models.Event {
	t.Helper()
	location := createLocation(t, db)
	event := models.Event{
		Title:                "Welcome Fair",
		Description:          "Start-of-term welcome fair",
		StartsAt:             baseTime.Add(48 * time.Hour),
		RegistrationOpensAt:  baseTime.Add(-24 * time.Hour),
		RegistrationClosesAt: baseTime.Add(36 * time.Hour),
		LocationID:           location.ID,
		MaxAttendees:         maxAttendees,
		CreatedByID:          creator.ID,
		Status:               status,
	}
	require.NoError(t, db.Create(&event).Error)
	return event
}

func intPtr(n int) *int { return &n }
