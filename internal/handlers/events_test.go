package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/campus-hub/campus-events-api/internal/auth"
	"github.com/campus-hub/campus-events-api/internal/config"
	"github.com/campus-hub/campus-events-api/internal/database"
	"github.com/campus-hub/campus-events-api/internal/metrics"
	"github.com/campus-hub/campus-events-api/internal/models"
	"github.com/campus-hub/campus-events-api/internal/notifier"
	"github.com/campus-hub/campus-events-api/internal/services"
	"github.com/campus-hub/campus-events-api/internal/storage"
)

var baseTime = time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

type testEnv struct {
	db            *gorm.DB
	authHandler   *auth.AuthHandler
	events        *EventHandler
	registrations *RegistrationHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{JWTSecret: "test-secret"}
	authHandler := auth.NewAuthHandler(cfg, db, zap.NewNop())

	m := metrics.New(prometheus.NewRegistry())
	eventService := services.NewEventService(db, services.NewGormHistory(db),
		notifier.Noop{}, notifier.Noop{}, m, zap.NewNop())
	eventService.SetClock(func() time.Time { return baseTime })
	registrationService := services.NewRegistrationService(db, m, zap.NewNop())
	registrationService.SetClock(func() time.Time { return baseTime })

	store, err := storage.NewDiskStore(t.TempDir())
	require.NoError(t, err)

	return &testEnv{
		db:            db,
		authHandler:   authHandler,
		events:        NewEventHandler(eventService, authHandler, store, zap.NewNop()),
		registrations: NewRegistrationHandler(registrationService, authHandler),
	}
}

func (e *testEnv) createUser(t *testing.T, name string, role models.Role) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)
	user := models.User{
		Name:         name,
		Email:        name + "@campus.example",
		PasswordHash: string(hash),
		Role:         role,
		Active:       true,
	}
	require.NoError(t, e.db.Create(&user).Error)
	return user
}

// session builds the AuthInput a logged-in browser would send.
func (e *testEnv) session(t *testing.T, user models.User) auth.AuthInput {
	t.Helper()
	token, err := e.authHandler.GenerateToken(user.ID)
	require.NoError(t, err)
	return auth.AuthInput{Cookie: "auth_token=" + token}
}

func (e *testEnv) createLocation(t *testing.T) models.Location {
	t.Helper()
	location := models.Location{Name: "Main Hall", Capacity: 200, Active: true}
	require.NoError(t, e.db.Create(&location).Error)
	return location
}

func validEventBody(locationID uint) EventBody {
	return EventBody{
		Title:                "Guest Lecture",
		Description:          "An evening guest lecture",
		StartsAt:             baseTime.Add(48 * time.Hour),
		RegistrationOpensAt:  baseTime.Add(-24 * time.Hour),
		RegistrationClosesAt: baseTime.Add(36 * time.Hour),
		LocationID:           locationID,
	}
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var se huma.StatusError
	require.ErrorAs(t, err, &se)
	return se.GetStatus()
}

func TestEventApprovalFlowThroughHandlers(t *testing.T) {
	env := newTestEnv(t)
	creator := env.createUser(t, "creator", models.RoleUser)
	moderator := env.createUser(t, "moderator", models.RoleApprover)
	location := env.createLocation(t)

	created, err := env.events.HandleCreate(context.Background(), &CreateEventRequest{
		AuthInput: env.session(t, creator),
		Body:      validEventBody(location.ID),
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, created.Body.Status)

	submitted, err := env.events.HandleSubmit(context.Background(), &TransitionRequest{
		AuthInput: env.session(t, creator),
		ID:        created.Body.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingApproval, submitted.Body.Status)

	// The creator cannot approve their own pending event.
	_, err = env.events.HandleApprove(context.Background(), &TransitionRequest{
		AuthInput: env.session(t, creator),
		ID:        created.Body.ID,
	})
	assert.Equal(t, 403, statusOf(t, err))

	approved, err := env.events.HandleApprove(context.Background(), &TransitionRequest{
		AuthInput: env.session(t, moderator),
		ID:        created.Body.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPublished, approved.Body.Status)

	history, err := env.events.HandleHistory(context.Background(), &EventHistoryRequest{
		AuthInput: env.session(t, creator),
		ID:        created.Body.ID,
	})
	require.NoError(t, err)
	require.Len(t, history.Body, 2)
	assert.Equal(t, "moderator", history.Body[1].PerformerName)
}

func TestCreateEventRequiresAuth(t *testing.T) {
	env := newTestEnv(t)
	location := env.createLocation(t)

	_, err := env.events.HandleCreate(context.Background(), &CreateEventRequest{
		Body: validEventBody(location.ID),
	})
	assert.Equal(t, 401, statusOf(t, err))
}

func TestCreateEventValidatesBody(t *testing.T) {
	env := newTestEnv(t)
	creator := env.createUser(t, "creator", models.RoleUser)
	location := env.createLocation(t)

	body := validEventBody(location.ID)
	body.Title = ""
	_, err := env.events.HandleCreate(context.Background(), &CreateEventRequest{
		AuthInput: env.session(t, creator),
		Body:      body,
	})
	assert.Equal(t, 400, statusOf(t, err))
}

func TestRequestRevisionThroughHandler(t *testing.T) {
	env := newTestEnv(t)
	creator := env.createUser(t, "creator", models.RoleUser)
	moderator := env.createUser(t, "moderator", models.RoleApprover)
	location := env.createLocation(t)

	created, err := env.events.HandleCreate(context.Background(), &CreateEventRequest{
		AuthInput: env.session(t, creator),
		Body:      validEventBody(location.ID),
	})
	require.NoError(t, err)
	_, err = env.events.HandleSubmit(context.Background(), &TransitionRequest{
		AuthInput: env.session(t, creator),
		ID:        created.Body.ID,
	})
	require.NoError(t, err)

	req := &RequestRevisionRequest{
		AuthInput: env.session(t, moderator),
		ID:        created.Body.ID,
	}
	req.Body.Comments = "Please add a room number"
	revised, err := env.events.HandleRequestRevision(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRevisionRequested, revised.Body.Status)
	assert.Equal(t, "Please add a room number", revised.Body.RevisionComments)
}

func TestRegisterThroughHandler(t *testing.T) {
	env := newTestEnv(t)
	moderator := env.createUser(t, "moderator", models.RoleApprover)
	attendee := env.createUser(t, "attendee", models.RoleUser)
	location := env.createLocation(t)

	body := validEventBody(location.ID)
	body.Publish = true
	created, err := env.events.HandleCreate(context.Background(), &CreateEventRequest{
		AuthInput: env.session(t, moderator),
		Body:      body,
	})
	require.NoError(t, err)

	resp, err := env.registrations.HandleRegister(context.Background(), &RegisterRequest{
		AuthInput: env.session(t, attendee),
		EventID:   created.Body.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationRegistered, resp.Body.Status)

	// Registering again conflicts.
	_, err = env.registrations.HandleRegister(context.Background(), &RegisterRequest{
		AuthInput: env.session(t, attendee),
		EventID:   created.Body.ID,
	})
	assert.Equal(t, 409, statusOf(t, err))

	stats, err := env.registrations.HandleStats(context.Background(), &EventStatsRequest{
		EventID: created.Body.ID,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.Body.Registered)

	mine, err := env.registrations.HandleMyRegistrations(context.Background(), &MyRegistrationsRequest{
		AuthInput: env.session(t, attendee),
	})
	require.NoError(t, err)
	require.Len(t, mine.Body, 1)
	assert.Equal(t, created.Body.ID, mine.Body[0].EventID)
}

func TestUnregisterThroughHandler(t *testing.T) {
	env := newTestEnv(t)
	moderator := env.createUser(t, "moderator", models.RoleApprover)
	attendee := env.createUser(t, "attendee", models.RoleUser)
	location := env.createLocation(t)

	body := validEventBody(location.ID)
	body.Publish = true
	created, err := env.events.HandleCreate(context.Background(), &CreateEventRequest{
		AuthInput: env.session(t, moderator),
		Body:      body,
	})
	require.NoError(t, err)

	_, err = env.registrations.HandleUnregister(context.Background(), &UnregisterRequest{
		AuthInput: env.session(t, attendee),
		EventID:   created.Body.ID,
	})
	assert.Equal(t, 404, statusOf(t, err))

	_, err = env.registrations.HandleRegister(context.Background(), &RegisterRequest{
		AuthInput: env.session(t, attendee),
		EventID:   created.Body.ID,
	})
	require.NoError(t, err)

	resp, err := env.registrations.HandleUnregister(context.Background(), &UnregisterRequest{
		AuthInput: env.session(t, attendee),
		EventID:   created.Body.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "Registration cancelled", resp.Body.Message)
}

func TestListRegistrationsRequiresModerator(t *testing.T) {
	env := newTestEnv(t)
	moderator := env.createUser(t, "moderator", models.RoleApprover)
	attendee := env.createUser(t, "attendee", models.RoleUser)
	location := env.createLocation(t)

	body := validEventBody(location.ID)
	body.Publish = true
	created, err := env.events.HandleCreate(context.Background(), &CreateEventRequest{
		AuthInput: env.session(t, moderator),
		Body:      body,
	})
	require.NoError(t, err)

	_, err = env.registrations.HandleListForEvent(context.Background(), &EventRegistrationsRequest{
		AuthInput: env.session(t, attendee),
		EventID:   created.Body.ID,
	})
	assert.Equal(t, 403, statusOf(t, err))

	list, err := env.registrations.HandleListForEvent(context.Background(), &EventRegistrationsRequest{
		AuthInput: env.session(t, moderator),
		EventID:   created.Body.ID,
	})
	require.NoError(t, err)
	assert.Empty(t, list.Body)
}
