package notifier

import (
	"context"

	"github.com/campus-hub/campus-events-api/internal/models"
)

// Kind selects the message template for a batch notification.
type Kind string

const (
	KindEventApproved        Kind = "event_approved"
	KindEventReminder        Kind = "event_reminder"
	KindRegistrationDeadline Kind = "registration_deadline"
)

// Notifier delivers one batch notification to a set of users. Callers treat
// it as fire-and-forget: a send failure is logged, never propagated into the
// state change that triggered it.
type Notifier interface {
	SendBatch(ctx context.Context, recipients []models.User, kind Kind, data map[string]string) error
}

// Announcer posts a public announcement when an event is published.
type Announcer interface {
	AnnounceEventPublished(event *models.Event) error
}

type Noop struct{}

func (Noop) SendBatch(context.Context, []models.User, Kind, map[string]string) error {
	return nil
}

func (Noop) AnnounceEventPublished(*models.Event) error { return nil }
