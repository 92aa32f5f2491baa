package notifier

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/campus-hub/campus-events-api/internal/models"
)

// EmailNotifier sends batch notifications as a single BCC email per batch,
// so reminding N registrants costs one SMTP send, not N.
type EmailNotifier struct {
	dialer *gomail.Dialer
	from   string
	log    *zap.Logger
}

func NewEmailNotifier(host string, port int, username, password, from string, log *zap.Logger) *EmailNotifier {
	return &EmailNotifier{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
		log:    log,
	}
}

func (n *EmailNotifier) SendBatch(ctx context.Context, recipients []models.User, kind Kind, data map[string]string) error {
	if len(recipients) == 0 {
		return nil
	}

	subject, body := renderTemplate(kind, data)

	addresses := make([]string, 0, len(recipients))
	for _, u := range recipients {
		if u.Email != "" {
			addresses = append(addresses, u.Email)
		}
	}
	if len(addresses) == 0 {
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", n.from)
	m.SetHeader("Bcc", addresses...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := n.dialer.DialAndSend(m); err != nil {
		n.log.Error("failed to send notification email",
			zap.String("kind", string(kind)),
			zap.Int("recipients", len(addresses)),
			zap.Error(err))
		return err
	}

	n.log.Info("notification email sent",
		zap.String("kind", string(kind)),
		zap.Int("recipients", len(addresses)))
	return nil
}

func renderTemplate(kind Kind, data map[string]string) (subject, body string) {
	title := data["event_title"]
	switch kind {
	case KindEventApproved:
		subject = fmt.Sprintf("Your event %q was approved", title)
		body = fmt.Sprintf("Good news! Your event %q has been approved and is now published.\n\nEvent date: %s", title, data["starts_at"])
	case KindEventReminder:
		subject = fmt.Sprintf("Reminder: %q starts tomorrow", title)
		body = fmt.Sprintf("This is a reminder that %q takes place on %s at %s.", title, data["starts_at"], data["location"])
	case KindRegistrationDeadline:
		subject = fmt.Sprintf("Last chance to register for %q", title)
		body = fmt.Sprintf("Registration for %q closes on %s. Sign up before it's too late!", title, data["registration_closes_at"])
	default:
		subject = title
		body = data["message"]
	}
	return subject, body
}
