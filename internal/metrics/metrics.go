package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the service.
type Metrics struct {
	Transitions   *prometheus.CounterVec
	Registrations *prometheus.CounterVec
	RemindersSent *prometheus.CounterVec
	ReminderScans prometheus.Counter
}

// New registers the collectors with the given registerer. Tests pass a
// fresh prometheus.NewRegistry so repeated construction never collides.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Transitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "campus_events",
				Name:      "event_transitions_total",
				Help:      "Event status transitions by action",
			},
			[]string{"action"},
		),
		Registrations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "campus_events",
				Name:      "registrations_total",
				Help:      "Registration operations by outcome",
			},
			[]string{"outcome"},
		),
		RemindersSent: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "campus_events",
				Name:      "reminders_sent_total",
				Help:      "Reminder batches sent by type",
			},
			[]string{"type"},
		),
		ReminderScans: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "campus_events",
				Name:      "reminder_scans_total",
				Help:      "Completed reminder scan ticks",
			},
		),
	}
}
