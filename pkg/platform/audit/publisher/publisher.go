// Package publisher decouples event emission from persistence: services
// hand events to a buffered channel and carry on; the worker drains it.
package publisher

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"skillaudit/pkg/platform/audit"
)

var droppedEvents = promauto.NewCounter(prometheus.CounterOpts{
	Name: "skillaudit_audit_events_dropped_total",
	Help: "Audit events dropped because the publisher buffer was full",
})

// Publisher queues audit events for background persistence. Emission never
// blocks the request path: when the buffer is full the event is dropped and
// counted, which trades completeness for availability on the hot path.
type Publisher struct {
	inbox  chan audit.Event
	logger *slog.Logger
}

func New(buffer int, logger *slog.Logger) *Publisher {
	if buffer <= 0 {
		buffer = 256
	}
	return &Publisher{
		inbox:  make(chan audit.Event, buffer),
		logger: logger,
	}
}

// Emit stamps and queues the event.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case p.inbox <- event:
	default:
		droppedEvents.Inc()
		p.logger.WarnContext(ctx, "audit buffer full, event dropped",
			"action", event.Action,
			"report_id", event.ReportID,
		)
	}
}

// Inbox exposes the receive side for the worker.
func (p *Publisher) Inbox() <-chan audit.Event {
	return p.inbox
}
