// Package worker drains the audit publisher into the store and any
// configured sinks.
package worker

import (
	"context"
	"log/slog"

	"skillaudit/pkg/platform/audit"
)

// Worker consumes audit events from a channel and persists them. Sink
// failures are logged and skipped; store failures are logged too, because
// losing an audit row must never take the service down with it.
type Worker struct {
	store  audit.Store
	sinks  []audit.Sink
	inbox  <-chan audit.Event
	logger *slog.Logger
}

func New(store audit.Store, inbox <-chan audit.Event, logger *slog.Logger, sinks ...audit.Sink) *Worker {
	return &Worker{store: store, sinks: sinks, inbox: inbox, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				w.logger.ErrorContext(ctx, "audit append failed",
					"action", event.Action,
					"error", err,
				)
			}
			for _, sink := range w.sinks {
				if err := sink.Deliver(ctx, event); err != nil {
					w.logger.WarnContext(ctx, "audit sink delivery failed",
						"action", event.Action,
						"error", err,
					)
				}
			}
		}
	}
}
