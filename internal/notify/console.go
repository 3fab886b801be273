package notify

import (
	"context"
	"log/slog"
)

// ConsoleMailer logs messages instead of sending them; used in local runs
// where no SendGrid key is configured.
type ConsoleMailer struct {
	logger *slog.Logger
}

func NewConsoleMailer(logger *slog.Logger) *ConsoleMailer {
	return &ConsoleMailer{logger: logger}
}

func (m *ConsoleMailer) Send(ctx context.Context, msg Message) error {
	recipients := make([]string, len(msg.To))
	for i, to := range msg.To {
		recipients[i] = to.Email
	}
	m.logger.InfoContext(ctx, "email suppressed (console mailer)",
		"to", recipients,
		"subject", msg.Subject,
		"attachments", len(msg.Attachments),
	)
	return nil
}
