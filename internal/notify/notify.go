// Package notify emails finished audit reports to center heads. The mailer
// seam keeps SendGrid out of tests; the console mailer backs local runs.
package notify

import (
	"context"
)

// Recipient is one addressee.
type Recipient struct {
	Name  string
	Email string
}

// Attachment is a file carried by a message.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Message is one outbound email.
type Message struct {
	To          []Recipient
	Subject     string
	HTMLBody    []byte
	Attachments []Attachment
}

// Mailer delivers messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
