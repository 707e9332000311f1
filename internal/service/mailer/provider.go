package mailer

import "context"

// Message is a fully rendered email.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
	// Template names the source template, for logs and metrics only.
	Template string
}

// Provider defines the interface that all email transports must implement
type Provider interface {
	// Send delivers one message or returns the transport error
	Send(ctx context.Context, msg Message) error

	// Name returns the provider name (e.g., "resend", "sendgrid")
	Name() string
}
