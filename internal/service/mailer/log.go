package mailer

import (
	"context"
	"log/slog"
)

// LogProvider writes messages to the log instead of sending them. Used in
// development so verification codes can be read from the console.
type LogProvider struct {
	logger *slog.Logger
}

func NewLogProvider(logger *slog.Logger) *LogProvider {
	return &LogProvider{logger: logger}
}

func (p *LogProvider) Send(ctx context.Context, msg Message) error {
	p.logger.InfoContext(ctx, "email sent (dev mode)",
		"template", msg.Template,
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.Text,
	)
	return nil
}

func (p *LogProvider) Name() string {
	return "log"
}
