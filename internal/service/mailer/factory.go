package mailer

import (
	"fmt"
	"log/slog"

	"github.com/templui/apiplate/internal/config"
)

// NewProvider creates an email provider based on configuration
func NewProvider(cfg *config.Config) (Provider, error) {
	provider := cfg.EmailProvider

	slog.Info("initializing email provider", "provider", provider)

	switch provider {
	case config.EmailProviderLog, "":
		return NewLogProvider(slog.Default()), nil

	case config.EmailProviderResend:
		if cfg.ResendAPIKey == "" {
			return nil, fmt.Errorf("RESEND_API_KEY is required when using Resend provider")
		}
		return NewResendProvider(cfg.ResendAPIKey, formatFrom(cfg.EmailFromName, cfg.EmailFrom)), nil

	case config.EmailProviderSendGrid:
		if cfg.SendGridAPIKey == "" {
			return nil, fmt.Errorf("SENDGRID_API_KEY is required when using SendGrid provider")
		}
		return NewSendGridProvider(cfg.SendGridAPIKey, cfg.EmailFromName, cfg.EmailFrom), nil

	default:
		return nil, fmt.Errorf("unknown email provider: %s (supported: log, resend, sendgrid)", provider)
	}
}

func formatFrom(name, address string) string {
	if name == "" {
		return address
	}
	return fmt.Sprintf("%s <%s>", name, address)
}
