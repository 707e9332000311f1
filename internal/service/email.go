package service

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/templui/apiplate/internal/service/mailer"
)

// Notifier sends a templated email. Implementations return the transport
// error; callers decide whether it is fatal.
type Notifier interface {
	Send(ctx context.Context, to, subject, templateID string, data map[string]any) error
}

type EmailService struct {
	provider     mailer.Provider
	templates    *emailTemplates
	appName      string
	appURL       string
	supportEmail string
	now          func() time.Time
}

func NewEmailService(provider mailer.Provider, appName, appURL, supportEmail string) (*EmailService, error) {
	templates, err := newEmailTemplates()
	if err != nil {
		return nil, err
	}

	return &EmailService{
		provider:     provider,
		templates:    templates,
		appName:      appName,
		appURL:       appURL,
		supportEmail: supportEmail,
		now:          time.Now,
	}, nil
}

// Send renders templateID with data merged over the app-wide context and
// hands the result to the provider. An empty subject uses the template's own.
func (s *EmailService) Send(ctx context.Context, to, subject, templateID string, data map[string]any) error {
	msg, err := s.Render(to, subject, templateID, data)
	if err != nil {
		return err
	}

	err = s.provider.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("send %s email via %s: %w", templateID, s.provider.Name(), err)
	}

	slog.InfoContext(ctx, "email sent", "type", templateID, "to", to, "provider", s.provider.Name())
	return nil
}

func (s *EmailService) Render(to, subject, templateID string, data map[string]any) (mailer.Message, error) {
	ctxData := map[string]any{
		"app_name":      s.appName,
		"app_url":       s.appURL,
		"support_email": s.supportEmail,
		"year":          s.now().Year(),
	}
	maps.Copy(ctxData, data)

	rendered, err := s.templates.render(templateID, ctxData)
	if err != nil {
		return mailer.Message{}, err
	}

	if subject == "" {
		subject = rendered.Subject
	}

	return mailer.Message{
		To:       to,
		Subject:  subject,
		HTML:     rendered.HTML,
		Text:     rendered.Text,
		Template: templateID,
	}, nil
}

// ProviderName reports the active transport, for diagnostics.
func (s *EmailService) ProviderName() string {
	return s.provider.Name()
}
