package mailer

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type SendGridProvider struct {
	client *sendgrid.Client
	from   *mail.Email
}

func NewSendGridProvider(apiKey, fromName, fromAddress string) *SendGridProvider {
	return &SendGridProvider{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail(fromName, fromAddress),
	}
}

func (p *SendGridProvider) Send(ctx context.Context, msg Message) error {
	email := mail.NewSingleEmail(p.from, msg.Subject, mail.NewEmail("", msg.To), msg.Text, msg.HTML)
	if msg.Template != "" {
		email.AddCategories(msg.Template)
	}

	resp, err := p.client.SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid: unexpected status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

func (p *SendGridProvider) Name() string {
	return "sendgrid"
}
