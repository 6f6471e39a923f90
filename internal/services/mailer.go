package services

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"pollwise/pkg/logger"
)

// Mailer delivers a single email. The notification flush job is the only
// caller; delivery failures are retried there, not here.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type SendgridMailer struct {
	client    *sendgrid.Client
	fromName  string
	fromEmail string
	logger    *logger.Logger
}

func NewSendgridMailer(apiKey, fromName, fromEmail string, l *logger.Logger) *SendgridMailer {
	return &SendgridMailer{
		client:    sendgrid.NewSendClient(apiKey),
		fromName:  fromName,
		fromEmail: fromEmail,
		logger:    l,
	}
}

// LogMailer writes outgoing mail to the log instead of sending it. Used when
// no Sendgrid key is configured, so local setups still see what would go out.
type LogMailer struct {
	logger *logger.Logger
}

func NewLogMailer(l *logger.Logger) *LogMailer {
	return &LogMailer{logger: l}
}

func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	if m.logger != nil {
		m.logger.InfofCtx(ctx, "mail (not sent) to=%s subject=%q", to, subject)
	}
	return nil
}

func (m *SendgridMailer) Send(ctx context.Context, to, subject, body string) error {
	from := mail.NewEmail(m.fromName, m.fromEmail)
	message := mail.NewSingleEmail(from, subject, mail.NewEmail("", to), body, "")

	resp, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		if m.logger != nil {
			m.logger.Errorf("sendgrid send to %s failed: %v", to, err)
		}
		return err
	}
	if resp.StatusCode >= 400 {
		err := fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
		if m.logger != nil {
			m.logger.Errorf("sendgrid send to %s failed: %v", to, err)
		}
		return err
	}
	return nil
}
