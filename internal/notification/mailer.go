package notification

//go:generate mockgen -source=mailer.go -destination=mock_mailer.go -package=notification

import (
	"auction-marketplace/utils"
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

// Message is a single plain-text email
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers one message
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSettings describes the outbound mail server and sender
type SMTPSettings struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
}

// SMTPMailer sends messages through an SMTP server
type SMTPMailer struct {
	client    *mail.Client
	fromName  string
	fromEmail string
}

// NewSMTPMailer builds a client for the given server. Authentication is
// enabled only when a username is set.
func NewSMTPMailer(settings SMTPSettings) (*SMTPMailer, error) {
	opts := []mail.Option{
		mail.WithPort(settings.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if settings.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(settings.Username),
			mail.WithPassword(settings.Password),
		)
	}

	client, err := mail.NewClient(settings.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("mailer: failed to create smtp client for %s: %w", settings.Host, err)
	}

	return &SMTPMailer{
		client:    client,
		fromName:  settings.FromName,
		fromEmail: settings.FromEmail,
	}, nil
}

// Send dials the server and delivers msg
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	email := mail.NewMsg()
	if err := email.FromFormat(m.fromName, m.fromEmail); err != nil {
		return fmt.Errorf("mailer: invalid sender %s: %w", m.fromEmail, err)
	}
	if err := email.To(msg.To); err != nil {
		return fmt.Errorf("mailer: invalid recipient %s: %w", msg.To, err)
	}
	email.Subject(msg.Subject)
	email.SetBodyString(mail.TypeTextPlain, msg.Body)

	if err := m.client.DialAndSendWithContext(ctx, email); err != nil {
		return fmt.Errorf("mailer: failed to send to %s: %w", msg.To, err)
	}
	return nil
}

// LogMailer writes messages to the log instead of sending them
type LogMailer struct{}

// Send logs msg
func (LogMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	utils.Info("Email not sent, no SMTP host configured", map[string]any{
		"to":      msg.To,
		"subject": msg.Subject,
		"body":    msg.Body,
	})
	return nil
}
