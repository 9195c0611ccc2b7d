package notify

import (
	"fmt"
	"log/slog"

	"gopkg.in/gomail.v2"
)

const feedbackSubject = "TrainingInParks Bot Feedback"

// Sender identifies the chat user a feedback message came from.
type Sender struct {
	FirstName string
	LastName  string
	Username  string
}

// Mailer forwards free-text feedback to the maintainers.
type Mailer interface {
	SendFeedback(sender Sender, text string) error
}

// SMTPMailer delivers feedback over SMTPS (implicit TLS, e.g. Yandex on 465).
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
	to     []string
}

func NewSMTPMailer(host string, port int, username, password, from string, to []string) *SMTPMailer {
	dialer := gomail.NewDialer(host, port, username, password)
	dialer.SSL = true
	return &SMTPMailer{
		dialer: dialer,
		from:   from,
		to:     to,
	}
}

func (m *SMTPMailer) SendFeedback(sender Sender, text string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", m.to...)
	msg.SetHeader("Subject", feedbackSubject)
	msg.SetBody("text/plain", fmt.Sprintf("First name: %s\nLast name: %s\nUsername: %s\n\n%s",
		sender.FirstName, sender.LastName, sender.Username, text))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send feedback mail: %w", err)
	}
	return nil
}

// DisabledMailer stands in when SMTP is not configured; feedback is only
// logged so the chat flow stays usable.
type DisabledMailer struct {
	logger *slog.Logger
}

func NewDisabledMailer(logger *slog.Logger) *DisabledMailer {
	return &DisabledMailer{logger: logger}
}

func (m *DisabledMailer) SendFeedback(sender Sender, text string) error {
	m.logger.Warn("Feedback mail disabled, dropping message", "username", sender.Username, "text", text)
	return nil
}
