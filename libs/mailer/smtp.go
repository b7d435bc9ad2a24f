package mailer

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-gomail/gomail"
	"github.com/google/uuid"
)

const (
	DefaultSMTPHost = "smtp.gmail.com"
	DefaultSMTPPort = 587
)

type smtpDialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPProvider sends emails through an authenticated SMTP relay.
type SMTPProvider struct {
	host   string
	dialer smtpDialer
}

// NewSMTPProvider creates a provider that authenticates against host:port with
// the given credentials. An empty host selects Gmail.
func NewSMTPProvider(host string, port int, username, password string) *SMTPProvider {
	if host == "" {
		host = DefaultSMTPHost
	}
	if port <= 0 {
		port = DefaultSMTPPort
	}
	return &SMTPProvider{
		host:   host,
		dialer: gomail.NewDialer(host, port, username, password),
	}
}

// Name returns the provider name.
func (s *SMTPProvider) Name() string {
	return "smtp"
}

// Send dials the relay and delivers msg. The dial and SMTP conversation run in
// their own goroutine; when ctx ends first the call returns ctx.Err() and the
// delivery outcome is abandoned.
func (s *SMTPProvider) Send(ctx context.Context, msg Message) (SendResult, error) {
	if err := ctx.Err(); err != nil {
		return SendResult{}, err
	}

	messageID := fmt.Sprintf("<%s@%s>", uuid.New().String(), senderDomain(msg.From, s.host))
	m := buildSMTPMessage(msg, messageID)

	done := make(chan error, 1)
	go func() {
		done <- s.dialer.DialAndSend(m)
	}()

	select {
	case <-ctx.Done():
		return SendResult{}, fmt.Errorf("smtp send aborted: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return SendResult{}, fmt.Errorf("smtp send failed: %w", err)
		}
	}
	return SendResult{ProviderMessageID: messageID}, nil
}

func buildSMTPMessage(msg Message, messageID string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", msg.From)
	m.SetHeader("To", msg.To...)
	m.SetHeader("Subject", msg.Subject)
	m.SetHeader("Message-ID", messageID)
	if msg.ReplyTo != "" {
		m.SetHeader("Reply-To", msg.ReplyTo)
	}

	switch {
	case msg.Text != "" && msg.HTML != "":
		m.SetBody("text/plain", msg.Text)
		m.AddAlternative("text/html", msg.HTML)
	case msg.HTML != "":
		m.SetBody("text/html", msg.HTML)
	default:
		m.SetBody("text/plain", msg.Text)
	}
	return m
}

func senderDomain(from, fallback string) string {
	if idx := strings.LastIndex(from, "@"); idx >= 0 && idx < len(from)-1 {
		return strings.Trim(from[idx+1:], "> ")
	}
	return fallback
}
