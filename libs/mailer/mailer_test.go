package mailer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-gomail/gomail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingProvider struct {
	sent []Message
}

func (r *recordingProvider) Name() string { return "recording" }
func (r *recordingProvider) Send(ctx context.Context, msg Message) (SendResult, error) {
	r.sent = append(r.sent, msg)
	return SendResult{ProviderMessageID: "rec-1"}, nil
}

type fakeDialer struct {
	err      error
	block    chan struct{}
	messages []*gomail.Message
}

func (f *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	if f.block != nil {
		<-f.block
	}
	f.messages = append(f.messages, m...)
	return f.err
}

func TestLogProviderSend(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	provider := NewLogProvider(logger)

	msg := Message{
		From:    "test@example.com",
		To:      []string{"recipient@example.com"},
		Subject: "Test Subject",
		HTML:    "<p>Test HTML</p>",
		Text:    "Test text",
	}

	result, err := provider.Send(context.Background(), msg)
	if err != nil {
		t.Fatalf("LogProvider.Send() error = %v", err)
	}

	if !strings.HasPrefix(result.ProviderMessageID, "log-") {
		t.Errorf("LogProvider.Send() message ID = %v, want prefix 'log-'", result.ProviderMessageID)
	}
}

func TestLogProviderSendHonoursCancelledContext(t *testing.T) {
	provider := NewLogProvider(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := provider.Send(ctx, Message{To: []string{"a@example.com"}})
	require.ErrorIs(t, err, context.Canceled)
}

func TestMailerSendFillsDefaultFrom(t *testing.T) {
	provider := &recordingProvider{}
	m := New(provider, "default@test.com")

	_, err := m.Send(context.Background(), Message{To: []string{"recipient@example.com"}, Subject: "Test"})
	require.NoError(t, err)
	require.Len(t, provider.sent, 1)
	assert.Equal(t, "default@test.com", provider.sent[0].From)
}

func TestMailerSendKeepsExplicitFrom(t *testing.T) {
	provider := &recordingProvider{}
	m := New(provider, "default@test.com")

	_, err := m.Send(context.Background(), Message{From: "other@test.com", To: []string{"x@example.com"}})
	require.NoError(t, err)
	assert.Equal(t, "other@test.com", provider.sent[0].From)
}

func TestMailerProviderName(t *testing.T) {
	m := New(NewLogProvider(slog.New(slog.NewTextHandler(io.Discard, nil))), "default@test.com")

	if got := m.ProviderName(); got != "log" {
		t.Errorf("Mailer.ProviderName() = %v, want 'log'", got)
	}
}

func TestResendProviderName(t *testing.T) {
	provider := NewResendProvider("fake-api-key")

	if got := provider.Name(); got != "resend" {
		t.Errorf("ResendProvider.Name() = %v, want 'resend'", got)
	}
}

func TestNewSMTPProviderDefaultsToGmail(t *testing.T) {
	provider := NewSMTPProvider("", 0, "user@gmail.com", "app-password")

	assert.Equal(t, "smtp", provider.Name())
	assert.Equal(t, DefaultSMTPHost, provider.host)
	dialer, ok := provider.dialer.(*gomail.Dialer)
	require.True(t, ok)
	assert.Equal(t, DefaultSMTPPort, dialer.Port)
	assert.Equal(t, "user@gmail.com", dialer.Username)
}

func TestSMTPProviderSendBuildsMessage(t *testing.T) {
	dialer := &fakeDialer{}
	provider := &SMTPProvider{host: "smtp.example.com", dialer: dialer}

	result, err := provider.Send(context.Background(), Message{
		From:    "noreply@raydi.com",
		To:      []string{"support@raydi.com"},
		ReplyTo: "alice@example.com",
		Subject: "Hello",
		HTML:    "<p>hi</p>",
		Text:    "hi",
	})
	require.NoError(t, err)
	require.Len(t, dialer.messages, 1)

	m := dialer.messages[0]
	assert.Equal(t, []string{"support@raydi.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"alice@example.com"}, m.GetHeader("Reply-To"))
	assert.Equal(t, []string{"Hello"}, m.GetHeader("Subject"))
	assert.Equal(t, []string{result.ProviderMessageID}, m.GetHeader("Message-ID"))
	assert.True(t, strings.HasSuffix(result.ProviderMessageID, "@raydi.com>"))
}

func TestSMTPProviderSendWrapsRelayError(t *testing.T) {
	relayErr := errors.New("535 authentication failed")
	provider := &SMTPProvider{host: "smtp.example.com", dialer: &fakeDialer{err: relayErr}}

	_, err := provider.Send(context.Background(), Message{From: "a@b.c", To: []string{"d@e.f"}, Text: "x"})
	require.ErrorIs(t, err, relayErr)
}

func TestSMTPProviderSendStopsAtDeadline(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	provider := &SMTPProvider{host: "smtp.example.com", dialer: &fakeDialer{block: block}}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := provider.Send(ctx, Message{From: "a@b.c", To: []string{"d@e.f"}, Text: "x"})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
