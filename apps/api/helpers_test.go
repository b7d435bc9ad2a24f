package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"solsniper/libs/mailer"

	"github.com/gin-gonic/gin"
)

type mockProvider struct {
	mu           sync.Mutex
	SentMessages []mailer.Message
	Deadlines    []bool
	Err          error
}

func (m *mockProvider) Name() string { return "mock" }
func (m *mockProvider) Send(ctx context.Context, msg mailer.Message) (mailer.SendResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, hasDeadline := ctx.Deadline()
	m.SentMessages = append(m.SentMessages, msg)
	m.Deadlines = append(m.Deadlines, hasDeadline)
	if m.Err != nil {
		return mailer.SendResult{}, m.Err
	}
	return mailer.SendResult{ProviderMessageID: "123"}, nil
}

func (m *mockProvider) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.SentMessages)
}

func testConfig() *Config {
	return &Config{
		Addr:                ":5000",
		Env:                 "test",
		PublicDir:           "public",
		BuildDir:            "client/build",
		ContactRecipient:    defaultContactRecipient,
		MailSendTimeout:     time.Second,
		RateLimitWindow:     defaultRateLimitWindow,
		RateLimitMax:        defaultRateLimitMax,
		ContactRateLimitMax: defaultContactRateLimitMax,
		MailerFromAddress:   "noreply@raydi.local",
		TrustedProxies:      []string{"127.0.0.1", "::1"},
	}
}

func newTestServer(t *testing.T, cfg *Config, provider mailer.Provider) (*App, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	if cfg == nil {
		cfg = testConfig()
	}
	if provider == nil {
		provider = &mockProvider{}
	}
	app := newApp(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), mailer.New(provider, cfg.MailerFromAddress))
	app.now = testNow

	router, err := app.routes()
	if err != nil {
		t.Fatalf("build routes: %v", err)
	}
	return app, router
}

func doRequest(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func testNow() time.Time {
	return time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
}
