package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"solsniper/libs/mailer"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

const (
	defaultPort                 = "5000"
	defaultContactRecipient     = "contactsupport@raydi.com"
	defaultMailSendTimeout      = 10 * time.Second
	defaultRateLimitWindow      = 15 * time.Minute
	defaultRateLimitMax         = 100
	defaultContactRateLimitMax  = 10
	rateLimiterCleanupInterval  = time.Minute
	shutdownGracePeriod         = 10 * time.Second
	devCORSOriginLocalhost      = "http://localhost:3000"
	devCORSOriginLoopback       = "http://127.0.0.1:3000"
	defaultTrustedProxies       = "127.0.0.1,::1"
	trustedProxiesNone          = "none"
	envProduction               = "production"
	envDevelopment              = "development"
	contactRateLimitMessageTmpl = "Too many requests from this IP, please try again after %d minutes."
)

type Config struct {
	Addr                string
	Env                 string
	PublicBaseURL       string
	PublicDir           string
	BuildDir            string
	ContactRecipient    string
	MailSendTimeout     time.Duration
	RateLimitWindow     time.Duration
	RateLimitMax        int
	ContactRateLimitMax int
	SMTPHost            string
	SMTPPort            int
	EmailUser           string
	EmailPass           string
	ResendAPIKey        string
	MailerFromAddress   string
	TrustedProxies      []string
}

type App struct {
	cfg *Config
	log *slog.Logger
	now func() time.Time

	mailer *mailer.Mailer

	generalLimiter *rateLimiter
	contactLimiter *rateLimiter
}

type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string { return e.Message }

func main() {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		panic(err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	if cfg.Env == envProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	mailProvider := newMailProvider(cfg, logger)
	logger.Info("mailer initialized", "provider", mailProvider.Name())

	app := newApp(cfg, logger, mailer.New(mailProvider, cfg.MailerFromAddress))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	app.startRateLimiterCleanup(ctx, rateLimiterCleanupInterval)

	logger.Info(
		"runtime configuration",
		"env", cfg.Env,
		"addr", cfg.Addr,
		"static_serving", cfg.Env == envProduction,
		"mail_send_timeout", cfg.MailSendTimeout.String(),
		"rate_limit_max", cfg.RateLimitMax,
		"contact_rate_limit_max", cfg.ContactRateLimitMax,
	)

	router, err := app.routes()
	if err != nil {
		panic(err)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "err", err)
		}
	}()

	logger.Info("starting gin API", "addr", cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		panic(err)
	}
	logger.Info("server stopped")
}

func newApp(cfg *Config, logger *slog.Logger, mail *mailer.Mailer) *App {
	return &App{
		cfg:            cfg,
		log:            logger,
		now:            time.Now,
		mailer:         mail,
		generalLimiter: newRateLimiter(cfg.RateLimitMax, cfg.RateLimitWindow),
		contactLimiter: newRateLimiter(cfg.ContactRateLimitMax, cfg.RateLimitWindow),
	}
}

func newMailProvider(cfg *Config, logger *slog.Logger) mailer.Provider {
	switch {
	case cfg.EmailUser != "" && cfg.EmailPass != "":
		return mailer.NewSMTPProvider(cfg.SMTPHost, cfg.SMTPPort, cfg.EmailUser, cfg.EmailPass)
	case cfg.ResendAPIKey != "":
		return mailer.NewResendProvider(cfg.ResendAPIKey)
	default:
		return mailer.NewLogProvider(logger)
	}
}

func (a *App) routes() (*gin.Engine, error) {
	r := gin.New()
	if err := r.SetTrustedProxies(a.cfg.TrustedProxies); err != nil {
		return nil, err
	}
	r.Use(gin.Recovery())
	r.Use(a.loggingMiddleware())
	r.Use(a.securityHeaders())
	r.Use(a.corsMiddleware())
	r.Use(a.rateLimitMiddleware(a.generalLimiter, a.rejectGeneral))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.POST("/contact", a.rateLimitMiddleware(a.contactLimiter, a.rejectContact), a.contactHandler)
	}

	if a.isProduction() {
		r.NoRoute(a.spaHandler())
	} else {
		r.NoRoute(notFoundHandler)
	}
	return r, nil
}

func (a *App) isProduction() bool {
	return a.cfg != nil && strings.EqualFold(a.cfg.Env, envProduction)
}

func loadConfig() (*Config, error) {
	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = strings.TrimSpace(os.Getenv("NODE_ENV"))
	}
	if env == "" {
		env = envDevelopment
	}

	port := valueOrDefault("PORT", defaultPort)
	if _, err := strconv.Atoi(port); err != nil {
		return nil, fmt.Errorf("PORT must be a valid number")
	}

	cfg := &Config{
		Addr:                ":" + port,
		Env:                 strings.ToLower(env),
		PublicBaseURL:       strings.TrimRight(strings.TrimSpace(os.Getenv("PUBLIC_BASE_URL")), "/"),
		PublicDir:           valueOrDefault("PUBLIC_DIR", "public"),
		BuildDir:            valueOrDefault("BUILD_DIR", "client/build"),
		ContactRecipient:    valueOrDefault("CONTACT_RECIPIENT", defaultContactRecipient),
		MailSendTimeout:     defaultMailSendTimeout,
		RateLimitWindow:     defaultRateLimitWindow,
		RateLimitMax:        defaultRateLimitMax,
		ContactRateLimitMax: defaultContactRateLimitMax,
		SMTPHost:            valueOrDefault("SMTP_HOST", mailer.DefaultSMTPHost),
		SMTPPort:            mailer.DefaultSMTPPort,
		EmailUser:           strings.TrimSpace(os.Getenv("EMAIL_USER")),
		EmailPass:           strings.TrimSpace(os.Getenv("EMAIL_PASS")),
		ResendAPIKey:        strings.TrimSpace(os.Getenv("RESEND_API_KEY")),
	}

	var err error
	if cfg.MailSendTimeout, err = durationFromEnv("MAIL_SEND_TIMEOUT", cfg.MailSendTimeout); err != nil {
		return nil, err
	}
	if cfg.RateLimitWindow, err = durationFromEnv("RATE_LIMIT_WINDOW", cfg.RateLimitWindow); err != nil {
		return nil, err
	}
	if cfg.RateLimitMax, err = positiveIntFromEnv("RATE_LIMIT_MAX", cfg.RateLimitMax); err != nil {
		return nil, err
	}
	if cfg.ContactRateLimitMax, err = positiveIntFromEnv("CONTACT_RATE_LIMIT_MAX", cfg.ContactRateLimitMax); err != nil {
		return nil, err
	}
	if cfg.SMTPPort, err = positiveIntFromEnv("SMTP_PORT", cfg.SMTPPort); err != nil {
		return nil, err
	}
	if cfg.TrustedProxies, err = trustedProxiesFromEnv("TRUSTED_PROXIES"); err != nil {
		return nil, err
	}

	// Gmail rewrites the envelope sender to the authenticated account.
	fallbackFrom := "noreply@raydi.local"
	if cfg.EmailUser != "" {
		fallbackFrom = cfg.EmailUser
	}
	cfg.MailerFromAddress = valueOrDefault("MAILER_FROM_ADDRESS", fallbackFrom)

	if (cfg.EmailUser == "") != (cfg.EmailPass == "") {
		return nil, fmt.Errorf("EMAIL_USER and EMAIL_PASS must be configured together")
	}

	return cfg, nil
}

func valueOrDefault(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

// trustedProxiesFromEnv returns nil for "none", which makes gin use the socket peer.
func trustedProxiesFromEnv(key string) ([]string, error) {
	raw := valueOrDefault(key, defaultTrustedProxies)
	if strings.EqualFold(raw, trustedProxiesNone) {
		return nil, nil
	}

	var proxies []string
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if net.ParseIP(entry) == nil {
			if _, _, err := net.ParseCIDR(entry); err != nil {
				return nil, fmt.Errorf("%s entry %q must be an IP or CIDR", key, entry)
			}
		}
		proxies = append(proxies, entry)
	}
	return proxies, nil
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid duration", key)
	}
	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}
	return parsed, nil
}

func positiveIntFromEnv(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid number", key)
	}
	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}
	return parsed, nil
}

func (a *App) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		a.log.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"ip", c.ClientIP(),
		)
	}
}

func (a *App) corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := strings.TrimSpace(c.GetHeader("Origin"))
		if a.isAllowedCORSOrigin(origin) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Headers", "Content-Type")
			c.Header("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			c.Header("Vary", "Origin")
		}
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		c.Next()
	}
}

func (a *App) isAllowedCORSOrigin(origin string) bool {
	if origin == "" || a.cfg == nil {
		return false
	}
	if a.cfg.PublicBaseURL != "" && origin == a.cfg.PublicBaseURL {
		return true
	}
	if !strings.EqualFold(a.cfg.Env, envDevelopment) {
		return false
	}
	return origin == devCORSOriginLocalhost || origin == devCORSOriginLoopback
}

func writeAPIError(c *gin.Context, err error) {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		c.JSON(apiErr.Status, gin.H{"error": apiErr.Message})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

func notFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
}
