package main

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"time"

	"solsniper/libs/frontend"

	"github.com/gin-gonic/gin"
)

type contactSubmitter interface {
	SubmitFrom(ctx context.Context, sub frontend.ContactSubmission, clientIP string) (frontend.SubmissionResult, error)
}

type Site struct {
	cfg   *Config
	log   *slog.Logger
	shell *frontend.Shell
	api   contactSubmitter
	proxy http.Handler
}

func newSite(cfg *Config, logger *slog.Logger) (*Site, error) {
	shell, err := frontend.NewShell()
	if err != nil {
		return nil, err
	}

	proxy := httputil.NewSingleHostReverseProxy(cfg.APIURL)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Error("api proxy failed", "path", r.URL.Path, "err", err)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"API unavailable"}`))
	}

	return &Site{
		cfg:   cfg,
		log:   logger,
		shell: shell,
		api:   frontend.NewAPIClient(cfg.APIURL.String()),
		proxy: proxy,
	}, nil
}

func (s *Site) routes() (*gin.Engine, error) {
	r := gin.New()
	// Visitors connect directly, so the forwarded client IP is always the socket peer.
	if err := r.SetTrustedProxies(nil); err != nil {
		return nil, err
	}
	r.Use(gin.Recovery())
	r.Use(s.loggingMiddleware())

	r.StaticFS("/assets", http.FS(frontend.Assets()))
	r.Any("/api/*path", gin.WrapH(s.proxy))

	for _, route := range frontend.Routes {
		r.GET(route.Path, s.pageHandler)
	}
	r.POST("/contact", s.contactSubmitHandler)

	// Mirrors the production entry-document fallback.
	r.NoRoute(s.pageHandler)
	return r, nil
}

func (s *Site) pageHandler(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		c.String(http.StatusNotFound, "Not found")
		return
	}
	s.renderPage(c, frontend.ContactForm{})
}

// contactSubmitHandler is the no-script path through the contact form view.
// Method: POST /contact
func (s *Site) contactSubmitHandler(c *gin.Context) {
	var form frontend.ContactForm
	for _, field := range []string{"name", "email", "message"} {
		if err := form.Edit(field, c.PostForm(field)); err != nil {
			s.log.Error("contact form field rejected", "field", field, "err", err)
		}
	}

	sub, err := form.Submit()
	if err == nil {
		result, submitErr := s.api.SubmitFrom(c.Request.Context(), sub, c.ClientIP())
		if submitErr != nil {
			s.log.Warn("contact submission failed", "err", submitErr)
		}
		if err := form.Receive(result); err != nil {
			s.log.Error("contact form transition failed", "err", err)
		}
	}

	c.Request.URL.Path = "/contact"
	s.renderPage(c, form)
}

func (s *Site) renderPage(c *gin.Context, form frontend.ContactForm) {
	var buf bytes.Buffer
	if err := s.shell.Render(&buf, c.Request.URL.Path, form); err != nil {
		s.log.Error("page render failed", "path", c.Request.URL.Path, "err", err)
		c.String(http.StatusInternalServerError, "Internal server error")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (s *Site) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
