package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"solsniper/libs/frontend"

	"github.com/joho/godotenv"
)

const (
	defaultSitePort     = "3000"
	defaultAPIURL       = "http://127.0.0.1:5000"
	defaultBuildDir     = "client/build"
	shutdownGracePeriod = 5 * time.Second
)

type Config struct {
	Addr   string
	APIURL *url.URL
}

func main() {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	command := "serve"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	switch command {
	case "build":
		out := valueOrDefault("BUILD_DIR", defaultBuildDir)
		if len(os.Args) > 2 {
			out = os.Args[2]
		}
		written, err := frontend.Build(out)
		if err != nil {
			logger.Error("front-end build failed", "out", out, "err", err)
			os.Exit(1)
		}
		logger.Info("front-end build written", "out", out, "files", len(written))

	case "serve":
		cfg, err := loadConfig()
		if err != nil {
			panic(err)
		}
		if err := serve(cfg, logger); err != nil {
			panic(err)
		}

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s (want serve or build)\n", command)
		os.Exit(2)
	}
}

func serve(cfg *Config, logger *slog.Logger) error {
	site, err := newSite(cfg, logger)
	if err != nil {
		return err
	}

	router, err := site.routes()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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
			logger.Error("site shutdown failed", "err", err)
		}
	}()

	logger.Info("starting front-end dev server", "addr", cfg.Addr, "api_url", cfg.APIURL.String())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func loadConfig() (*Config, error) {
	port := valueOrDefault("SITE_PORT", defaultSitePort)
	if _, err := strconv.Atoi(port); err != nil {
		return nil, fmt.Errorf("SITE_PORT must be a valid number")
	}

	apiURL, err := url.Parse(valueOrDefault("API_URL", defaultAPIURL))
	if err != nil || apiURL.Scheme == "" || apiURL.Host == "" {
		return nil, fmt.Errorf("API_URL must be an absolute URL")
	}

	return &Config{
		Addr:   ":" + port,
		APIURL: apiURL,
	}, nil
}

func valueOrDefault(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}
