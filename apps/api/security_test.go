package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSecurityHeaders_AppliedToEveryResponse(t *testing.T) {
	_, router := newTestServer(t, nil, nil)

	for _, target := range []string{"/healthz", "/does-not-exist"} {
		rec := doRequest(router, http.MethodGet, target, "")

		csp := rec.Header().Get("Content-Security-Policy")
		assert.Contains(t, csp, "default-src 'self'", target)
		assert.Contains(t, csp, "font-src 'self' https://cdnjs.cloudflare.com", target)
		assert.Contains(t, csp, "img-src 'self' data: https:", target)
		assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"), target)
		assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"), target)
	}
}

func TestCORSMiddleware_AllowsDevOriginInDevelopment(t *testing.T) {
	cfg := testConfig()
	cfg.Env = envDevelopment
	_, router := newTestServer(t, cfg, nil)

	for _, origin := range []string{devCORSOriginLocalhost, devCORSOriginLoopback} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("Origin", origin)
		router.ServeHTTP(rec, req)

		assert.Equal(t, origin, rec.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestCORSMiddleware_BlocksUnlistedOrigins(t *testing.T) {
	cfg := testConfig()
	cfg.Env = envProduction
	cfg.PublicBaseURL = "https://raydi.com"
	cfg.BuildDir = t.TempDir()
	_, router := newTestServer(t, cfg, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", devCORSOriginLocalhost)
	router.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://raydi.com")
	router.ServeHTTP(rec, req)
	assert.Equal(t, "https://raydi.com", rec.Header().Get("Access-Control-Allow-Origin"))
}
