package main

import (
	"strings"

	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
)

var contentSecurityPolicy = strings.Join([]string{
	"default-src 'self'",
	"style-src 'self' 'unsafe-inline' https://cdnjs.cloudflare.com",
	"font-src 'self' https://cdnjs.cloudflare.com",
	"script-src 'self' 'unsafe-inline'",
	"img-src 'self' data: https:",
}, "; ")

// securityHeaders only emits headers; enforcement is left to the browser.
func (a *App) securityHeaders() gin.HandlerFunc {
	cfg := secure.Config{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: contentSecurityPolicy,
	}

	// TLS terminates at the reverse proxy.
	if a.isProduction() {
		cfg.STSSeconds = 15552000
		cfg.STSIncludeSubdomains = true
		cfg.SSLProxyHeaders = map[string]string{"X-Forwarded-Proto": "https"}
	}

	return secure.New(cfg)
}
