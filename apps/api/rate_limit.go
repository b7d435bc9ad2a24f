package main

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type rateBucket struct {
	start time.Time
	count int
}

// rateLimiter is a fixed-window counter keyed by client address.
type rateLimiter struct {
	limit  int
	window time.Duration

	mu      sync.Mutex
	buckets map[string]rateBucket
}

type rateDecision struct {
	allowed   bool
	remaining int
	resetAt   time.Time
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		limit:   limit,
		window:  window,
		buckets: make(map[string]rateBucket),
	}
}

func (l *rateLimiter) check(key string, now time.Time) rateDecision {
	l.mu.Lock()
	defer l.mu.Unlock()

	bucket, ok := l.buckets[key]
	if !ok || now.Sub(bucket.start) >= l.window {
		bucket = rateBucket{start: now}
	}
	bucket.count++
	l.buckets[key] = bucket

	remaining := l.limit - bucket.count
	if remaining < 0 {
		remaining = 0
	}
	return rateDecision{
		allowed:   bucket.count <= l.limit,
		remaining: remaining,
		resetAt:   bucket.start.Add(l.window),
	}
}

func (l *rateLimiter) prune(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, bucket := range l.buckets {
		if now.Sub(bucket.start) >= l.window {
			delete(l.buckets, key)
		}
	}
}

func (a *App) startRateLimiterCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				a.pruneRateLimiterState(now)
			}
		}
	}()
}

func (a *App) pruneRateLimiterState(now time.Time) {
	a.generalLimiter.prune(now)
	a.contactLimiter.prune(now)
}

func (a *App) rateLimitMiddleware(limiter *rateLimiter, reject gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		now := a.now()
		decision := limiter.check(c.ClientIP(), now)

		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.remaining))
		if decision.allowed {
			c.Next()
			return
		}

		retryAfter := int(math.Ceil(decision.resetAt.Sub(now).Seconds()))
		if retryAfter < 1 {
			retryAfter = 1
		}
		c.Header("Retry-After", strconv.Itoa(retryAfter))
		a.log.Warn("rate limit exceeded", "ip", c.ClientIP(), "path", c.Request.URL.Path, "limit", limiter.limit)
		reject(c)
		c.Abort()
	}
}

func (a *App) rejectGeneral(c *gin.Context) {
	c.String(http.StatusTooManyRequests, "Too many requests, please try again later.")
}

func (a *App) rejectContact(c *gin.Context) {
	minutes := int(math.Ceil(a.contactLimiter.window.Minutes()))
	c.JSON(http.StatusTooManyRequests, gin.H{"error": fmt.Sprintf(contactRateLimitMessageTmpl, minutes)})
}
