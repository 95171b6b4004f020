package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"inkwell/blog-api/internal/httpx"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type visitors struct {
	mu   sync.Mutex
	seen map[string]*visitor
}

type RateLimiterConfig struct {
	RequestsPerSecond int
	Burst             int
	CleanupInterval   time.Duration
	TTL               time.Duration

	// Stops the cleanup goroutine when done, nil runs it for the process lifetime
	Context context.Context
}

func (v *visitors) get(ip string, rps int, burst int) *rate.Limiter {
	v.mu.Lock()
	defer v.mu.Unlock()

	vis, exists := v.seen[ip]
	if !exists {
		limiter := rate.NewLimiter(rate.Limit(rps), burst)
		v.seen[ip] = &visitor{limiter, time.Now()}
		return limiter
	}

	vis.lastSeen = time.Now()
	return vis.limiter
}

func (v *visitors) cleanup(ctx context.Context, ttl time.Duration, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			v.mu.Lock()
			for ip, vis := range v.seen {
				if time.Since(vis.lastSeen) > ttl {
					delete(v.seen, ip)
				}
			}
			v.mu.Unlock()
		}
	}
}

// RateLimiterMiddleware limits requests per client IP. A zero rate disables it.
func RateLimiterMiddleware(config RateLimiterConfig) gin.HandlerFunc {
	if config.RequestsPerSecond <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	if config.CleanupInterval == 0 {
		config.CleanupInterval = time.Minute
	}
	if config.TTL == 0 {
		config.TTL = 3 * time.Minute
	}
	if config.Burst <= 0 {
		config.Burst = config.RequestsPerSecond
	}
	if config.Context == nil {
		config.Context = context.Background()
	}

	v := &visitors{seen: make(map[string]*visitor)}
	go v.cleanup(config.Context, config.TTL, config.CleanupInterval)

	return func(c *gin.Context) {
		limiter := v.get(c.ClientIP(), config.RequestsPerSecond, config.Burst)

		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":     "Too many requests",
				"requestID": httpx.RequestID(c),
			})
			return
		}

		c.Next()
	}
}
