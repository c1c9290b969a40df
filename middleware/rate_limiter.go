package middleware

import (
	"contests/config"
	"contests/metrics"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// RateLimiter is a per-client token bucket refilled every interval
type RateLimiter struct {
	visitors map[string]*Visitor
	mu       sync.Mutex
	rate     int           // Tokens added per interval
	burst    int           // Bucket capacity
	interval time.Duration // Refill interval
	now      func() time.Time
}

type Visitor struct {
	tokens      int
	lastUpdated time.Time
}

func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*Visitor),
		rate:     cfg.Rate,
		burst:    cfg.Burst,
		interval: time.Minute,
		now:      time.Now,
	}
}

// Allow takes one token from the bucket of ip
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	visitor, exists := rl.visitors[ip]
	if !exists {
		visitor = &Visitor{tokens: rl.burst, lastUpdated: now}
		rl.visitors[ip] = visitor
	}

	refill := int(now.Sub(visitor.lastUpdated) / rl.interval)
	if refill > 0 {
		visitor.tokens += refill * rl.rate
		if visitor.tokens > rl.burst {
			visitor.tokens = rl.burst
		}
		visitor.lastUpdated = now
	}

	if visitor.tokens > 0 {
		visitor.tokens--
		return true
	}
	return false
}

// Sweep forgets visitors whose bucket has refilled to capacity. Such a visitor is
// indistinguishable from a new one, so removing it changes no decision.
func (rl *RateLimiter) Sweep() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	removed := 0
	for ip, visitor := range rl.visitors {
		refill := int(now.Sub(visitor.lastUpdated) / rl.interval)
		if visitor.tokens+refill*rl.rate >= rl.burst {
			delete(rl.visitors, ip)
			removed++
		}
	}
	return removed
}

// StartSweeper runs Sweep every interval for the life of the process
func (rl *RateLimiter) StartSweeper(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			if removed := rl.Sweep(); removed > 0 {
				log.WithField("visitors", removed).Debug("Rate limiter visitors swept")
			}
		}
	}()
}

func RateLimiterMiddleware(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !rl.Allow(ip) {
			metrics.RateLimiterRejections.WithLabelValues(ip).Inc()
			log.WithField("ip", ip).Warn("Request rejected by rate limiter")

			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests. Please try again later.",
			})
			return
		}
		c.Next()
	}
}
