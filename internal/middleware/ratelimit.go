package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimit returns per-caller rate limiting middleware using token buckets.
// Callers are identified by the API key set by the auth middleware, or by
// client IP when the API runs without keys.
//
// Token bucket algorithm: each caller gets a bucket that fills at `rps`
// tokens/sec up to `burst` tokens. Each request consumes one token. If the
// bucket is empty, the request is rejected with 429.
//
// sync.Mutex protects the map of limiters from concurrent goroutine access.
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	var mu sync.Mutex
	limiters := make(map[string]*rate.Limiter)

	return func(c *gin.Context) {
		caller := "ip:" + c.ClientIP()
		if key := c.GetString(ContextKeyAPIKey); key != "" {
			caller = "key:" + key
		}

		mu.Lock()
		limiter, exists := limiters[caller]
		if !exists {
			limiter = rate.NewLimiter(rate.Limit(rps), burst)
			limiters[caller] = limiter
		}
		mu.Unlock()

		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}

		c.Next()
	}
}
