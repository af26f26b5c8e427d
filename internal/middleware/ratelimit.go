package middleware

import (
	"sync"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"github.com/contentai/contentai-golang/internal/apperr"
)

// maxTrackedClients bounds the number of per-IP buckets kept in memory. The
// least recently seen client is dropped first and starts with a full bucket.
const maxTrackedClients = 10000

// RateLimiter throttles requests per client IP with a token bucket. It guards
// request bursts; the daily generation quota is enforced separately.
type RateLimiter struct {
	limiters *lru.Cache[string, *rate.Limiter]
	mu       sync.Mutex

	limit rate.Limit
	burst int
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return newRateLimiter(rps, burst, maxTrackedClients)
}

func newRateLimiter(rps float64, burst, clients int) *RateLimiter {
	limiters, err := lru.New[string, *rate.Limiter](clients)
	if err != nil {
		panic(err)
	}
	return &RateLimiter{
		limiters: limiters,
		limit:    rate.Limit(rps),
		burst:    burst,
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	if limiter, ok := rl.limiters.Get(key); ok {
		return limiter
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	// Double-check in case another goroutine created it
	if limiter, ok := rl.limiters.Get(key); ok {
		return limiter
	}
	limiter := rate.NewLimiter(rl.limit, rl.burst)
	rl.limiters.Add(key, limiter)
	return limiter
}

// Middleware rejects requests over the limit with 429.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.getLimiter(c.ClientIP()).Allow() {
			apperr.Abort(c, apperr.RateLimited())
			return
		}
		c.Next()
	}
}
