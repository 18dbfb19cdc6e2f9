package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/programming666/personal-blog/internal/i18n"
	"github.com/programming666/personal-blog/internal/metrics"
	"golang.org/x/time/rate"
)

// limiterIdleTTL is how long the bucket of a silent client is kept
const limiterIdleTTL = 10 * time.Minute

// RateLimiter keeps one token bucket per client IP. Buckets of clients that
// stay silent longer than the idle TTL are evicted.
type RateLimiter struct {
	limiters *cache.Cache
	mu       sync.Mutex
	r        rate.Limit
	burst    int
}

// NewRateLimiter creates a limiter allowing r requests per second with the given burst
func NewRateLimiter(r rate.Limit, burst int) *RateLimiter {
	return newRateLimiter(r, burst, limiterIdleTTL)
}

func newRateLimiter(r rate.Limit, burst int, idle time.Duration) *RateLimiter {
	// A bucket evicted before it refilled would hand its client a fresh burst.
	if r > 0 {
		if refill := time.Duration(float64(burst) / float64(r) * float64(time.Second)); refill > idle {
			idle = refill
		}
	}
	return &RateLimiter{
		limiters: cache.New(idle, idle),
		r:        r,
		burst:    burst,
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	var limiter *rate.Limiter
	if v, found := rl.limiters.Get(key); found {
		limiter = v.(*rate.Limiter)
	} else {
		limiter = rate.NewLimiter(rl.r, rl.burst)
	}
	// sliding expiry
	rl.limiters.SetDefault(key, limiter)
	return limiter
}

// Middleware rejects requests over the client's budget with 429
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.getLimiter(c.ClientIP()).Allow() {
			metrics.HTTPRateLimitRejectionsTotal.Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": i18n.T(c.GetString("lang"), "error.rate_limited"),
			})
			return
		}
		c.Next()
	}
}
