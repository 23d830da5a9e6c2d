package middleware

import (
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	DefaultRateLimit = 120 // requests per minute
	DefaultBurstSize = 20

	CleanupInterval = 5 * time.Minute
	LimiterTTL      = 10 * time.Minute
)

// RateLimiter hands out one token bucket per user key
type RateLimiter struct {
	perMinute int
	limit     rate.Limit
	burst     int
	now       func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket

	stop     chan struct{}
	stopOnce sync.Once
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter uses DefaultRateLimit and DefaultBurstSize
func NewRateLimiter() *RateLimiter {
	return NewRateLimiterWithConfig(DefaultRateLimit, DefaultBurstSize)
}

// NewRateLimiterWithConfig starts the background sweep; call Stop when done.
// Non-positive values fall back to the defaults.
func NewRateLimiterWithConfig(requestsPerMinute, burstSize int) *RateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = DefaultRateLimit
	}
	if burstSize <= 0 {
		burstSize = DefaultBurstSize
	}
	rl := &RateLimiter{
		perMinute: requestsPerMinute,
		limit:     rate.Every(time.Minute / time.Duration(requestsPerMinute)),
		burst:     burstSize,
		now:       time.Now,
		buckets:   make(map[string]*bucket),
		stop:      make(chan struct{}),
	}
	go rl.run()
	return rl
}

// Allow consumes one token from the user's bucket
func (r *RateLimiter) Allow(userKey string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	return r.bucketFor(userKey, now).limiter.AllowN(now, 1)
}

// GetState reports the tokens left and when the bucket will be full again
func (r *RateLimiter) GetState(userKey string) (remaining int, resetTime time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()

	b, ok := r.buckets[userKey]
	if !ok {
		return r.burst, now
	}
	tokens := math.Max(0, b.limiter.TokensAt(now))
	missing := float64(r.burst) - tokens
	refill := time.Duration(missing / float64(r.limit) * float64(time.Second))
	return int(tokens), now.Add(refill)
}

func (r *RateLimiter) bucketFor(userKey string, now time.Time) *bucket {
	b, ok := r.buckets[userKey]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.buckets[userKey] = b
	}
	b.lastSeen = now
	return b
}

// sweep drops buckets idle for longer than LimiterTTL
func (r *RateLimiter) sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.now().Add(-LimiterTTL)
	dropped := 0
	for key, b := range r.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(r.buckets, key)
			dropped++
		}
	}
	return dropped
}

func (r *RateLimiter) run() {
	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := r.sweep(); n > 0 {
				log.Debug().Int("dropped", n).Msg("Swept idle rate limiters")
			}
		case <-r.stop:
			return
		}
	}
}

// Stop ends the background sweep. Safe to call more than once.
func (r *RateLimiter) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
}

func (r *RateLimiter) setHeaders(c echo.Context, remaining int, reset time.Time) {
	h := c.Response().Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(r.perMinute))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))
}

// RateLimitMiddleware limits requests per user key. It must run after
// Identity; requests without a user key pass through.
func RateLimitMiddleware(rl *RateLimiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userKey := GetUserKey(c)
			if userKey == "" {
				return next(c)
			}

			allowed := rl.Allow(userKey)
			remaining, reset := rl.GetState(userKey)
			if allowed {
				rl.setHeaders(c, remaining, reset)
				return next(c)
			}

			retryAfter := max(1, int(math.Ceil(reset.Sub(rl.now()).Seconds())))
			rl.setHeaders(c, 0, reset)
			c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))

			log.Warn().Str("user_key", userKey).Int("retry_after", retryAfter).Msg("Rate limit exceeded")
			return rateLimitError(c, fmt.Sprintf("Too many requests. Please retry after %d seconds.", retryAfter))
		}
	}
}
