package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/patrickmn/go-cache"
)

type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
	// IdleTTL is how long an unused bucket is kept before it is dropped.
	IdleTTL time.Duration
}

func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 50,
		BurstSize:         100,
		IdleTTL:           10 * time.Minute,
	}
}

type tokenBucket struct {
	mu         sync.Mutex
	tokens     float64
	maxTokens  float64
	refillRate float64
	lastRefill time.Time
}

func newTokenBucket(rate float64, burst int) *tokenBucket {
	return &tokenBucket{
		tokens:     float64(burst),
		maxTokens:  float64(burst),
		refillRate: rate,
		lastRefill: time.Now(),
	}
}

// take refills the bucket and consumes one token. When the bucket is empty
// it returns false and the whole seconds until the next token.
func (b *tokenBucket) take(now time.Time) (bool, int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.tokens += now.Sub(b.lastRefill).Seconds() * b.refillRate
	if b.tokens > b.maxTokens {
		b.tokens = b.maxTokens
	}
	b.lastRefill = now

	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}
	if b.refillRate <= 0 {
		return false, 1
	}
	return false, int((1-b.tokens)/b.refillRate) + 1
}

// bucketStore keeps one bucket per caller. Buckets expire after IdleTTL of
// no use.
type bucketStore struct {
	cfg     RateLimitConfig
	buckets *cache.Cache
}

func newBucketStore(cfg RateLimitConfig) *bucketStore {
	ttl := cfg.IdleTTL
	if ttl <= 0 {
		ttl = DefaultRateLimitConfig().IdleTTL
	}
	return &bucketStore{cfg: cfg, buckets: cache.New(ttl, ttl/2)}
}

func (s *bucketStore) get(key string) *tokenBucket {
	if v, ok := s.buckets.Get(key); ok {
		b := v.(*tokenBucket)
		s.buckets.SetDefault(key, b)
		return b
	}
	b := newTokenBucket(s.cfg.RequestsPerSecond, s.cfg.BurstSize)
	if err := s.buckets.Add(key, b, cache.DefaultExpiration); err != nil {
		// Another request created it first.
		if v, ok := s.buckets.Get(key); ok {
			return v.(*tokenBucket)
		}
	}
	return b
}

// rateLimitKey is the authenticated account when known, else the client IP.
func rateLimitKey(c echo.Context) string {
	if id, ok := c.Get("account_id").(string); ok && id != "" {
		return "account:" + id
	}
	return "ip:" + c.RealIP()
}

// RateLimit applies a token bucket per caller and answers 429 with
// Retry-After when it runs dry.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	store := newBucketStore(cfg)
	limit := strconv.FormatFloat(cfg.RequestsPerSecond, 'f', -1, 64)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", limit)

			ok, retryAfter := store.get(rateLimitKey(c)).take(time.Now())
			if !ok {
				h.Set("Retry-After", strconv.Itoa(retryAfter))
				h.Set("X-RateLimit-Remaining", "0")
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}
