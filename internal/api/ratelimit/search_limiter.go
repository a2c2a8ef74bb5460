package ratelimit

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

const (
	DefaultSearchesPerMinute = 10
	idleBucketTTL            = 10 * time.Minute
)

type ipBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// SearchLimiter throttles searches per client IP. Every search costs one LLM
// call and several catalog calls, so it is the only route worth limiting.
type SearchLimiter struct {
	mu        sync.Mutex
	ipBuckets map[string]*ipBucket
	limit     rate.Limit
	burst     int
	now       func() time.Time
}

// NewSearchLimiter allows perMinute searches per IP with a burst of the same
// size. perMinute <= 0 disables limiting.
func NewSearchLimiter(perMinute int) *SearchLimiter {
	l := &SearchLimiter{
		ipBuckets: make(map[string]*ipBucket),
		limit:     rate.Inf,
		now:       time.Now,
	}
	if perMinute > 0 {
		l.limit = rate.Every(time.Minute / time.Duration(perMinute))
		l.burst = perMinute
	}
	return l
}

// Middleware rejects requests over the limit with 429.
func (l *SearchLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !l.Allow(c.RealIP()) {
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many searches, please try again later")
			}
			return next(c)
		}
	}
}

// Allow reports whether ip may search now and consumes one token if so.
func (l *SearchLimiter) Allow(ip string) bool {
	if l.limit == rate.Inf {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	bucket, exists := l.ipBuckets[ip]
	if !exists {
		bucket = &ipBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.ipBuckets[ip] = bucket
	}
	bucket.lastSeen = now
	return bucket.limiter.AllowN(now, 1)
}

// Cleanup forgets IPs that have been idle for a while.
func (l *SearchLimiter) Cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for ip, bucket := range l.ipBuckets {
		if now.Sub(bucket.lastSeen) > idleBucketTTL {
			delete(l.ipBuckets, ip)
		}
	}
}
