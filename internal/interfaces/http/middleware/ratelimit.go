package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// RateDecision is the outcome of counting one request against a key
type RateDecision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAfter time.Duration
}

// NewRateDecision derives a decision from the number of requests seen in the
// current window, this one included.
func NewRateDecision(limit, count int, resetAfter time.Duration) RateDecision {
	return RateDecision{
		Allowed:    count <= limit,
		Limit:      limit,
		Remaining:  max(limit-count, 0),
		ResetAfter: resetAfter,
	}
}

// RateLimiter counts requests per key in fixed windows
type RateLimiter interface {
	Take(ctx context.Context, key string) (RateDecision, error)
}

// sweepThreshold is the number of tracked keys above which expired windows
// are dropped when a new window opens
const sweepThreshold = 1024

// MemoryRateLimiter is a RateLimiter for a single instance. Counters are not
// shared between processes.
type MemoryRateLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	now     func() time.Time
	windows map[string]*rateWindow
}

type rateWindow struct {
	start time.Time
	count int
}

// NewMemoryRateLimiter allows limit requests per key and window
func NewMemoryRateLimiter(limit int, window time.Duration) *MemoryRateLimiter {
	return &MemoryRateLimiter{
		limit:   limit,
		window:  window,
		now:     time.Now,
		windows: make(map[string]*rateWindow),
	}
}

// Take counts one request for key
func (l *MemoryRateLimiter) Take(_ context.Context, key string) (RateDecision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.window {
		if len(l.windows) >= sweepThreshold {
			l.sweep(now)
		}
		w = &rateWindow{start: now}
		l.windows[key] = w
	}
	w.count++
	return NewRateDecision(l.limit, w.count, l.window-now.Sub(w.start)), nil
}

func (l *MemoryRateLimiter) sweep(now time.Time) {
	for key, w := range l.windows {
		if now.Sub(w.start) >= l.window {
			delete(l.windows, key)
		}
	}
}

// WindowCounter counts hits per key in fixed windows, e.g. in Redis
type WindowCounter interface {
	Incr(ctx context.Context, key string, window time.Duration) (count int, resetAfter time.Duration, err error)
}

// CounterRateLimiter is a RateLimiter on top of a shared WindowCounter
type CounterRateLimiter struct {
	counter WindowCounter
	limit   int
	window  time.Duration
}

// NewCounterRateLimiter allows limit requests per key and window
func NewCounterRateLimiter(counter WindowCounter, limit int, window time.Duration) *CounterRateLimiter {
	return &CounterRateLimiter{counter: counter, limit: limit, window: window}
}

// Take counts one request for key
func (l *CounterRateLimiter) Take(ctx context.Context, key string) (RateDecision, error) {
	count, resetAfter, err := l.counter.Incr(ctx, key, l.window)
	if err != nil {
		return RateDecision{}, err
	}
	return NewRateDecision(l.limit, count, resetAfter), nil
}

// RateLimit limits requests per client IP
func RateLimit(limiter RateLimiter) gin.HandlerFunc {
	return RateLimitByKey(limiter, func(c *gin.Context) string {
		return c.ClientIP()
	})
}

// RateLimitByKey limits requests per key. Requests pass when the limiter
// itself fails, so an unreachable Redis does not lock customers out.
func RateLimitByKey(limiter RateLimiter, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision, err := limiter.Take(c.Request.Context(), keyFunc(c))
		if err != nil {
			logger.FromContext(c.Request.Context()).Warn("Rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		if !decision.Allowed {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(decision.ResetAfter.Seconds()))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeRateLimited,
				"Too many requests. Please try again later.",
				GetRequestID(c),
			))
			return
		}
		c.Next()
	}
}
