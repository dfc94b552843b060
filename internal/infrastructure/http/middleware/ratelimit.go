package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pantrypairing/server/internal/infrastructure/http/respond"
	"github.com/pantrypairing/server/pkg/errors"
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedRateLimiter manages per-key token buckets. Each session gets its own
// limiter; idle entries are dropped by Cleanup.
type KeyedRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	limit    rate.Limit
	burst    int
	now      func() time.Time

	done     chan struct{}
	stopOnce sync.Once
}

// NewKeyedRateLimiter creates a limiter allowing rps requests per second with
// the given burst per key.
func NewKeyedRateLimiter(rps float64, burst int) *KeyedRateLimiter {
	return &KeyedRateLimiter{
		limiters: make(map[string]*limiterEntry),
		limit:    rate.Limit(rps),
		burst:    burst,
		now:      time.Now,
		done:     make(chan struct{}),
	}
}

// Reserve takes a token for key. When none is available it returns false and
// how long until one will be.
func (k *KeyedRateLimiter) Reserve(key string) (bool, time.Duration) {
	now := k.now()

	k.mu.Lock()
	entry, ok := k.limiters[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(k.limit, k.burst)}
		k.limiters[key] = entry
	}
	entry.lastSeen = now
	k.mu.Unlock()

	if entry.limiter.AllowN(now, 1) {
		return true, 0
	}
	r := entry.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, time.Second
	}
	wait := r.DelayFrom(now)
	r.CancelAt(now)
	return false, wait
}

// Cleanup drops limiters unused for longer than idle and returns how many
// were dropped.
func (k *KeyedRateLimiter) Cleanup(idle time.Duration) int {
	cutoff := k.now().Add(-idle)

	k.mu.Lock()
	defer k.mu.Unlock()
	removed := 0
	for key, entry := range k.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(k.limiters, key)
			removed++
		}
	}
	return removed
}

// Run calls Cleanup every interval until Stop.
func (k *KeyedRateLimiter) Run(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			k.Cleanup(interval)
		case <-k.done:
			return
		}
	}
}

// Stop ends Run.
func (k *KeyedRateLimiter) Stop() {
	k.stopOnce.Do(func() { close(k.done) })
}

// RateLimit rejects requests over the per-session budget with 429 and a
// Retry-After header. It must run after Authenticate.
func RateLimit(limiter *KeyedRateLimiter, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, ok := SessionIDFromContext(r.Context())
			if !ok {
				key = r.RemoteAddr
			}

			allowed, wait := limiter.Reserve(key)
			if !allowed {
				seconds := int(math.Ceil(wait.Seconds()))
				if seconds < 1 {
					seconds = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(seconds))
				logger.Debug("Rate limit exceeded", zap.String("key", key), zap.Duration("retry_after", wait))
				respond.Error(w, r, logger, errors.NewTooManyRequestsError())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
