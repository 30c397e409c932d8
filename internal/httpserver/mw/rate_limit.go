package mw

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/MrSnakeDoc/stamp/internal/logger"
	"github.com/MrSnakeDoc/stamp/internal/utils"
)

// RateLimitConfig tunes the token buckets guarding mutating session routes.
// Each client gets Burst actions that refill at RefillPerMin.
type RateLimitConfig struct {
	Burst        int
	RefillPerMin int
	MaxClients   int           // sweep idle buckets early once this many exist
	IdleTTL      time.Duration // bucket lifetime without requests
	TrustProxy   bool          // resolve IP from proxy headers when true
	Logger       logger.Logger
	Now          func() time.Time // for testing, defaults to time.Now
}

type bucket struct {
	tokens   float64
	refilled time.Time
}

// take refills the bucket up to capacity and spends one token if it can.
// It returns the whole tokens left and, when denied, the wait in seconds.
func (b *bucket) take(now time.Time, capacity, perSec float64) (bool, int, int) {
	if elapsed := now.Sub(b.refilled).Seconds(); elapsed > 0 {
		b.tokens = math.Min(capacity, b.tokens+elapsed*perSec)
		b.refilled = now
	}
	if b.tokens >= 1 {
		b.tokens--
		return true, int(b.tokens), 0
	}
	wait := int(math.Ceil((1 - b.tokens) / perSec))
	return false, 0, max(wait, 1)
}

type clientLimiter struct {
	cfg      RateLimitConfig
	capacity float64
	perSec   float64

	mu        sync.Mutex
	clients   map[string]*bucket
	lastSweep time.Time
}

func newClientLimiter(cfg RateLimitConfig) *clientLimiter {
	cfg.Burst = max(cfg.Burst, 1)
	cfg.RefillPerMin = max(cfg.RefillPerMin, 1)
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 15 * time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &clientLimiter{
		cfg:       cfg,
		capacity:  float64(cfg.Burst),
		perSec:    float64(cfg.RefillPerMin) / 60,
		clients:   make(map[string]*bucket),
		lastSweep: cfg.Now(),
	}
}

// spend charges one action to client. A single lock covers the map and the
// buckets; session actions are infrequent enough for that.
func (l *clientLimiter) spend(client string) (bool, int, int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.cfg.Now()
	full := l.cfg.MaxClients > 0 && len(l.clients) >= l.cfg.MaxClients
	if full || now.Sub(l.lastSweep) >= l.cfg.IdleTTL {
		l.sweepLocked(now)
	}

	b := l.clients[client]
	if b == nil {
		b = &bucket{tokens: l.capacity, refilled: now}
		l.clients[client] = b
	}
	return b.take(now, l.capacity, l.perSec)
}

// sweepLocked forgets clients idle for longer than IdleTTL.
func (l *clientLimiter) sweepLocked(now time.Time) {
	for client, b := range l.clients {
		if now.Sub(b.refilled) > l.cfg.IdleTTL {
			delete(l.clients, client)
		}
	}
	l.lastSweep = now
}

// RateLimit limits mark, loop, jump and order actions per client IP.
// Rejections get the JSON error body of the other guards and a Retry-After.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	l := newClientLimiter(cfg)
	limit := strconv.Itoa(l.cfg.Burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := utils.ClientIP(r, l.cfg.TrustProxy)
			allowed, remaining, retry := l.spend(client)

			// Set before next runs; headers written after the body are lost.
			w.Header().Set("X-RateLimit-Limit", limit)
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			if !allowed {
				l.cfg.Logger.Warn("session action rate limited",
					logger.String("ip", client),
					logger.String("path", r.URL.Path),
					logger.Int("retry_after", retry))
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				deny(w, http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
