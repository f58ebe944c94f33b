package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/octobees/lead-intel/internal/config"
)

// RateLimiter applies a token bucket per caller to requests whose route is in paths.
// Callers are keyed by officer id when authenticated, otherwise by client IP.
func RateLimiter(cfg config.RateLimitConfig, paths ...string) echo.MiddlewareFunc {
	if cfg.Requests <= 0 || cfg.Interval <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				return next(c)
			}
		}
	}

	limited := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		limited[p] = struct{}{}
	}

	store := newLimiterStore(cfg, time.Now)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if len(limited) > 0 {
				if _, ok := limited[c.Path()]; !ok {
					return next(c)
				}
			}

			key := OfficerIDFromContext(c)
			if key == "" {
				key = "ip:" + c.RealIP()
			}
			if !store.allow(key) {
				return reject(c, http.StatusTooManyRequests, "rate limit exceeded")
			}

			return next(c)
		}
	}
}

// limiterStore keeps one bucket per caller. A bucket idle for a full interval has
// refilled, so it is dropped and recreated on the caller's next request.
type limiterStore struct {
	mu         sync.Mutex
	perRequest time.Duration
	burst      int
	idle       time.Duration
	now        func() time.Time
	lastSweep  time.Time
	entries    map[string]*limiterEntry
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newLimiterStore(cfg config.RateLimitConfig, now func() time.Time) *limiterStore {
	perRequest := cfg.Interval / time.Duration(cfg.Requests)
	if perRequest <= 0 {
		perRequest = time.Second
	}
	idle := cfg.Interval
	if idle < time.Minute {
		idle = time.Minute
	}
	return &limiterStore{
		perRequest: perRequest,
		burst:      cfg.Requests,
		idle:       idle,
		now:        now,
		lastSweep:  now(),
		entries:    make(map[string]*limiterEntry),
	}
}

func (s *limiterStore) allow(key string) bool {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Sub(s.lastSweep) >= s.idle {
		for k, e := range s.entries {
			if now.Sub(e.lastSeen) >= s.idle {
				delete(s.entries, k)
			}
		}
		s.lastSweep = now
	}

	e, ok := s.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(rate.Every(s.perRequest), s.burst)}
		s.entries[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}
