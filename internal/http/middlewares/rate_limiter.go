package middleware

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	apperrors "progress-tracker.com/progress-tracker/internal/errors"
	"progress-tracker.com/progress-tracker/internal/logging"
)

// RateLimitStore counts hits per key within a fixed window.
type RateLimitStore interface {
	// Hit records one request for key and reports whether it is within limit.
	Hit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type bucket struct {
	count     int
	expiresAt time.Time
}

// MemoryRateLimitStore keeps the counters in process memory. Buckets whose
// window has passed are swept in the background until Close is called.
type MemoryRateLimitStore struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time

	sweepStop chan struct{}
	sweepWG   sync.WaitGroup
	closeOnce sync.Once
}

// NewMemoryRateLimitStore starts a sweep every sweepEvery; zero disables it.
func NewMemoryRateLimitStore(sweepEvery time.Duration) *MemoryRateLimitStore {
	s := &MemoryRateLimitStore{
		buckets:   make(map[string]*bucket),
		now:       time.Now,
		sweepStop: make(chan struct{}),
	}

	if sweepEvery > 0 {
		s.sweepWG.Add(1)
		go s.sweepLoop(sweepEvery)
	}

	return s
}

func (s *MemoryRateLimitStore) Hit(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	b, ok := s.buckets[key]
	if !ok || !now.Before(b.expiresAt) {
		b = &bucket{expiresAt: now.Add(window)}
		s.buckets[key] = b
	}

	if b.count >= limit {
		return false, nil
	}

	b.count++
	return true, nil
}

func (s *MemoryRateLimitStore) sweepLoop(every time.Duration) {
	defer s.sweepWG.Done()

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.sweepStop:
			return
		}
	}
}

func (s *MemoryRateLimitStore) sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, b := range s.buckets {
		if !now.Before(b.expiresAt) {
			delete(s.buckets, key)
			removed++
		}
	}
	return removed
}

func (s *MemoryRateLimitStore) tracked() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}

func (s *MemoryRateLimitStore) Close() {
	s.closeOnce.Do(func() {
		close(s.sweepStop)
		s.sweepWG.Wait()
	})
}

// RateLimiter rejects clients that exceed limit requests per window. Requests
// pass when the store fails.
func RateLimiter(store RateLimitStore, limit int, window time.Duration, logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			allowed, err := store.Hit(ctx, c.RealIP(), limit, window)
			if err != nil {
				logging.Error(ctx, logger, err, "RateLimiter")
				return next(c)
			}
			if !allowed {
				return apperrors.ErrRateLimited
			}

			return next(c)
		}
	}
}
