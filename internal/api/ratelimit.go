package api

import (
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"github.com/talkbase/answerd/internal/auth"
	"github.com/talkbase/answerd/pkg/errors"
)

// RateLimiter applies a per-user token bucket to the gateway routes. It
// must run after the auth middleware so the user ID is resolved.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
	logger   *slog.Logger
}

// NewRateLimiter creates a per-user rate limiter.
func NewRateLimiter(requestsPerMinute, burst int, logger *slog.Logger) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(float64(requestsPerMinute) / 60.0),
		burst:    burst,
		logger:   logger,
	}
}

// Limit rejects requests over the per-user budget with 429.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := auth.UserIDFromContext(r.Context())

		if !rl.limiterFor(userID).Allow() {
			rl.logger.Warn("rate limit exceeded", "user_id", userID)
			writeError(w, rl.logger, errors.NewRateLimitError("rate limit exceeded"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Update applies new limits, on config reload. Existing per-user buckets
// keep their accumulated tokens; only the refill rate and burst change.
func (rl *RateLimiter) Update(requestsPerMinute, burst int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.limit = rate.Limit(float64(requestsPerMinute) / 60.0)
	rl.burst = burst
	for _, limiter := range rl.limiters {
		limiter.SetLimit(rl.limit)
		limiter.SetBurst(burst)
	}
}

func (rl *RateLimiter) limiterFor(userID string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, ok := rl.limiters[userID]
	if !ok {
		limiter = rate.NewLimiter(rl.limit, rl.burst)
		rl.limiters[userID] = limiter
	}
	return limiter
}
