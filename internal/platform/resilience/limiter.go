package resilience

import (
	"context"
	"math"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Limiter is the single rate-limit budget shared by every outbound call to one upstream.
// It combines a token bucket with a cooldown that any caller can extend after a
// throttling response, so concurrent workers back off together instead of each
// burning its own retries against the same limit.
type Limiter struct {
	bucket *rate.Limiter

	mu            sync.Mutex
	blockedUntil  time.Time
	windows       []RateWindow
	lastUpdatedAt time.Time
	now           func() time.Time

	acquired  atomic.Int64
	throttled atomic.Int64
}

// RateWindow is one "limit:seconds" pair advertised by the upstream.
type RateWindow struct {
	Limit   int
	Seconds int
}

type LimiterStats struct {
	Acquired      int64
	Throttled     int64
	CooldownUntil time.Time
	Windows       []RateWindow
	UpdatedAt     time.Time
}

func NewLimiter(perSecond float64, burst int) *Limiter {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		bucket: rate.NewLimiter(limit, burst),
		now:    time.Now,
	}
}

// Acquire blocks until the cooldown has passed and a token is available.
func (l *Limiter) Acquire(ctx context.Context) error {
	for {
		wait := l.cooldownRemaining()
		if wait <= 0 {
			break
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	if err := l.bucket.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		// rate.Limiter refuses early when the wait would overrun the deadline.
		return context.DeadlineExceeded
	}
	l.acquired.Add(1)
	return nil
}

// BackOff extends the shared cooldown by d from now. Shorter cooldowns never shrink a longer one.
func (l *Limiter) BackOff(d time.Duration) {
	if d <= 0 {
		return
	}
	l.throttled.Add(1)

	l.mu.Lock()
	defer l.mu.Unlock()
	until := l.now().Add(d)
	if until.After(l.blockedUntil) {
		l.blockedUntil = until
	}
}

// ObserveWindows narrows the token bucket to the most restrictive advertised window,
// e.g. "20:1,100:120" from X-App-Rate-Limit.
func (l *Limiter) ObserveWindows(header string) {
	windows := ParseRateWindows(header)
	if len(windows) == 0 {
		return
	}

	l.mu.Lock()
	l.windows = windows
	l.lastUpdatedAt = l.now()
	l.mu.Unlock()

	strictest := math.Inf(1)
	for _, w := range windows {
		perSecond := float64(w.Limit) / float64(w.Seconds)
		if perSecond < strictest {
			strictest = perSecond
		}
	}
	if current := float64(l.bucket.Limit()); strictest < current {
		l.bucket.SetLimit(rate.Limit(strictest))
	}
}

func (l *Limiter) Stats() LimiterStats {
	l.mu.Lock()
	defer l.mu.Unlock()

	windows := make([]RateWindow, len(l.windows))
	copy(windows, l.windows)
	return LimiterStats{
		Acquired:      l.acquired.Load(),
		Throttled:     l.throttled.Load(),
		CooldownUntil: l.blockedUntil,
		Windows:       windows,
		UpdatedAt:     l.lastUpdatedAt,
	}
}

func (l *Limiter) cooldownRemaining() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.blockedUntil.Sub(l.now())
}

func ParseRateWindows(header string) []RateWindow {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil
	}

	parts := strings.Split(header, ",")
	out := make([]RateWindow, 0, len(parts))
	for _, part := range parts {
		pair := strings.SplitN(strings.TrimSpace(part), ":", 2)
		if len(pair) != 2 {
			continue
		}
		limit, err := strconv.Atoi(strings.TrimSpace(pair[0]))
		if err != nil || limit <= 0 {
			continue
		}
		seconds, err := strconv.Atoi(strings.TrimSpace(pair[1]))
		if err != nil || seconds <= 0 {
			continue
		}
		out = append(out, RateWindow{Limit: limit, Seconds: seconds})
	}
	return out
}
