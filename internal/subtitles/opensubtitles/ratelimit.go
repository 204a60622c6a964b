package opensubtitles

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"
)

// Rate limiting configuration for OpenSubtitles API calls.
const (
	MinInterval    = time.Second
	MaxRateRetries = 6
	InitialBackoff = 2 * time.Second
	MaxBackoff     = 60 * time.Second
)

// SleepWithContext blocks for the given duration, returning early if the
// context is cancelled.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsRetriable reports whether err represents a transient condition that
// warrants an automatic retry (rate limits, server errors, timeouts).
func IsRetriable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

// Limiter spaces API calls at least MinInterval apart and retries transient
// failures with exponential backoff.
type Limiter struct {
	mu          sync.Mutex
	last        time.Time
	interval    time.Duration
	maxRetries  int
	backoff     time.Duration
	maxBackoff  time.Duration
	now         func() time.Time
	sleep       func(context.Context, time.Duration) error
	onRateLimit func(attempt int, wait time.Duration, err error)
}

// LimiterOption customises a Limiter.
type LimiterOption func(*Limiter)

// WithInterval overrides the minimum spacing between calls.
func WithInterval(d time.Duration) LimiterOption {
	return func(l *Limiter) { l.interval = d }
}

// WithBackoff overrides the initial and maximum retry backoff.
func WithBackoff(initial, max time.Duration) LimiterOption {
	return func(l *Limiter) {
		l.backoff = initial
		l.maxBackoff = max
	}
}

// WithMaxRetries overrides the retry budget.
func WithMaxRetries(n int) LimiterOption {
	return func(l *Limiter) { l.maxRetries = n }
}

// WithSleeper replaces the sleep function, mainly for tests.
func WithSleeper(fn func(context.Context, time.Duration) error) LimiterOption {
	return func(l *Limiter) {
		if fn != nil {
			l.sleep = fn
		}
	}
}

// WithRetryHook registers a callback invoked before each retry.
func WithRetryHook(fn func(attempt int, wait time.Duration, err error)) LimiterOption {
	return func(l *Limiter) { l.onRateLimit = fn }
}

// NewLimiter builds a Limiter with the package defaults.
func NewLimiter(opts ...LimiterOption) *Limiter {
	l := &Limiter{
		interval:   MinInterval,
		maxRetries: MaxRateRetries,
		backoff:    InitialBackoff,
		maxBackoff: MaxBackoff,
		now:        time.Now,
		sleep:      SleepWithContext,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Do runs fn, waiting for the call window and retrying retriable errors.
func (l *Limiter) Do(ctx context.Context, fn func(context.Context) error) error {
	backoff := l.backoff
	for attempt := 0; ; attempt++ {
		if err := l.wait(ctx); err != nil {
			return err
		}
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !IsRetriable(err) || attempt >= l.maxRetries {
			return err
		}
		wait := backoff
		if wait > l.maxBackoff {
			wait = l.maxBackoff
		}
		if l.onRateLimit != nil {
			l.onRateLimit(attempt+1, wait, err)
		}
		if sleepErr := l.sleep(ctx, wait); sleepErr != nil {
			return sleepErr
		}
		backoff *= 2
	}
}

func (l *Limiter) wait(ctx context.Context) error {
	l.mu.Lock()
	var delay time.Duration
	if !l.last.IsZero() {
		delay = l.interval - l.now().Sub(l.last)
	}
	l.mu.Unlock()
	if delay > 0 {
		if err := l.sleep(ctx, delay); err != nil {
			return err
		}
	}
	l.mu.Lock()
	l.last = l.now()
	l.mu.Unlock()
	return nil
}
