// Package retry runs provider operations with exponential backoff on
// transient overload errors.
package retry

import (
	"context"
	"time"
)

const (
	defaultMaxAttempts  = 3
	defaultInitialDelay = time.Second
)

// Config holds retry configuration for provider calls.
type Config struct {
	// MaxAttempts is the maximum number of attempts, including the first.
	MaxAttempts int

	// InitialDelay is the wait before the first retry. The wait before retry n
	// (0-based attempt index) is InitialDelay * 2^n.
	InitialDelay time.Duration

	// Sleep waits for d or until ctx is done. Defaults to a timer-based sleep.
	Sleep func(ctx context.Context, d time.Duration) error

	// OnRetry, if set, is called before each backoff wait.
	OnRetry func(attempt int, delay time.Duration, err error)
}

// DefaultConfig returns the gateway's retry defaults: 3 attempts, 1s initial delay.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  defaultMaxAttempts,
		InitialDelay: defaultInitialDelay,
	}
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaultMaxAttempts
	}
	if c.InitialDelay < 0 {
		c.InitialDelay = defaultInitialDelay
	}
	if c.Sleep == nil {
		c.Sleep = sleep
	}
	return c
}

// Backoff returns the wait before retrying after the attempt with the given
// 0-based index failed. There is no jitter and no cap.
func (c Config) Backoff(attemptIndex int) time.Duration {
	return c.InitialDelay * time.Duration(1<<uint(attemptIndex))
}

// Do executes op until it succeeds, fails with a non-retryable error, or
// MaxAttempts is exhausted. The last error is returned unchanged. The returned
// int is the number of attempts made.
func Do[T any](ctx context.Context, cfg Config, op func(ctx context.Context) (T, error)) (T, int, error) {
	cfg = cfg.withDefaults()

	var zero T
	for attempt := 0; ; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, attempt + 1, nil
		}

		if !IsRetryable(err) || attempt+1 >= cfg.MaxAttempts {
			return zero, attempt + 1, err
		}

		delay := cfg.Backoff(attempt)
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt+1, delay, err)
		}

		if serr := cfg.Sleep(ctx, delay); serr != nil {
			return zero, attempt + 1, serr
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
