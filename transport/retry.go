package transport

import (
	"context"
	"io"
	"time"
)

// Retry policy defaults. Up to 3 attempts with exponential wait floored at
// 4s and capped at 10s, matching the plugin this client grew out of.
const (
	DefaultMaxAttempts = 3
	DefaultMultiplier  = 1 * time.Second
	DefaultMinDelay    = 4 * time.Second
	DefaultMaxDelay    = 10 * time.Second
)

// Retrying wraps a Streamer with bounded retry on transient establishment
// failures. Retries never apply past establishment: once a body has been
// handed to the caller, read errors are the caller's to surface, since
// partial output may already have been emitted and must not be duplicated.
type Retrying struct {
	next        Streamer
	maxAttempts int
	multiplier  time.Duration
	minDelay    time.Duration
	maxDelay    time.Duration
}

// RetryOption configures a Retrying streamer.
type RetryOption func(*Retrying)

// WithMaxAttempts sets the total attempt budget (including the first).
func WithMaxAttempts(n int) RetryOption {
	return func(r *Retrying) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

// WithBackoff sets the exponential wait parameters.
func WithBackoff(multiplier, minDelay, maxDelay time.Duration) RetryOption {
	return func(r *Retrying) {
		r.multiplier = multiplier
		r.minDelay = minDelay
		r.maxDelay = maxDelay
	}
}

// NewRetrying wraps next with the default retry policy.
func NewRetrying(next Streamer, opts ...RetryOption) *Retrying {
	r := &Retrying{
		next:        next,
		maxAttempts: DefaultMaxAttempts,
		multiplier:  DefaultMultiplier,
		minDelay:    DefaultMinDelay,
		maxDelay:    DefaultMaxDelay,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Open attempts to establish the stream, retrying transient failures.
// Non-retryable errors are returned as-is; after the attempt budget is
// spent an *ExhaustedError wrapping the last failure is returned.
func (r *Retrying) Open(ctx context.Context, p *Payload) (io.ReadCloser, error) {
	var lastErr error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		if attempt > 1 {
			delay := r.backoff(attempt)
			logger.DebugContext(ctx, "retrying stream establishment",
				"attempt", attempt, "delay", delay, "cause", lastErr)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		body, err := r.next.Open(ctx, p)
		if err == nil {
			return body, nil
		}
		if !IsRetryable(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, &ExhaustedError{Attempts: r.maxAttempts, Err: lastErr}
}

// backoff computes the wait before the given attempt (attempt >= 2),
// growing exponentially and clamped to [minDelay, maxDelay].
func (r *Retrying) backoff(attempt int) time.Duration {
	delay := r.multiplier << uint(attempt-2)
	if delay < r.minDelay {
		delay = r.minDelay
	}
	if delay > r.maxDelay {
		delay = r.maxDelay
	}
	return delay
}
