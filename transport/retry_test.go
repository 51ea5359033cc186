package transport

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStreamer fails a configurable number of times before succeeding.
type fakeStreamer struct {
	failures int
	failWith error
	attempts int
}

func (f *fakeStreamer) Open(ctx context.Context, p *Payload) (io.ReadCloser, error) {
	f.attempts++
	if f.attempts <= f.failures {
		return nil, f.failWith
	}
	return io.NopCloser(strings.NewReader("data: [DONE]\n\n")), nil
}

func fastRetry(next Streamer) *Retrying {
	return NewRetrying(next, WithBackoff(time.Millisecond, time.Millisecond, 5*time.Millisecond))
}

func TestRetryingSucceedsAfterTransientFailures(t *testing.T) {
	fake := &fakeStreamer{failures: 2, failWith: &ConnError{Err: errors.New("connection refused")}}
	r := fastRetry(fake)

	body, err := r.Open(context.Background(), &Payload{})
	require.NoError(t, err)
	defer body.Close()

	assert.Equal(t, 3, fake.attempts)
}

func TestRetryingExhaustsAfterMaxAttempts(t *testing.T) {
	cause := &ConnError{Err: errors.New("connection refused")}
	fake := &fakeStreamer{failures: 10, failWith: cause}
	r := fastRetry(fake)

	_, err := r.Open(context.Background(), &Payload{})

	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 3, exhausted.Attempts)
	assert.Equal(t, 3, fake.attempts, "no attempts beyond the budget")
	assert.ErrorIs(t, err, cause.Err)
}

func TestRetryingHonorsConfiguredMaxAttempts(t *testing.T) {
	fake := &fakeStreamer{failures: 10, failWith: &ConnError{Err: errors.New("connection refused")}}
	r := NewRetrying(fake,
		WithMaxAttempts(2),
		WithBackoff(time.Millisecond, time.Millisecond, 5*time.Millisecond))

	_, err := r.Open(context.Background(), &Payload{})

	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 2, exhausted.Attempts)
	assert.Equal(t, 2, fake.attempts)
}

func TestRetryingDoesNotRetryNonRetryableErrors(t *testing.T) {
	cause := &StatusError{StatusCode: 401, Message: "bad password", Err: ErrInvalidCredential}
	fake := &fakeStreamer{failures: 10, failWith: cause}
	r := fastRetry(fake)

	_, err := r.Open(context.Background(), &Payload{})
	require.ErrorIs(t, err, ErrInvalidCredential)
	assert.Equal(t, 1, fake.attempts)
}

func TestRetryingRetriesRetryableStatus(t *testing.T) {
	fake := &fakeStreamer{failures: 1, failWith: &StatusError{StatusCode: 503, Message: "overloaded", Retryable: true}}
	r := fastRetry(fake)

	body, err := r.Open(context.Background(), &Payload{})
	require.NoError(t, err)
	body.Close()
	assert.Equal(t, 2, fake.attempts)
}

func TestRetryingStopsOnContextCancellation(t *testing.T) {
	fake := &fakeStreamer{failures: 10, failWith: &ConnError{Err: errors.New("connection refused")}}
	r := NewRetrying(fake, WithBackoff(time.Second, time.Minute, time.Minute))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := r.Open(ctx, &Payload{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, fake.attempts, "cancellation during backoff must stop further attempts")
}

func TestBackoffClamping(t *testing.T) {
	r := NewRetrying(nil, WithBackoff(time.Second, 4*time.Second, 10*time.Second))

	assert.Equal(t, 4*time.Second, r.backoff(2), "floor applies to early attempts")
	assert.Equal(t, 4*time.Second, r.backoff(3))
	assert.Equal(t, 4*time.Second, r.backoff(4))
	assert.Equal(t, 8*time.Second, r.backoff(5))
	assert.Equal(t, 10*time.Second, r.backoff(6), "cap applies to late attempts")
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.False(t, IsRetryable(context.Canceled))
	assert.False(t, IsRetryable(context.DeadlineExceeded))
	assert.False(t, IsRetryable(&StatusError{StatusCode: 422}))
	assert.True(t, IsRetryable(&StatusError{StatusCode: 503, Retryable: true}))
	assert.True(t, IsRetryable(&ConnError{Err: errors.New("connection refused")}))
}
