package cache

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is returned when a remote backend cannot be reached.
var ErrUnavailable = errors.New("cache backend unavailable")

type transientError struct{ err error }

func (e transientError) Error() string { return e.err.Error() }
func (e transientError) Unwrap() error { return e.err }

// Retryable marks err as transient so a [Retry] tries again. Context errors
// pass through unmarked.
func Retryable(err error) error {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return transientError{err}
}

// IsRetryable reports whether err was marked by [Retryable].
func IsRetryable(err error) bool {
	var t transientError
	return errors.As(err, &t)
}

// Retry is the retry policy of the remote backends. Delay doubles after
// every failed attempt.
type Retry struct {
	Attempts int
	Delay    time.Duration
}

// DefaultRetry makes three attempts starting at 200ms.
var DefaultRetry = Retry{Attempts: 3, Delay: 200 * time.Millisecond}

func (r Retry) orDefault() Retry {
	if r.Attempts <= 0 {
		return DefaultRetry
	}
	return r
}

// Do calls fn until it succeeds, returns an error not marked by
// [Retryable], or runs out of attempts. It gives up early when ctx ends.
func (r Retry) Do(ctx context.Context, fn func() error) error {
	r = r.orDefault()
	delay := r.Delay
	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(); err == nil || !IsRetryable(err) || attempt >= r.Attempts {
			return err
		}
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay *= 2
	}
}
