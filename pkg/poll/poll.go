// Package poll repeatedly fetches the state of a remote job until it reaches
// a terminal value or the attempt budget runs out.
package poll

import (
	"context"
	"time"

	"luxlife-studio/pkg/errutil"
)

// Exhaustion selects what Until returns when no terminal value was seen.
type Exhaustion int

const (
	// ReturnLast hands back the last successfully fetched value.
	ReturnLast Exhaustion = iota
	// Fail returns an *errutil.TimeoutError.
	Fail
)

type Config[T any] struct {
	MaxAttempts int
	// Delay is waited before each attempt. lastErr is the fetch error of the
	// previous attempt, nil on the first attempt or after a successful fetch.
	Delay      func(attempt int, lastErr error) time.Duration
	Done       func(T) bool
	Exhaustion Exhaustion
	// TimeoutCode is carried by the TimeoutError returned under Fail.
	TimeoutCode string
	OnError     func(attempt int, err error)
	Sleep       func(ctx context.Context, d time.Duration) error
}

// Until polls fetch until Done reports true. last is the value already known
// to the caller and is returned unchanged when it is terminal.
func Until[T any](ctx context.Context, last T, fetch func(ctx context.Context) (T, error), c Config[T]) (T, error) {
	if c.Done != nil && c.Done(last) {
		return last, nil
	}

	sleep := c.Sleep
	if sleep == nil {
		sleep = Sleep
	}

	var lastErr error
	for attempt := 0; attempt < c.MaxAttempts; attempt++ {
		if c.Delay != nil {
			if err := sleep(ctx, c.Delay(attempt, lastErr)); err != nil {
				return last, err
			}
		}

		current, err := fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return last, ctx.Err()
			}
			if c.OnError != nil {
				c.OnError(attempt, err)
			}
			lastErr = err
			continue
		}

		lastErr = nil
		last = current
		if c.Done != nil && c.Done(current) {
			return current, nil
		}
	}

	if c.Exhaustion == Fail {
		code := c.TimeoutCode
		if code == "" {
			code = "poll_timeout"
		}
		return last, &errutil.TimeoutError{Code: code, Attempts: c.MaxAttempts}
	}

	return last, nil
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
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

// Linear grows by step per attempt starting at start, capped at max.
func Linear(start, step, max time.Duration) func(int, error) time.Duration {
	return func(attempt int, _ error) time.Duration {
		return min(max, start+time.Duration(attempt)*step)
	}
}
