package pdf

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"
)

// ErrPageTimeout is returned when a page does not finish within its budget
var ErrPageTimeout = stderrors.New("page extraction timed out")

// guard runs fn in its own goroutine with panic recovery and an optional
// timeout. A timed out fn keeps running in the background; its result is
// discarded.
func guard[T any](ctx context.Context, timeout time.Duration, fn func() (T, error)) (T, error) {
	var zero T

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	type outcome struct {
		value T
		err   error
	}

	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("panic: %v", r)}
			}
		}()

		value, err := fn()
		done <- outcome{value: value, err: err}
	}()

	select {
	case res := <-done:
		return res.value, res.err
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded && timeout > 0 {
			return zero, fmt.Errorf("%w after %v", ErrPageTimeout, timeout)
		}
		return zero, ctx.Err()
	}
}
