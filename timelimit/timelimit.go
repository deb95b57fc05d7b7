// Package timelimit bounds the wall-clock time of a single call.
//
// The guarded call runs on its own goroutine while the caller waits for it
// up to a deadline. Go cannot kill a goroutine: when the deadline passes the
// caller is released and the worker is abandoned. Its context is cancelled so
// cooperative code can stop early, and whatever it eventually returns is
// dropped. A caller must read a timeout as "this party is faulted", not as
// "the computation has stopped".
package timelimit

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"
)

var ErrTimeout = errors.New("time limit exceeded")

// PanicError is returned when the guarded call panics. The panic is
// contained in the worker so it never brings the process down.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap exposes the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

type result[T any] struct {
	value T
	err   error
}

// Run calls fn and waits at most timeout for it to return. A timeout <= 0
// waits without limit. fn's own value and error are returned unchanged.
func Run[T any](ctx context.Context, timeout time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	workerCtx, cancel := context.WithCancel(ctx)
	// Buffered so an abandoned worker can always deliver and exit
	done := make(chan result[T], 1)

	go func() {
		var r result[T]
		defer func() {
			if v := recover(); v != nil {
				r = result[T]{err: &PanicError{Value: v, Stack: debug.Stack()}}
			}
			done <- r
		}()
		r.value, r.err = fn(workerCtx)
	}()

	var deadline <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	select {
	case r := <-done:
		cancel()
		return r.value, r.err
	case <-deadline:
		cancel()
		return zero, fmt.Errorf("%w: %s", ErrTimeout, timeout)
	case <-ctx.Done():
		cancel()
		return zero, ctx.Err()
	}
}

// Do is Run for calls without a result.
func Do(ctx context.Context, timeout time.Duration, fn func(ctx context.Context) error) error {
	_, err := Run(ctx, timeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}
