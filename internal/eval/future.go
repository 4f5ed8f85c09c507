package eval

import (
	"context"
	"sync"
)

// Future is a single-assignment result that completes exactly once. It is
// the adapter's promise type: handlers return one immediately and complete
// it from a worker goroutine.
type Future[T any] struct {
	done      chan struct{}
	closeOnce sync.Once
	result    T
	err       error
}

// NewFuture creates an incomplete future.
func NewFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// CompletedFuture creates a future already completed with v.
func CompletedFuture[T any](v T) *Future[T] {
	f := NewFuture[T]()
	f.Complete(v)
	return f
}

// FailedFuture creates a future already failed with err.
func FailedFuture[T any](err error) *Future[T] {
	f := NewFuture[T]()
	f.Fail(err)
	return f
}

// Complete resolves the future with a result. Later completions are ignored.
func (f *Future[T]) Complete(v T) {
	f.closeOnce.Do(func() {
		f.result = v
		close(f.done)
	})
}

// Fail resolves the future with an error. Later completions are ignored.
func (f *Future[T]) Fail(err error) {
	f.closeOnce.Do(func() {
		f.err = err
		close(f.done)
	})
}

// Done returns a channel closed when the future resolves.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the future resolves or the context is done.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
