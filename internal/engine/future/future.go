// Package future provides a single-assignment result shared by many waiters.
package future

import (
	"context"
	"sync"
)

// Future holds a value or error that is resolved exactly once.
type Future[T any] struct {
	done chan struct{}
	once sync.Once
	val  T
	err  error
}

// New returns an unresolved future.
func New[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Resolved returns a future that already holds val and err.
func Resolved[T any](val T, err error) *Future[T] {
	f := New[T]()
	f.Resolve(val, err)
	return f
}

// Resolve stores the outcome and wakes every waiter. Only the first call has an effect.
func (f *Future[T]) Resolve(val T, err error) {
	f.once.Do(func() {
		f.val = val
		f.err = err
		close(f.done)
	})
}

// Done is closed once the future is resolved.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the future is resolved or ctx is done. A cancelled wait does not
// affect the future or other waiters.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
