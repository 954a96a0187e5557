package dispatch

import (
	"context"
)

// Future holds the single outcome of an asynchronous call: a value or an
// error, never both.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Resolved returns a future that is already complete.
func Resolved[T any](v T, err error) *Future[T] {
	f := newFuture[T]()
	f.resolve(v, err)
	return f
}

func (f *Future[T]) resolve(v T, err error) {
	f.value, f.err = v, err
	close(f.done)
}

func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the future resolves or ctx ends.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Run starts call on its own goroutine so the loop never waits on I/O. When
// call returns, then is posted to the loop with the outcome, and the future
// resolves once then has run. Completions are therefore applied in the order
// they arrive, not the order calls were started.
func Run[T any](l *Loop, ctx context.Context, call func(context.Context) (T, error), then func(T, error)) *Future[T] {
	f := newFuture[T]()

	go func() {
		v, err := call(ctx)
		posted := l.Post(func() {
			if then != nil {
				then(v, err)
			}
			f.resolve(v, err)
		})
		if posted != nil {
			var zero T
			f.resolve(zero, posted)
		}
	}()

	return f
}
