// Package asyncx provides small concurrency helpers: fire-and-forget
// goroutines, futures, and fan-out combinators used by the readiness
// checks and notification dispatch.
package asyncx

import (
	"context"
	"sync"
)

type outcome[T any] struct {
	value T
	err   error
}

// Future is the pending result of a computation started with Run.
type Future[T any] struct {
	ch  chan outcome[T]
	res *outcome[T]
	mu  sync.Mutex
}

// Run starts fn in a goroutine immediately and returns its Future.
func Run[T any](fn func() (T, error)) *Future[T] {
	f := &Future[T]{ch: make(chan outcome[T], 1)}
	go func() {
		v, err := fn()
		f.ch <- outcome[T]{value: v, err: err}
	}()
	return f
}

// Await blocks for the result. Safe to call more than once; later calls
// return the cached result.
func (f *Future[T]) Await() (T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.res == nil {
		r := <-f.ch
		f.res = &r
	}
	return f.res.value, f.res.err
}

// Do runs fn in a goroutine and forgets it.
func Do(fn func()) { go fn() }

// Result is the settled outcome of one function passed to AllSettled.
type Result[T any] struct {
	Value T
	Err   error
}

// All runs every fn concurrently and waits for all of them. Results keep
// input order. The first non-nil error is returned, but every goroutine is
// awaited before returning.
func All[T any](ctx context.Context, fns ...func(context.Context) (T, error)) ([]T, error) {
	results := make([]T, len(fns))
	errs := make([]error, len(fns))

	var wg sync.WaitGroup
	wg.Add(len(fns))
	for i, fn := range fns {
		go func(i int, fn func(context.Context) (T, error)) {
			defer wg.Done()
			results[i], errs[i] = fn(ctx)
		}(i, fn)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

// AllSettled runs every fn concurrently and always returns one Result per
// fn, never short-circuiting on error.
func AllSettled[T any](ctx context.Context, fns ...func(context.Context) (T, error)) []Result[T] {
	results := make([]Result[T], len(fns))

	var wg sync.WaitGroup
	wg.Add(len(fns))
	for i, fn := range fns {
		go func(i int, fn func(context.Context) (T, error)) {
			defer wg.Done()
			v, err := fn(ctx)
			results[i] = Result[T]{Value: v, Err: err}
		}(i, fn)
	}
	wg.Wait()
	return results
}
