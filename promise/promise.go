// Package promise provides a one-shot completion value with attachable listeners.
//
// A Promise completes exactly once, with either a value or an error. Any
// number of listeners may be attached before or after completion; each one
// is invoked exactly once with the outcome.
package promise

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrNilError is the failure recorded when TryFail is called with a nil error.
	ErrNilError = errors.New("promise failed with nil error")

	// ErrPending is returned by Result while the promise has not completed.
	ErrPending = errors.New("promise not completed")
)

// Promise is a one-shot completion value.
//
// The zero value is not usable; create promises with New.
type Promise[T any] struct {
	mu        sync.Mutex
	done      chan struct{}
	completed bool
	value     T
	err       error
	listeners []func(T, error)
}

// New creates an incomplete promise.
func New[T any]() *Promise[T] {
	return &Promise[T]{done: make(chan struct{})}
}

// Succeeded creates a promise already completed with v.
func Succeeded[T any](v T) *Promise[T] {
	p := New[T]()
	p.TrySucceed(v)

	return p
}

// Failed creates a promise already failed with err.
func Failed[T any](err error) *Promise[T] {
	p := New[T]()
	p.TryFail(err)

	return p
}

// TrySucceed completes p with v.
//
// Returns false when p was already completed; the earlier outcome stands.
func (p *Promise[T]) TrySucceed(v T) bool {
	return p.complete(v, nil)
}

// TryFail completes p with err.
//
// Returns false when p was already completed; the earlier outcome stands.
func (p *Promise[T]) TryFail(err error) bool {
	if err == nil {
		err = ErrNilError
	}
	var zero T

	return p.complete(zero, err)
}

func (p *Promise[T]) complete(v T, err error) bool {
	p.mu.Lock()
	if p.completed {
		p.mu.Unlock()
		return false
	}
	p.completed = true
	p.value = v
	p.err = err
	listeners := p.listeners
	p.listeners = nil
	close(p.done)
	p.mu.Unlock()

	// Listeners run outside the lock so they may attach to or complete
	// other promises, including this one.
	for _, fn := range listeners {
		fn(v, err)
	}

	return true
}

// OnComplete attaches fn to p.
//
// fn is invoked exactly once with p's outcome: by the completing goroutine if
// p is still pending, or immediately by the caller if p has already completed.
func (p *Promise[T]) OnComplete(fn func(T, error)) {
	p.mu.Lock()
	if !p.completed {
		p.listeners = append(p.listeners, fn)
		p.mu.Unlock()

		return
	}
	v, err := p.value, p.err
	p.mu.Unlock()

	fn(v, err)
}

// Done returns a channel closed when p completes.
func (p *Promise[T]) Done() <-chan struct{} {
	return p.done
}

// IsDone reports whether p has completed.
func (p *Promise[T]) IsDone() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Result returns p's outcome without waiting, or ErrPending while p is pending.
func (p *Promise[T]) Result() (T, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.completed {
		var zero T
		return zero, ErrPending
	}

	return p.value, p.err
}

// Await blocks until p completes or ctx ends.
//
// Parameters:
//   - ctx: Context bounding the wait
//
// Returns:
//   - T: The completion value
//   - error: The completion error, or ctx.Err() when ctx ends first
func (p *Promise[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-p.done:
		return p.Result()
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Transfer forwards from's outcome into to once from completes.
//
// If to was already completed by someone else, the forwarded outcome is
// dropped.
func Transfer[T any](from, to *Promise[T]) {
	from.OnComplete(func(v T, err error) {
		if err != nil {
			to.TryFail(err)
			return
		}
		to.TrySucceed(v)
	})
}
