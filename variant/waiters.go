package variant

import (
	"context"
	"sync"
)

// waiters holds the callbacks and blocked goroutines waiting for a release.
type waiters struct {
	mu        sync.Mutex
	nextID    uint64
	callbacks []callback

	latch signal
}

type callback struct {
	id uint64
	fn func()
}

// AddListener queues fn to run on a future release message. The returned
// function removes fn if it has not run yet and reports whether it did so.
func (w *waiters) AddListener(fn func()) (remove func() bool) {
	w.mu.Lock()
	w.nextID++
	id := w.nextID
	w.callbacks = append(w.callbacks, callback{id: id, fn: fn})
	w.mu.Unlock()

	return func() bool {
		w.mu.Lock()
		defer w.mu.Unlock()

		for i, cb := range w.callbacks {
			if cb.id == id {
				w.callbacks = append(w.callbacks[:i:i], w.callbacks[i+1:]...)
				return true
			}
		}

		return false
	}
}

// Listeners returns the number of queued callbacks.
func (w *waiters) Listeners() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return len(w.callbacks)
}

// Wait blocks until a release message hands this goroutine a permit or ctx is done.
func (w *waiters) Wait(ctx context.Context) error {
	return w.latch.acquire(ctx)
}

// TryWait consumes a pending permit without blocking.
func (w *waiters) TryWait() bool {
	return w.latch.tryAcquire()
}

// Waiting returns the number of goroutines blocked in Wait.
func (w *waiters) Waiting() int {
	return w.latch.waiting()
}

// runOne runs the oldest queued callback, if any.
func (w *waiters) runOne() {
	w.runN(1)
}

// runN runs up to n queued callbacks in order.
func (w *waiters) runN(n int) {
	w.mu.Lock()
	if n > len(w.callbacks) {
		n = len(w.callbacks)
	}
	run := make([]callback, n)
	copy(run, w.callbacks[:n])
	w.callbacks = w.callbacks[n:]
	w.mu.Unlock()

	for _, cb := range run {
		cb.fn()
	}
}

// runAll runs every queued callback.
func (w *waiters) runAll() {
	w.mu.Lock()
	run := w.callbacks
	w.callbacks = nil
	w.mu.Unlock()

	for _, cb := range run {
		cb.fn()
	}
}
