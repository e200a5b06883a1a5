// Package asyncmutex provides a non-blocking mutual exclusion gate.
//
// A Mutex never parks the calling goroutine. Callers hand it a continuation
// with Acquire; the continuation runs on its own goroutine once it owns the
// mutex and must call Release (directly, or by handing the obligation to
// another component) when its critical section ends.
//
// Continuations run one at a time, in the order Acquire was called:
//
//	mu.Acquire(func() {
//	    // exclusive section
//	    mu.Release()
//	})
//
// Ownership is not tied to a goroutine. A continuation may pass the mutex to
// an asynchronous operation that releases it later, which is how channel
// subscriptions stay locked until the server acknowledges them.
//
// Pool maps keys (channel names) to a fixed set of mutex stripes.
package asyncmutex
