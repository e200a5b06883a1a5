package submux

import (
	"sync/atomic"

	"github.com/arloliu/submux/promise"
)

// Entry is the shared handle of one logical subscription.
//
// Its reference count tracks the callers sharing the underlying channel
// subscription, and its promise completes with the entry itself once the
// subscription is confirmed. Concrete variants embed BaseEntry and add their
// own state. Entries are compared by identity, so E is normally a pointer.
type Entry[E any] interface {
	comparable

	// Acquire adds one reference.
	Acquire()

	// Release drops one reference and returns the remaining count.
	Release() int

	// Count returns the current reference count.
	Count() int

	// Promise returns the completion value shared by every subscriber.
	Promise() *promise.Promise[E]
}

// BaseEntry implements the bookkeeping part of Entry.
//
// Embed a pointer to it in a variant entry:
//
//	type LockEntry struct {
//	    *submux.BaseEntry[*LockEntry]
//	    // variant state
//	}
type BaseEntry[E any] struct {
	refs    atomic.Int64
	promise *promise.Promise[E]
}

// NewBaseEntry creates the embedded part of an entry with zero references.
func NewBaseEntry[E any](p *promise.Promise[E]) *BaseEntry[E] {
	return &BaseEntry[E]{promise: p}
}

// Acquire adds one reference.
func (b *BaseEntry[E]) Acquire() {
	b.refs.Add(1)
}

// Release drops one reference and returns the remaining count.
//
// Releasing more references than were acquired is a bookkeeping bug and
// panics with ErrNegativeRefCount; the count is never left negative.
func (b *BaseEntry[E]) Release() int {
	n := b.refs.Add(-1)
	if n < 0 {
		b.refs.Add(1)
		panic(ErrNegativeRefCount)
	}

	return int(n)
}

// Count returns the current reference count.
func (b *BaseEntry[E]) Count() int {
	return int(b.refs.Load())
}

// Promise returns the entry's completion value.
func (b *BaseEntry[E]) Promise() *promise.Promise[E] {
	return b.promise
}
