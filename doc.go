// Package submux multiplexes logical subscriptions onto shared pub/sub channels.
//
// Many callers waiting on the same lock, semaphore or latch need the same
// channel. submux keeps exactly one underlying channel subscription per
// logical entry, counts the callers sharing it, and hands every caller the
// same confirmed entry, no matter whether it arrived before or after the
// subscription was confirmed.
//
// # Quick Start
//
//	nc, _ := nats.Connect(nats.DefaultURL)
//
//	locks, conn, err := submux.NewNATS(nc, submux.DefaultConfig(), variant.NewLockPubSub())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conn.Close(context.Background())
//
//	channel := variant.LockChannel("orders")
//	entry, err := locks.Subscribe("orders", channel).Await(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer locks.Unsubscribe(entry, "orders", channel)
//
//	entry.Wait(ctx) // wakes on the next unlock message
//
// # Concurrency Model
//
// Each channel maps to an asyncmutex.Mutex owned by the transport. Subscribe
// and Unsubscribe queue a continuation on that mutex and return at once; the
// continuation updates the registry and reference count. The first Subscribe
// of an entry and the last Unsubscribe hand the still-held mutex to the
// transport, which releases it only after the server acknowledged the
// command, so subscription changes on a channel never overlap.
//
// Entries complete through promise.Promise: waiters attach before or after
// confirmation and each is notified exactly once.
//
// # Failure Handling
//
// A subscribe rejected by the transport fails every waiter of the entry and
// removes it from the registry. A registry that disagrees with the entry
// being retired is a bug; it is logged and raised as a panic wrapping
// ErrInvariantViolation.
//
// See the examples/ directory for a complete working example.
package submux
