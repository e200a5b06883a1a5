// Package variant provides the subscription variants used by distributed
// synchronizers: locks, semaphores and count-down latches.
//
// Each variant is a submux.Variant: it creates entries that carry the waiting
// state of one synchronizer and reacts to the int64 messages published on the
// synchronizer's channel when it is released.
//
//	locks, _ := submux.New(conn, variant.NewLockPubSub())
//	entry, _ := locks.Subscribe(name, variant.LockChannel(name)).Await(ctx)
//	defer locks.Unsubscribe(entry, name, variant.LockChannel(name))
//
//	for !tryLock() {
//	    if err := entry.Wait(ctx); err != nil {
//	        return err
//	    }
//	}
package variant
