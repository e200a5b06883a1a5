package variant

import (
	"github.com/arloliu/submux"
	"github.com/arloliu/submux/promise"
	"github.com/arloliu/submux/types"
)

// Messages published on a lock channel.
const (
	// UnlockMessage announces that an exclusive lock was released.
	UnlockMessage int64 = 0

	// ReadUnlockMessage announces that a read lock was released; every
	// waiter may retry.
	ReadUnlockMessage int64 = 1
)

// LockChannel returns the channel carrying unlock messages for lock name.
func LockChannel(name string) string {
	return "submux_lock__channel:{" + name + "}"
}

// LockEntry is the shared waiting state of one lock.
type LockEntry struct {
	*submux.BaseEntry[*LockEntry]
	waiters
}

// LockPubSub is the submux.Variant for locks.
type LockPubSub struct {
	logger types.Logger
}

var _ submux.Variant[*LockEntry] = (*LockPubSub)(nil)

// NewLockPubSub creates the lock variant.
func NewLockPubSub(opts ...Option) *LockPubSub {
	o := defaultOptions(opts)

	return &LockPubSub{logger: o.logger}
}

// CreateEntry implements submux.Variant.
func (v *LockPubSub) CreateEntry(p *promise.Promise[*LockEntry]) *LockEntry {
	return &LockEntry{BaseEntry: submux.NewBaseEntry(p)}
}

// OnMessage wakes one waiter on unlock and every waiter on read unlock.
func (v *LockPubSub) OnMessage(entry *LockEntry, message any) {
	n, ok := messageValue(message)
	if !ok {
		v.logger.Warn("unexpected lock message", "message", message)
		return
	}

	switch n {
	case UnlockMessage:
		entry.runOne()
		entry.latch.release(1)
	case ReadUnlockMessage:
		entry.runAll()
		entry.latch.releaseWaiting()
	default:
		v.logger.Warn("unknown lock message", "message", n)
	}
}
