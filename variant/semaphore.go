package variant

import (
	"github.com/arloliu/submux"
	"github.com/arloliu/submux/promise"
	"github.com/arloliu/submux/types"
)

// SemaphoreChannel returns the channel carrying release messages for
// semaphore name. Each message is the number of permits released.
func SemaphoreChannel(name string) string {
	return "submux_sc:{" + name + "}"
}

// SemaphoreEntry is the shared waiting state of one semaphore.
type SemaphoreEntry struct {
	*submux.BaseEntry[*SemaphoreEntry]
	waiters
}

// SemaphorePubSub is the submux.Variant for semaphores.
type SemaphorePubSub struct {
	logger types.Logger
}

var _ submux.Variant[*SemaphoreEntry] = (*SemaphorePubSub)(nil)

// NewSemaphorePubSub creates the semaphore variant.
func NewSemaphorePubSub(opts ...Option) *SemaphorePubSub {
	o := defaultOptions(opts)

	return &SemaphorePubSub{logger: o.logger}
}

// CreateEntry implements submux.Variant.
func (v *SemaphorePubSub) CreateEntry(p *promise.Promise[*SemaphoreEntry]) *SemaphoreEntry {
	return &SemaphoreEntry{BaseEntry: submux.NewBaseEntry(p)}
}

// OnMessage hands the released permits to up to that many waiters.
func (v *SemaphorePubSub) OnMessage(entry *SemaphoreEntry, message any) {
	n, ok := messageValue(message)
	if !ok || n < 0 {
		v.logger.Warn("unexpected semaphore message", "message", message)
		return
	}

	entry.runN(int(n))
	entry.latch.release(int(n))
}
