package variant

import (
	"context"

	"github.com/arloliu/submux"
	"github.com/arloliu/submux/promise"
	"github.com/arloliu/submux/types"
)

// Messages published on a count-down latch channel.
const (
	// ZeroCountMessage announces that the count reached zero.
	ZeroCountMessage int64 = 0

	// NewCountMessage announces that the latch was armed with a new count.
	NewCountMessage int64 = 1
)

// CountDownLatchChannel returns the channel carrying messages for latch name.
func CountDownLatchChannel(name string) string {
	return "submux_countdownlatch__channel:{" + name + "}"
}

// CountDownLatchEntry is the shared waiting state of one count-down latch.
//
// The local gate starts closed and mirrors the remote count: it opens on
// ZeroCountMessage and closes again on NewCountMessage.
type CountDownLatchEntry struct {
	*submux.BaseEntry[*CountDownLatchEntry]
	waiters

	gate *gate
}

// Await blocks until the latch opens or ctx is done.
func (e *CountDownLatchEntry) Await(ctx context.Context) error {
	return e.gate.wait(ctx)
}

// IsOpen reports whether a zero count was observed since the last new count.
func (e *CountDownLatchEntry) IsOpen() bool {
	return e.gate.opened()
}

// CountDownLatchPubSub is the submux.Variant for count-down latches.
type CountDownLatchPubSub struct {
	logger types.Logger
}

var _ submux.Variant[*CountDownLatchEntry] = (*CountDownLatchPubSub)(nil)

// NewCountDownLatchPubSub creates the count-down latch variant.
func NewCountDownLatchPubSub(opts ...Option) *CountDownLatchPubSub {
	o := defaultOptions(opts)

	return &CountDownLatchPubSub{logger: o.logger}
}

// CreateEntry implements submux.Variant.
func (v *CountDownLatchPubSub) CreateEntry(p *promise.Promise[*CountDownLatchEntry]) *CountDownLatchEntry {
	return &CountDownLatchEntry{BaseEntry: submux.NewBaseEntry(p), gate: newGate()}
}

// OnMessage opens the latch on a zero count and closes it on a new count.
func (v *CountDownLatchPubSub) OnMessage(entry *CountDownLatchEntry, message any) {
	n, ok := messageValue(message)
	if !ok {
		v.logger.Warn("unexpected latch message", "message", message)
		return
	}

	switch n {
	case ZeroCountMessage:
		entry.runAll()
		entry.gate.open()
		entry.latch.releaseWaiting()
	case NewCountMessage:
		entry.gate.close()
	default:
		v.logger.Warn("unknown latch message", "message", n)
	}
}
