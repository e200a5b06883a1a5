package submux

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/arloliu/submux/codec"
	"github.com/arloliu/submux/internal/logger"
	"github.com/arloliu/submux/internal/metrics"
	"github.com/arloliu/submux/promise"
	"github.com/arloliu/submux/types"
	"github.com/puzpuzpuz/xsync/v4"
)

// Variant supplies the per-variant behavior of a PubSub.
//
// Implementations are stateless with respect to the registry; all variant
// state lives in the entries they create.
type Variant[E Entry[E]] interface {
	// CreateEntry builds a new entry around p with zero references.
	CreateEntry(p *promise.Promise[E]) E

	// OnMessage handles a message delivered on the entry's channel.
	OnMessage(entry E, message any)
}

// PubSub multiplexes logical subscriptions onto shared channel subscriptions.
//
// Every registry change for a channel happens while holding that channel's
// mutex, so callers never block and never race. Only the first Subscribe and
// the last Unsubscribe of an entry reach the transport.
type PubSub[E Entry[E]] struct {
	transport types.Transport
	variant   Variant[E]
	codec     types.Codec
	logger    types.Logger
	metrics   types.CoordinatorMetrics

	entries *xsync.Map[string, *registration[E]]
}

// registration pairs a registered entry with the listener subscribed for it.
type registration[E Entry[E]] struct {
	entry    E
	listener *listener[E]
}

// New creates a PubSub over transport.
//
// Parameters:
//   - transport: Channel transport owning the per-channel mutexes
//   - variant: Entry factory and message handler
//   - opts: Optional logger, metrics and codec
//
// Returns:
//   - *PubSub[E]: Coordinator with an empty registry
//   - error: ErrTransportRequired or ErrVariantRequired
//
// Example:
//
//	conn, _ := subscription.NewConn(nc, subscription.Config{})
//	locks, err := submux.New(conn, variant.NewLockPubSub())
func New[E Entry[E]](transport types.Transport, v Variant[E], opts ...Option) (*PubSub[E], error) {
	if transport == nil {
		return nil, ErrTransportRequired
	}
	if v == nil {
		return nil, ErrVariantRequired
	}

	o := options{
		logger:  logger.NewNop(),
		metrics: metrics.NewNop(),
		codec:   codec.Long,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &PubSub[E]{
		transport: transport,
		variant:   v,
		codec:     o.codec,
		logger:    o.logger,
		metrics:   o.metrics,
		entries:   xsync.NewMap[string, *registration[E]](),
	}, nil
}

// Subscribe joins or creates the entry entryName on channelName.
//
// The returned promise is this caller's own; it completes with the shared
// entry once the channel subscription is confirmed, or fails if the transport
// rejects it. Subscribe never blocks. Each successful Subscribe must be
// balanced by one Unsubscribe.
func (ps *PubSub[E]) Subscribe(entryName, channelName string) *promise.Promise[E] {
	result := promise.New[E]()
	mu := ps.transport.Mutex(channelName)
	queued := time.Now()

	mu.Acquire(func() {
		ps.metrics.RecordMutexWait(time.Since(queued).Seconds())

		if reg, ok := ps.entries.Load(entryName); ok {
			entry := reg.entry
			entry.Acquire()
			mu.Release()
			ps.metrics.RecordSubscribe(types.SubscribeJoined)
			promise.Transfer(entry.Promise(), result)

			return
		}

		entry := ps.variant.CreateEntry(promise.New[E]())
		entry.Acquire()
		l := newListener(ps, entryName, channelName, entry)
		if err := ps.register(entryName, &registration[E]{entry: entry, listener: l}); err != nil {
			ps.fatal(err, "entry", entryName, "channel", channelName)
		}
		ps.metrics.RecordSubscribe(types.SubscribeCreated)
		ps.metrics.SetActiveEntries(ps.entries.Size())
		ps.logger.Debug("subscribing channel", "entry", entryName, "channel", channelName)

		promise.Transfer(entry.Promise(), result)

		// The transport now owns mu and releases it once the subscribe is
		// acknowledged or has failed.
		ps.transport.Subscribe(ps.codec, channelName, l, mu)
	})

	return result
}

// Unsubscribe drops one reference to entry.
//
// When the last reference goes, the entry leaves the registry and the channel
// is unsubscribed; the channel mutex stays held until the transport has the
// unsubscribe acknowledged, so a new Subscribe cannot overtake it.
func (ps *PubSub[E]) Unsubscribe(entry E, entryName, channelName string) {
	mu := ps.transport.Mutex(channelName)
	queued := time.Now()

	mu.Acquire(func() {
		ps.metrics.RecordMutexWait(time.Since(queued).Seconds())

		// Reference counts only change under mu, so Count is stable here.
		if entry.Count() > 1 {
			entry.Release()
			mu.Release()
			ps.metrics.RecordUnsubscribe(types.UnsubscribeReleased)

			return
		}

		// A failed subscribe already retired the entry and the channel.
		if _, err := entry.Promise().Result(); err != nil && !errors.Is(err, promise.ErrPending) {
			entry.Release()
			mu.Release()
			ps.metrics.RecordUnsubscribe(types.UnsubscribeReleased)

			return
		}

		// Retire before dropping the last reference so the registry never
		// holds an entry without references.
		reg, err := ps.retire(entryName, entry)
		if err != nil {
			ps.fatal(err, "entry", entryName, "channel", channelName)
		}
		entry.Release()
		ps.metrics.RecordUnsubscribe(types.UnsubscribeRetired)
		ps.metrics.SetActiveEntries(ps.entries.Size())
		ps.logger.Debug("unsubscribing channel", "entry", entryName, "channel", channelName)

		// The transport now owns mu and releases it once the unsubscribe is acknowledged.
		ps.transport.Unsubscribe(channelName, reg.listener, mu)
	})
}

// Entry returns the registered entry for entryName.
func (ps *PubSub[E]) Entry(entryName string) (E, bool) {
	reg, ok := ps.entries.Load(entryName)
	if !ok {
		var zero E
		return zero, false
	}

	return reg.entry, true
}

// Len returns the number of registered entries.
func (ps *PubSub[E]) Len() int {
	return ps.entries.Size()
}

// EntryNames returns the registered entry names in sorted order.
func (ps *PubSub[E]) EntryNames() []string {
	names := make([]string, 0, ps.entries.Size())
	ps.entries.Range(func(name string, _ *registration[E]) bool {
		names = append(names, name)
		return true
	})
	slices.Sort(names)

	return names
}

// subscribeFailed retires entry after the transport rejected its subscribe
// and fails every waiter. Runs under the channel mutex.
func (ps *PubSub[E]) subscribeFailed(entryName, channelName string, entry E, err error) {
	if _, rerr := ps.retire(entryName, entry); rerr != nil {
		ps.fatal(rerr, "entry", entryName, "channel", channelName)
	}
	ps.metrics.RecordSubscribe(types.SubscribeFailed)
	ps.metrics.SetActiveEntries(ps.entries.Size())
	ps.logger.Warn("channel subscribe failed",
		"entry", entryName,
		"channel", channelName,
		"refs", entry.Count(),
		"error", err,
	)

	entry.Promise().TryFail(err)
}

// register stores a freshly created entry. The channel mutex already excludes
// other writers, so finding an entry here means the registry is corrupt.
func (ps *PubSub[E]) register(entryName string, reg *registration[E]) error {
	if old, loaded := ps.entries.LoadOrStore(entryName, reg); loaded {
		return fmt.Errorf("%w: entry %q already registered with %d references",
			ErrInvariantViolation, entryName, old.entry.Count())
	}

	return nil
}

// retire removes entryName only if it still maps to entry and returns the
// removed registration.
func (ps *PubSub[E]) retire(entryName string, entry E) (*registration[E], error) {
	var (
		found  *registration[E]
		loaded bool
	)
	ps.entries.Compute(entryName, func(old *registration[E], ok bool) (*registration[E], xsync.ComputeOp) {
		found, loaded = old, ok
		if ok && old.entry == entry {
			return old, xsync.DeleteOp
		}

		return old, xsync.CancelOp
	})

	switch {
	case !loaded:
		return nil, fmt.Errorf("%w: entry %q missing from registry", ErrInvariantViolation, entryName)
	case found.entry != entry:
		return nil, fmt.Errorf("%w: entry %q maps to a different entry", ErrInvariantViolation, entryName)
	default:
		return found, nil
	}
}

// fatal reports a broken registry invariant. It never returns.
func (ps *PubSub[E]) fatal(err error, keysAndValues ...any) {
	ps.logger.Error("subscription registry corrupted", append(keysAndValues, "error", err)...)
	panic(err)
}
