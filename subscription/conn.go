package subscription

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arloliu/submux/asyncmutex"
	"github.com/arloliu/submux/internal/natsutil"
	"github.com/arloliu/submux/types"
	"github.com/nats-io/nats.go"
	"github.com/puzpuzpuz/xsync/v4"
)

// Conn is a channel transport over a NATS connection.
//
// One NATS subscription exists per channel. Listeners registered for an
// already subscribed channel share it and receive every message on it.
type Conn struct {
	nc      *nats.Conn
	cfg     Config
	logger  types.Logger
	metrics types.TransportMetrics
	pool    *asyncmutex.Pool
	retry   *retrier

	channels *xsync.Map[string, *channelSub]

	closed    atomic.Bool
	done      chan struct{}
	closeOnce sync.Once
}

// Compile-time assertion that Conn implements types.Transport.
var _ types.Transport = (*Conn)(nil)

// channelSub is the record of one raw NATS subscription.
type channelSub struct {
	name  string
	codec types.Codec
	sub   *nats.Subscription

	mu        sync.RWMutex
	listeners []types.Listener
}

func (ch *channelSub) add(l types.Listener) {
	ch.mu.Lock()
	ch.listeners = append(ch.listeners, l)
	ch.mu.Unlock()
}

// remove drops l and reports whether it was registered and how many
// listeners remain.
func (ch *channelSub) remove(l types.Listener) (bool, int) {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	i := slices.Index(ch.listeners, l)
	if i < 0 {
		return false, len(ch.listeners)
	}
	ch.listeners = slices.Delete(ch.listeners, i, i+1)

	return true, len(ch.listeners)
}

func (ch *channelSub) snapshot() []types.Listener {
	ch.mu.RLock()
	defer ch.mu.RUnlock()

	return slices.Clone(ch.listeners)
}

// NewConn creates a transport over nc.
//
// Parameters:
//   - nc: Connected NATS connection; the caller keeps ownership
//   - cfg: Transport configuration, zero values use defaults
//
// Returns:
//   - *Conn: Transport ready for use
//   - error: ErrConnectionRequired or ErrInvalidConfig
func NewConn(nc *nats.Conn, cfg Config) (*Conn, error) {
	if nc == nil {
		return nil, types.ErrConnectionRequired
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	c := &Conn{
		nc:       nc,
		cfg:      cfg,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
		pool:     asyncmutex.NewPool(cfg.MutexStripes),
		channels: xsync.NewMap[string, *channelSub](),
		done:     make(chan struct{}),
	}
	c.retry = newRetrier(&c.cfg, c.done)

	return c, nil
}

// Mutex returns the mutex serializing subscription changes for channel.
func (c *Conn) Mutex(channel string) *asyncmutex.Mutex {
	return c.pool.Get(channel)
}

// Subscribe registers listener for channel and issues the NATS SUB if the
// channel is not subscribed yet. It returns immediately; mu is released once
// the listener has been told about the outcome.
func (c *Conn) Subscribe(codec types.Codec, channel string, listener types.Listener, mu *asyncmutex.Mutex) {
	go c.subscribe(codec, channel, listener, mu)
}

func (c *Conn) subscribe(codec types.Codec, channel string, listener types.Listener, mu *asyncmutex.Mutex) {
	defer mu.Release()

	if c.closed.Load() {
		listener.OnError(channel, fmt.Errorf("%w: %s: %w", types.ErrSubscribeFailed, channel, types.ErrClosed))
		return
	}

	if ch, ok := c.channels.Load(channel); ok {
		ch.add(listener)
		c.logger.Debug("joined existing channel subscription", "channel", channel)
		listener.OnStatus(types.StatusSubscribe, channel)

		return
	}

	// The record is visible to the message handler before the SUB goes out,
	// so nothing published after confirmation can miss the listener.
	ch := &channelSub{name: channel, codec: codec, listeners: []types.Listener{listener}}
	c.channels.Store(channel, ch)

	start := time.Now()
	err := c.retry.do(opSubscribe, channel, func() error {
		sub, err := c.nc.Subscribe(channel, func(msg *nats.Msg) { c.dispatch(ch, msg) })
		if err != nil {
			return err
		}
		if err := c.nc.FlushTimeout(c.cfg.SubscribeTimeout); err != nil {
			_ = sub.Unsubscribe()
			return err
		}
		ch.sub = sub

		return nil
	})
	emitCommand(c.metrics, opSubscribe, err, start)

	if err != nil {
		c.channels.Delete(channel)
		c.metrics.SetActiveChannels(c.channels.Size())
		c.logger.Error("channel subscribe failed", "channel", channel, "error", err)

		err = fmt.Errorf("%w: %s: %w", types.ErrSubscribeFailed, channel, err)
		for _, l := range ch.snapshot() {
			l.OnError(channel, err)
		}

		return
	}

	c.metrics.SetActiveChannels(c.channels.Size())
	c.logger.Debug("channel subscribed", "channel", channel, "codec", codec.Name())
	for _, l := range ch.snapshot() {
		l.OnStatus(types.StatusSubscribe, channel)
	}
}

// Unsubscribe removes listener from channel. The NATS UNSUB is issued only
// when listener was the last one on the channel. It returns immediately; mu is
// released once the listener is gone and, for the last one, after the UNSUB
// was confirmed or has failed.
func (c *Conn) Unsubscribe(channel string, listener types.Listener, mu *asyncmutex.Mutex) {
	go func() {
		defer mu.Release()
		_ = c.unsubscribe(channel, listener)
	}()
}

func (c *Conn) unsubscribe(channel string, listener types.Listener) error {
	ch, ok := c.channels.Load(channel)
	if !ok {
		c.logger.Debug("unsubscribe of unknown channel", "channel", channel)
		return nil
	}

	found, remaining := ch.remove(listener)
	if !found {
		c.logger.Debug("unsubscribe of unknown listener", "channel", channel)
		return nil
	}
	if remaining > 0 {
		c.logger.Debug("left shared channel subscription", "channel", channel, "listeners", remaining)
		listener.OnStatus(types.StatusUnsubscribe, channel)

		return nil
	}

	c.channels.Delete(channel)

	return c.unsubscribeChannel(ch, []types.Listener{listener})
}

// closeChannel drops channel with all of its listeners.
func (c *Conn) closeChannel(channel string) error {
	ch, ok := c.channels.LoadAndDelete(channel)
	if !ok {
		return nil
	}

	return c.unsubscribeChannel(ch, ch.snapshot())
}

// unsubscribeChannel issues the NATS UNSUB for a channel already removed from
// the table and tells dropped about it.
func (c *Conn) unsubscribeChannel(ch *channelSub, dropped []types.Listener) error {
	channel := ch.name
	c.metrics.SetActiveChannels(c.channels.Size())

	start := time.Now()
	err := c.retry.do(opUnsubscribe, channel, func() error {
		if err := ch.sub.Unsubscribe(); err != nil && !errors.Is(err, nats.ErrBadSubscription) {
			return err
		}

		return c.nc.FlushTimeout(c.cfg.UnsubscribeTimeout)
	})
	emitCommand(c.metrics, opUnsubscribe, err, start)

	if err != nil {
		err = fmt.Errorf("%w: %s: %w", types.ErrUnsubscribeFailed, channel, err)
		if natsutil.IsClosedError(err) {
			c.logger.Debug("channel unsubscribe on closed connection", "channel", channel)
		} else {
			c.logger.Error("channel unsubscribe failed", "channel", channel, "error", err)
		}
	} else {
		c.logger.Debug("channel unsubscribed", "channel", channel)
	}

	// Local state is gone either way; the server drops the interest on reconnect.
	for _, l := range dropped {
		l.OnStatus(types.StatusUnsubscribe, channel)
	}

	return err
}

// dispatch decodes msg and fans it out to the channel's listeners under the
// channel's own name, so pattern channels reach their listeners.
func (c *Conn) dispatch(ch *channelSub, msg *nats.Msg) {
	v, err := ch.codec.Decode(msg.Data)
	if err != nil {
		c.metrics.RecordMessage(types.MessageDecodeError)
		c.logger.Warn("dropping undecodable message",
			"channel", ch.name,
			"subject", msg.Subject,
			"codec", ch.codec.Name(),
			"error", err,
		)

		return
	}

	consumed := false
	for _, l := range ch.snapshot() {
		if l.OnMessage(ch.name, v) {
			consumed = true
		}
	}

	if consumed {
		c.metrics.RecordMessage(types.MessageDelivered)
	} else {
		c.metrics.RecordMessage(types.MessageIgnored)
	}
}

// Publish encodes v with codec and publishes it on channel.
//
// Parameters:
//   - channel: Target channel
//   - codec: Payload codec, normally the one subscribers use
//   - v: Value to publish
//
// Returns:
//   - error: ErrClosed, ErrEncode or the NATS publish error
func (c *Conn) Publish(channel string, codec types.Codec, v any) error {
	if c.closed.Load() {
		return types.ErrClosed
	}

	data, err := codec.Encode(v)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}

	if err := c.nc.Publish(channel, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", channel, err)
	}

	return nil
}

// Channels returns the currently subscribed channels in sorted order.
func (c *Conn) Channels() []string {
	names := make([]string, 0, c.channels.Size())
	c.channels.Range(func(name string, _ *channelSub) bool {
		names = append(names, name)
		return true
	})
	slices.Sort(names)

	return names
}

// Close unsubscribes every channel and rejects further subscribes.
//
// Each channel is unsubscribed under its own mutex so in-flight commands
// finish first. The NATS connection itself is left open.
//
// Parameters:
//   - ctx: Bounds the wait for in-flight commands
//
// Returns:
//   - error: Context error if the wait was cut short, else the first unsubscribe error
func (c *Conn) Close(ctx context.Context) error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.closeOnce.Do(func() { close(c.done) })

	var (
		wg       sync.WaitGroup
		errMu    sync.Mutex
		firstErr error
	)
	for _, name := range c.Channels() {
		wg.Add(1)
		mu := c.Mutex(name)
		mu.Acquire(func() {
			defer wg.Done()
			defer mu.Release()

			if err := c.closeChannel(name); err != nil {
				errMu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				errMu.Unlock()
			}
		})
	}

	waitCh := make(chan struct{})
	go func() {
		wg.Wait()
		close(waitCh)
	}()

	select {
	case <-waitCh:
		c.logger.Info("transport closed")
		return firstErr
	case <-ctx.Done():
		return fmt.Errorf("close interrupted: %w", ctx.Err())
	}
}
