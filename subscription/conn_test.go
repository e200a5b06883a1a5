package subscription

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/arloliu/submux/asyncmutex"
	"github.com/arloliu/submux/codec"
	"github.com/arloliu/submux/internal/metrics"
	submuxtest "github.com/arloliu/submux/testing"
	"github.com/arloliu/submux/types"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"
)

type recordingListener struct {
	channel string

	mu       sync.Mutex
	statuses []types.Status
	messages []any
	errs     []error
}

func (l *recordingListener) OnMessage(channel string, message any) bool {
	if channel != l.channel {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, message)

	return true
}

func (l *recordingListener) OnStatus(status types.Status, channel string) bool {
	if channel != l.channel {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.statuses = append(l.statuses, status)

	return true
}

func (l *recordingListener) OnError(channel string, err error) bool {
	if channel != l.channel {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errs = append(l.errs, err)

	return true
}

func (l *recordingListener) Statuses() []types.Status {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]types.Status(nil), l.statuses...)
}

func (l *recordingListener) Messages() []any {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]any(nil), l.messages...)
}

func (l *recordingListener) Errors() []error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]error(nil), l.errs...)
}

type spyMetrics struct {
	*metrics.NopMetrics

	decodeErrors atomic.Int64
	delivered    atomic.Int64
	retries      atomic.Int64
	commands     atomic.Int64
}

func (m *spyMetrics) RecordMessage(result string) {
	switch result {
	case types.MessageDecodeError:
		m.decodeErrors.Add(1)
	case types.MessageDelivered:
		m.delivered.Add(1)
	}
}

func (m *spyMetrics) RecordCommandRetry(string) { m.retries.Add(1) }

func (m *spyMetrics) RecordCommand(string, bool, float64) { m.commands.Add(1) }

func newTestConn(t *testing.T, cfg Config) (*Conn, *nats.Conn) {
	t.Helper()

	_, nc := submuxtest.StartEmbeddedNATS(t)
	if cfg.Logger == nil {
		cfg.Logger = submuxtest.NewTestLogger(t)
	}
	conn, err := NewConn(nc, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close(context.Background()) })

	return conn, nc
}

// hold acquires the channel mutex and returns once the caller owns it.
func hold(t *testing.T, c *Conn, channel string) *asyncmutex.Mutex {
	t.Helper()

	mu := c.Mutex(channel)
	held := make(chan struct{})
	mu.Acquire(func() { close(held) })
	select {
	case <-held:
	case <-time.After(2 * time.Second):
		t.Fatal("mutex not acquired")
	}

	return mu
}

func waitUnlocked(t *testing.T, mu *asyncmutex.Mutex) {
	t.Helper()

	require.Eventually(t, func() bool { return !mu.Locked() }, 2*time.Second, time.Millisecond)
}

func TestNewConn_Validation(t *testing.T) {
	_, err := NewConn(nil, Config{})
	require.ErrorIs(t, err, types.ErrConnectionRequired)

	_, nc := submuxtest.StartEmbeddedNATS(t)
	_, err = NewConn(nc, Config{MutexStripes: -1})
	require.ErrorIs(t, err, types.ErrInvalidConfig)

	conn, err := NewConn(nc, Config{})
	require.NoError(t, err)
	require.Equal(t, asyncmutex.DefaultStripes, conn.pool.Size())
	require.Same(t, conn.Mutex("orders"), conn.Mutex("orders"))
}

func TestConn_SubscribeAndDeliver(t *testing.T) {
	spy := &spyMetrics{NopMetrics: metrics.NewNop()}
	conn, nc := newTestConn(t, Config{Metrics: spy})
	l := &recordingListener{channel: "orders"}

	mu := hold(t, conn, "orders")
	conn.Subscribe(codec.Long, "orders", l, mu)
	waitUnlocked(t, mu)

	require.Equal(t, []types.Status{types.StatusSubscribe}, l.Statuses())
	require.Equal(t, []string{"orders"}, conn.Channels())
	require.Equal(t, 1, nc.NumSubscriptions())

	require.NoError(t, conn.Publish("orders", codec.Long, int64(0)))
	require.NoError(t, conn.Publish("orders", codec.Long, int64(3)))
	require.Eventually(t, func() bool { return len(l.Messages()) == 2 }, 2*time.Second, 5*time.Millisecond)
	require.Equal(t, []any{int64(0), int64(3)}, l.Messages())
	require.Equal(t, int64(2), spy.delivered.Load())
	require.Equal(t, int64(1), spy.commands.Load())
}

func TestConn_SecondListenerSharesSubscription(t *testing.T) {
	conn, nc := newTestConn(t, Config{})
	first := &recordingListener{channel: "orders"}
	second := &recordingListener{channel: "orders"}

	mu := hold(t, conn, "orders")
	conn.Subscribe(codec.Long, "orders", first, mu)
	waitUnlocked(t, mu)

	mu = hold(t, conn, "orders")
	conn.Subscribe(codec.Long, "orders", second, mu)
	waitUnlocked(t, mu)

	require.Equal(t, []types.Status{types.StatusSubscribe}, second.Statuses())
	require.Equal(t, 1, nc.NumSubscriptions())

	require.NoError(t, conn.Publish("orders", codec.Long, int64(1)))
	require.Eventually(t, func() bool {
		return len(first.Messages()) == 1 && len(second.Messages()) == 1
	}, 2*time.Second, 5*time.Millisecond)
}

func TestConn_Unsubscribe(t *testing.T) {
	conn, nc := newTestConn(t, Config{})
	l := &recordingListener{channel: "orders"}

	mu := hold(t, conn, "orders")
	conn.Subscribe(codec.Long, "orders", l, mu)
	waitUnlocked(t, mu)

	mu = hold(t, conn, "orders")
	conn.Unsubscribe("orders", l, mu)
	waitUnlocked(t, mu)

	require.Equal(t, []types.Status{types.StatusSubscribe, types.StatusUnsubscribe}, l.Statuses())
	require.Empty(t, conn.Channels())
	require.Equal(t, 0, nc.NumSubscriptions())

	require.NoError(t, conn.Publish("orders", codec.Long, int64(0)))
	require.Never(t, func() bool { return len(l.Messages()) > 0 }, 100*time.Millisecond, 10*time.Millisecond)

	// Unknown channels only release the mutex.
	mu = hold(t, conn, "unknown")
	conn.Unsubscribe("unknown", l, mu)
	waitUnlocked(t, mu)
}

func TestConn_UnsubscribeKeepsSharedChannel(t *testing.T) {
	conn, nc := newTestConn(t, Config{})
	a := &recordingListener{channel: "orders"}
	b := &recordingListener{channel: "orders"}

	for _, l := range []*recordingListener{a, b} {
		mu := hold(t, conn, "orders")
		conn.Subscribe(codec.Long, "orders", l, mu)
		waitUnlocked(t, mu)
	}

	mu := hold(t, conn, "orders")
	conn.Unsubscribe("orders", a, mu)
	waitUnlocked(t, mu)

	require.Equal(t, []types.Status{types.StatusSubscribe, types.StatusUnsubscribe}, a.Statuses())
	require.Equal(t, []types.Status{types.StatusSubscribe}, b.Statuses())
	require.Equal(t, []string{"orders"}, conn.Channels())
	require.Equal(t, 1, nc.NumSubscriptions())

	require.NoError(t, conn.Publish("orders", codec.Long, int64(7)))
	require.Eventually(t, func() bool { return len(b.Messages()) == 1 }, 2*time.Second, 5*time.Millisecond)
	require.Empty(t, a.Messages())

	// A listener that is not registered leaves the channel alone.
	mu = hold(t, conn, "orders")
	conn.Unsubscribe("orders", a, mu)
	waitUnlocked(t, mu)
	require.Equal(t, 1, nc.NumSubscriptions())

	mu = hold(t, conn, "orders")
	conn.Unsubscribe("orders", b, mu)
	waitUnlocked(t, mu)

	require.Equal(t, []types.Status{types.StatusSubscribe, types.StatusUnsubscribe}, b.Statuses())
	require.Empty(t, conn.Channels())
	require.Equal(t, 0, nc.NumSubscriptions())
}

func TestConn_WildcardChannelDelivers(t *testing.T) {
	conn, _ := newTestConn(t, Config{})
	l := &recordingListener{channel: "locks.*"}

	mu := hold(t, conn, "locks.*")
	conn.Subscribe(codec.Long, "locks.*", l, mu)
	waitUnlocked(t, mu)

	require.NoError(t, conn.Publish("locks.orders", codec.Long, int64(0)))
	require.Eventually(t, func() bool { return len(l.Messages()) == 1 }, 2*time.Second, 5*time.Millisecond)
	require.Equal(t, []any{int64(0)}, l.Messages())
}

func TestConn_DecodeErrorIsDropped(t *testing.T) {
	spy := &spyMetrics{NopMetrics: metrics.NewNop()}
	conn, nc := newTestConn(t, Config{Metrics: spy})
	l := &recordingListener{channel: "orders"}

	mu := hold(t, conn, "orders")
	conn.Subscribe(codec.Long, "orders", l, mu)
	waitUnlocked(t, mu)

	require.NoError(t, nc.Publish("orders", []byte("not-a-number")))
	require.NoError(t, conn.Publish("orders", codec.Long, int64(0)))

	require.Eventually(t, func() bool { return len(l.Messages()) == 1 }, 2*time.Second, 5*time.Millisecond)
	require.Equal(t, int64(1), spy.decodeErrors.Load())
}

func TestConn_SubscribeFailure(t *testing.T) {
	conn, _ := newTestConn(t, Config{})
	l := &recordingListener{channel: "bad subject"}

	mu := hold(t, conn, "bad subject")
	conn.Subscribe(codec.Long, "bad subject", l, mu)
	waitUnlocked(t, mu)

	errs := l.Errors()
	require.Len(t, errs, 1)
	require.ErrorIs(t, errs[0], types.ErrSubscribeFailed)
	require.ErrorIs(t, errs[0], nats.ErrBadSubject)
	require.Empty(t, l.Statuses())
	require.Empty(t, conn.Channels())
}

func TestConn_Close(t *testing.T) {
	conn, nc := newTestConn(t, Config{})
	l := &recordingListener{channel: "orders"}

	mu := hold(t, conn, "orders")
	conn.Subscribe(codec.Long, "orders", l, mu)
	waitUnlocked(t, mu)

	require.NoError(t, conn.Close(t.Context()))
	require.Equal(t, []types.Status{types.StatusSubscribe, types.StatusUnsubscribe}, l.Statuses())
	require.Empty(t, conn.Channels())
	require.Equal(t, 0, nc.NumSubscriptions())
	require.NoError(t, conn.Close(t.Context()), "close is idempotent")

	late := &recordingListener{channel: "orders"}
	mu = hold(t, conn, "orders")
	conn.Subscribe(codec.Long, "orders", late, mu)
	waitUnlocked(t, mu)
	require.Len(t, late.Errors(), 1)
	require.ErrorIs(t, late.Errors()[0], types.ErrClosed)

	require.ErrorIs(t, conn.Publish("orders", codec.Long, int64(0)), types.ErrClosed)
}

func TestConn_PublishEncodeError(t *testing.T) {
	conn, _ := newTestConn(t, Config{})

	err := conn.Publish("orders", codec.Long, "zero")
	require.ErrorIs(t, err, ErrEncode)
	require.ErrorIs(t, err, codec.ErrUnsupportedType)
}

func TestRetrier(t *testing.T) {
	newRetrierForTest := func(maxRetries int, done <-chan struct{}) (*retrier, *spyMetrics) {
		spy := &spyMetrics{NopMetrics: metrics.NewNop()}
		cfg := Config{
			MaxRetries:      maxRetries,
			RetryBackoff:    time.Millisecond,
			MaxRetryBackoff: 5 * time.Millisecond,
			RetrySeed:       7,
			Metrics:         spy,
		}
		cfg.applyDefaults()

		return newRetrier(&cfg, done), spy
	}

	t.Run("retries connectivity errors", func(t *testing.T) {
		r, spy := newRetrierForTest(3, nil)
		calls := 0
		err := r.do(opSubscribe, "orders", func() error {
			calls++
			if calls < 3 {
				return nats.ErrTimeout
			}

			return nil
		})
		require.NoError(t, err)
		require.Equal(t, 3, calls)
		require.Equal(t, int64(2), spy.retries.Load())
	})

	t.Run("does not retry other errors", func(t *testing.T) {
		r, _ := newRetrierForTest(3, nil)
		calls := 0
		err := r.do(opSubscribe, "orders", func() error {
			calls++
			return nats.ErrBadSubject
		})
		require.ErrorIs(t, err, nats.ErrBadSubject)
		require.Equal(t, 1, calls)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		r, _ := newRetrierForTest(2, nil)
		calls := 0
		err := r.do(opUnsubscribe, "orders", func() error {
			calls++
			return nats.ErrNoServers
		})
		require.ErrorIs(t, err, nats.ErrNoServers)
		require.Equal(t, 3, calls)
	})

	t.Run("negative max retries disables retries", func(t *testing.T) {
		r, _ := newRetrierForTest(-1, nil)
		calls := 0
		_ = r.do(opSubscribe, "orders", func() error {
			calls++
			return nats.ErrTimeout
		})
		require.Equal(t, 1, calls)
	})

	t.Run("stops when closed", func(t *testing.T) {
		done := make(chan struct{})
		close(done)
		r, _ := newRetrierForTest(10, done)
		calls := 0
		err := r.do(opSubscribe, "orders", func() error {
			calls++
			return types.ErrConnectivity
		})
		require.ErrorIs(t, err, types.ErrConnectivity)
		require.Equal(t, 1, calls)
	})
}
