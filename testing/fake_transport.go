package testing

import (
	"slices"
	"sync"

	"github.com/arloliu/submux/asyncmutex"
	"github.com/arloliu/submux/types"
)

// FakeTransport is an in-memory types.Transport for deterministic protocol tests.
//
// Raw commands are recorded and, unless autoConfirm is set, parked until the
// test calls Confirm or Fail for the channel. Parked commands keep holding the
// channel mutex exactly like a real transport waiting for the server.
type FakeTransport struct {
	pool        *asyncmutex.Pool
	autoConfirm bool

	mu           sync.Mutex
	listeners    map[string][]types.Listener
	pending      map[string][]fakeCommand
	subscribes   map[string]int
	unsubscribes map[string]int
	codecs       map[string]types.Codec
}

var _ types.Transport = (*FakeTransport)(nil)

type fakeCommand struct {
	unsubscribe bool
	listener    types.Listener
	dropped     []types.Listener
	mu          *asyncmutex.Mutex
}

// NewFakeTransport creates a fake transport.
//
// Parameters:
//   - autoConfirm: Confirm every command asynchronously as soon as it is issued
//
// Returns:
//   - *FakeTransport: Transport with no channels
func NewFakeTransport(autoConfirm bool) *FakeTransport {
	return &FakeTransport{
		pool:         asyncmutex.NewPool(asyncmutex.DefaultStripes),
		autoConfirm:  autoConfirm,
		listeners:    make(map[string][]types.Listener),
		pending:      make(map[string][]fakeCommand),
		subscribes:   make(map[string]int),
		unsubscribes: make(map[string]int),
		codecs:       make(map[string]types.Codec),
	}
}

// Mutex returns the mutex for channel.
func (f *FakeTransport) Mutex(channel string) *asyncmutex.Mutex {
	return f.pool.Get(channel)
}

// Subscribe records a raw subscribe and registers listener.
func (f *FakeTransport) Subscribe(codec types.Codec, channel string, listener types.Listener, mu *asyncmutex.Mutex) {
	f.mu.Lock()
	f.subscribes[channel]++
	f.codecs[channel] = codec
	f.listeners[channel] = append(f.listeners[channel], listener)
	cmd := fakeCommand{listener: listener, mu: mu}
	if !f.autoConfirm {
		f.pending[channel] = append(f.pending[channel], cmd)
	}
	f.mu.Unlock()

	if f.autoConfirm {
		go f.complete(channel, cmd, nil)
	}
}

// Unsubscribe records an unsubscribe and drops listener from channel. Other
// listeners of the channel keep receiving messages.
func (f *FakeTransport) Unsubscribe(channel string, listener types.Listener, mu *asyncmutex.Mutex) {
	f.mu.Lock()
	f.unsubscribes[channel]++
	cmd := fakeCommand{unsubscribe: true, mu: mu}
	if f.removeListenerLocked(channel, listener) {
		cmd.dropped = []types.Listener{listener}
	}
	if !f.autoConfirm {
		f.pending[channel] = append(f.pending[channel], cmd)
	}
	f.mu.Unlock()

	if f.autoConfirm {
		go f.complete(channel, cmd, nil)
	}
}

// Confirm acknowledges the oldest parked command for channel, delivering its
// status and releasing its mutex. It reports false when nothing is parked.
func (f *FakeTransport) Confirm(channel string) bool {
	cmd, ok := f.pop(channel)
	if !ok {
		return false
	}
	f.complete(channel, cmd, nil)

	return true
}

// Fail rejects the oldest parked command for channel with err. A failed
// subscribe unregisters its listener and reports err through OnError.
func (f *FakeTransport) Fail(channel string, err error) bool {
	cmd, ok := f.pop(channel)
	if !ok {
		return false
	}
	f.complete(channel, cmd, err)

	return true
}

func (f *FakeTransport) pop(channel string) (fakeCommand, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	queue := f.pending[channel]
	if len(queue) == 0 {
		return fakeCommand{}, false
	}
	cmd := queue[0]
	if len(queue) == 1 {
		delete(f.pending, channel)
	} else {
		f.pending[channel] = queue[1:]
	}

	return cmd, true
}

func (f *FakeTransport) complete(channel string, cmd fakeCommand, err error) {
	defer cmd.mu.Release()

	switch {
	case cmd.unsubscribe:
		for _, l := range cmd.dropped {
			l.OnStatus(types.StatusUnsubscribe, channel)
		}
	case err != nil:
		f.removeListener(channel, cmd.listener)
		cmd.listener.OnError(channel, err)
	default:
		cmd.listener.OnStatus(types.StatusSubscribe, channel)
	}
}

func (f *FakeTransport) removeListener(channel string, l types.Listener) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.removeListenerLocked(channel, l)
}

func (f *FakeTransport) removeListenerLocked(channel string, l types.Listener) bool {
	ls := f.listeners[channel]
	i := slices.Index(ls, l)
	if i < 0 {
		return false
	}
	if len(ls) == 1 {
		delete(f.listeners, channel)
	} else {
		f.listeners[channel] = slices.Delete(slices.Clone(ls), i, i+1)
	}

	return true
}

// Publish delivers message to every listener registered for channel and
// returns how many consumed it.
func (f *FakeTransport) Publish(channel string, message any) int {
	f.mu.Lock()
	ls := append([]types.Listener(nil), f.listeners[channel]...)
	f.mu.Unlock()

	consumed := 0
	for _, l := range ls {
		if l.OnMessage(channel, message) {
			consumed++
		}
	}

	return consumed
}

// Broadcast delivers a message for channel to every registered listener of
// every channel, the way a shared connection may, and returns how many
// consumed it.
func (f *FakeTransport) Broadcast(channel string, message any) int {
	f.mu.Lock()
	var ls []types.Listener
	for _, chLs := range f.listeners {
		ls = append(ls, chLs...)
	}
	f.mu.Unlock()

	consumed := 0
	for _, l := range ls {
		if l.OnMessage(channel, message) {
			consumed++
		}
	}

	return consumed
}

// Pending returns the number of parked commands for channel.
func (f *FakeTransport) Pending(channel string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.pending[channel])
}

// Subscribes returns how many subscribe commands were issued for channel.
func (f *FakeTransport) Subscribes(channel string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.subscribes[channel]
}

// Unsubscribes returns how many unsubscribe commands were issued for channel.
func (f *FakeTransport) Unsubscribes(channel string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.unsubscribes[channel]
}

// Listeners returns the number of listeners registered for channel.
func (f *FakeTransport) Listeners(channel string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.listeners[channel])
}

// Codec returns the codec of the last subscribe for channel.
func (f *FakeTransport) Codec(channel string) types.Codec {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.codecs[channel]
}
