package testutil

import (
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"
)

// Registry is the read side of a submux.PubSub.
type Registry interface {
	Len() int
	EntryNames() []string
}

// Channels is the read side of a transport.
type Channels interface {
	Channels() []string
}

// AssertDrained waits until the registry is empty, the transport holds no
// channels and nc has no live subscriptions.
//
// Parameters:
//   - t: testing handle
//   - reg: coordinator registry
//   - transport: transport the coordinator runs on
//   - nc: connection the transport subscribes through, may be nil
//   - timeout: maximum time to wait
func AssertDrained(t *testing.T, reg Registry, transport Channels, nc *nats.Conn, timeout time.Duration) {
	t.Helper()

	require.Eventually(t, func() bool {
		if reg.Len() != 0 || len(transport.Channels()) != 0 {
			return false
		}

		return nc == nil || nc.NumSubscriptions() == 0
	}, timeout, 10*time.Millisecond,
		"not drained: entries=%v channels=%v", reg.EntryNames(), transport.Channels())
}

// AssertOneChannelPerEntry verifies that every registered entry maps to a
// subscribed channel and no channel is subscribed without an entry.
//
// Parameters:
//   - t: testing handle
//   - reg: coordinator registry
//   - transport: transport the coordinator runs on
//   - channel: maps an entry name to its channel
func AssertOneChannelPerEntry(t *testing.T, reg Registry, transport Channels, channel func(string) string) {
	t.Helper()

	want := make([]string, 0, reg.Len())
	for _, name := range reg.EntryNames() {
		want = append(want, channel(name))
	}

	require.ElementsMatch(t, want, transport.Channels())
}
