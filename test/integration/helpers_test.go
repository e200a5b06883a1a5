package integration_test

import (
	"context"
	"testing"
	"time"

	"github.com/arloliu/submux"
	"github.com/arloliu/submux/subscription"
	submuxtest "github.com/arloliu/submux/testing"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"
)

// node is one process worth of submux state: a connection, a transport and a
// coordinator on top of it.
type node[E submux.Entry[E]] struct {
	nc   *nats.Conn
	conn *subscription.Conn
	ps   *submux.PubSub[E]
}

func newNode[E submux.Entry[E]](t *testing.T, nc *nats.Conn, v submux.Variant[E]) *node[E] {
	t.Helper()

	ps, conn, err := submux.NewNATS(nc, submux.TestConfig(), v,
		submux.WithLogger(submuxtest.NewTestLogger(t)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close(context.Background()) })

	return &node[E]{nc: nc, conn: conn, ps: ps}
}

func (n *node[E]) subscribe(t *testing.T, entryName, channel string) E {
	t.Helper()

	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()

	entry, err := n.ps.Subscribe(entryName, channel).Await(ctx)
	require.NoError(t, err)

	return entry
}

func testContext(t *testing.T) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Second)
	t.Cleanup(cancel)

	return ctx
}
