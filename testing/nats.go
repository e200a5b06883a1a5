package testing

import (
	"fmt"
	"net/url"
	"slices"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
)

// StartEmbeddedNATS starts an in-process NATS server for testing.
//
// Only core pub/sub is enabled; channel subscriptions need nothing else. The
// server listens on a random port so parallel tests never collide, and both the
// server and the client are shut down via t.Cleanup().
//
// Parameters:
//   - t: Testing context for logging and cleanup
//
// Returns:
//   - *server.Server: The embedded NATS server instance
//   - *nats.Conn: Connected NATS client (closed automatically on test completion)
//
// Example:
//
//	func TestMyComponent(t *testing.T) {
//	    _, nc := submuxtest.StartEmbeddedNATS(t)
//	    conn, _ := subscription.NewConn(nc, subscription.Config{})
//	    // server and connection are cleaned up automatically
//	}
func StartEmbeddedNATS(t *testing.T) (*server.Server, *nats.Conn) {
	t.Helper()

	opts := &server.Options{
		Host:  "127.0.0.1",
		Port:  -1,   // random available port
		NoLog: true, // suppress server logs in tests
	}

	ns, err := server.NewServer(opts)
	if err != nil {
		t.Fatalf("Failed to create embedded NATS server: %v", err)
	}

	go ns.Start()

	if !ns.ReadyForConnections(5 * time.Second) {
		ns.Shutdown()
		t.Fatal("Embedded NATS server not ready within timeout")
	}

	nc, err := nats.Connect(ns.ClientURL(),
		nats.Name(t.Name()),
		nats.Timeout(2*time.Second),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(3),
	)
	if err != nil {
		ns.Shutdown()
		t.Fatalf("Failed to connect to embedded NATS server: %v", err)
	}

	t.Cleanup(func() {
		nc.Close()
		ns.Shutdown()
		ns.WaitForShutdown()
	})

	return ns, nc
}

// StartEmbeddedNATSCluster starts a 3-node NATS cluster for routing tests.
//
// Subscription interest registered on one node is propagated to the others
// over routes, which is what lets a waiter on node 0 see an unlock published
// on node 2. Each server runs in-process.
//
// Parameters:
//   - t: Testing context for logging and cleanup
//
// Returns:
//   - []*server.Server: Slice of 3 NATS server instances
//   - *nats.Conn: Client connected to the first node
//
// Example:
//
//	func TestCrossNodeUnlock(t *testing.T) {
//	    servers, nc := submuxtest.StartEmbeddedNATSCluster(t)
//	    pub := submuxtest.Connect(t, servers[2])
//	    // subscribe through nc, publish through pub
//	}
func StartEmbeddedNATSCluster(t *testing.T) ([]*server.Server, *nats.Conn) {
	t.Helper()

	const clusterSize = 3
	servers := make([]*server.Server, 0, clusterSize)
	var routes []*url.URL

	// Shutdown runs after the client cleanup registered below.
	t.Cleanup(func() {
		for _, ns := range servers {
			ns.Shutdown()
			ns.WaitForShutdown()
		}
	})

	for i := range clusterSize {
		ns, err := server.NewServer(&server.Options{
			ServerName: fmt.Sprintf("submux-node-%d", i),
			Host:       "127.0.0.1",
			Port:       -1,
			Cluster: server.ClusterOpts{
				Name: "submux-test",
				Host: "127.0.0.1",
				Port: -1,
			},
			Routes: slices.Clone(routes),
			NoLog:  true,
		})
		if err != nil {
			t.Fatalf("Failed to create cluster node %d: %v", i, err)
		}

		go ns.Start()
		servers = append(servers, ns)

		if !ns.ReadyForConnections(10 * time.Second) {
			t.Fatalf("Cluster node %d not ready", i)
		}
		addr := ns.ClusterAddr()
		if addr == nil {
			t.Fatalf("Cluster node %d has no route listener", i)
		}
		routes = append(routes, &url.URL{Scheme: "nats", Host: fmt.Sprintf("127.0.0.1:%d", addr.Port)})
	}

	deadline := time.Now().Add(10 * time.Second)
	for !clusterFormed(servers) {
		if time.Now().After(deadline) {
			t.Fatal("Cluster failed to form within timeout")
		}
		time.Sleep(50 * time.Millisecond)
	}

	return servers, Connect(t, servers[0])
}

// clusterFormed reports whether every node routes to every other node.
func clusterFormed(servers []*server.Server) bool {
	for _, ns := range servers {
		if ns.NumRoutes() < len(servers)-1 {
			return false
		}
	}

	return true
}

// Connect opens an extra client connection to ns, closed on test cleanup.
//
// Parameters:
//   - t: Testing context for cleanup
//   - ns: Running server, e.g. one node of StartEmbeddedNATSCluster
//
// Returns:
//   - *nats.Conn: Connected client
func Connect(t *testing.T, ns *server.Server) *nats.Conn {
	t.Helper()

	nc, err := nats.Connect(ns.ClientURL(), nats.Timeout(2*time.Second))
	if err != nil {
		t.Fatalf("Failed to connect to %s: %v", ns.ClientURL(), err)
	}
	t.Cleanup(nc.Close)

	return nc
}
