// Package testing provides test utilities for the submux library.
//
// It follows Go's convention of shipping testing helpers in a dedicated
// package (similar to net/http/httptest).
//
// Key utilities:
//   - StartEmbeddedNATS: Single in-process NATS server and client
//   - StartEmbeddedNATSCluster: 3-node routed NATS cluster
//   - FakeTransport: In-memory transport whose commands are confirmed by the test
//   - NewTestLogger: Logger writing to testing.T
//
// Example usage:
//
//	import (
//	    "testing"
//	    submuxtest "github.com/arloliu/submux/testing"
//	)
//
//	func TestCoordinator(t *testing.T) {
//	    tr := submuxtest.NewFakeTransport(false)
//	    ps, _ := submux.New(tr, variant.NewLockPubSub())
//	    p := ps.Subscribe("lock:a", "ch:a")
//	    tr.Confirm("ch:a")
//	    entry, err := p.Await(t.Context())
//	    // ...
//	}
package testing
