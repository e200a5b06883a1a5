package stress_test

import (
	"os"
	"testing"
)

// requireStressEnabled skips the test unless long stress tests are explicitly enabled.
//
// Enable by setting environment variable SUBMUX_STRESS=1 when invoking `go test`.
// Example:
//
//	SUBMUX_STRESS=1 go test -v -timeout 20m ./test/stress
func requireStressEnabled(t *testing.T) {
	t.Helper()
	if os.Getenv("SUBMUX_STRESS") != "1" {
		t.Skip("Skipping long stress test (set SUBMUX_STRESS=1 to run)")
	}
}
