package testing

import (
	"sync/atomic"
	"testing"

	"github.com/arloliu/submux/types"
)

// NewTestLogger creates a logger that writes to the testing.T log.
//
// Messages logged after the test completed are dropped, and Fatal fails the
// test instead of exiting, so it is safe to hand to transports whose
// goroutines outlive a single assertion.
func NewTestLogger(t *testing.T) types.Logger {
	l := &testLogger{t: t}
	t.Cleanup(func() { l.done.Store(true) })

	return l
}

type testLogger struct {
	t    *testing.T
	done atomic.Bool
}

var _ types.Logger = (*testLogger)(nil)

func (l *testLogger) Debug(msg string, keysAndValues ...any) {
	if !l.done.Load() {
		l.t.Logf("DEBUG: %s %v", msg, keysAndValues)
	}
}

func (l *testLogger) Info(msg string, keysAndValues ...any) {
	if !l.done.Load() {
		l.t.Logf("INFO: %s %v", msg, keysAndValues)
	}
}

func (l *testLogger) Warn(msg string, keysAndValues ...any) {
	if !l.done.Load() {
		l.t.Logf("WARN: %s %v", msg, keysAndValues)
	}
}

func (l *testLogger) Error(msg string, keysAndValues ...any) {
	if !l.done.Load() {
		l.t.Logf("ERROR: %s %v", msg, keysAndValues)
	}
}

func (l *testLogger) Fatal(msg string, keysAndValues ...any) {
	if !l.done.Load() {
		l.t.Errorf("FATAL: %s %v", msg, keysAndValues)
	}
}
