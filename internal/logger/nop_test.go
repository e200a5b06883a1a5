package logger

import (
	"testing"

	"github.com/arloliu/submux/types"
	"github.com/stretchr/testify/require"
)

func TestNopLogger(t *testing.T) {
	var logger types.Logger = NewNop()

	require.NotPanics(t, func() {
		logger.Debug("channel subscribed", "channel", "ch:foo")
		logger.Info("")
		logger.Warn("dangling key", "single")
		logger.Error("subscription registry corrupted", "entry", "cache:foo", "refs", 0)
		logger.Fatal("does not exit")
	})
}

func BenchmarkNopLogger(b *testing.B) {
	logger := NewNop()

	for b.Loop() {
		logger.Debug("benchmark message", "key1", "value1", "key2", 42)
	}
}

func TestFormatKeyValues(t *testing.T) {
	require.Equal(t, "", formatKeyValues(nil))
	require.Equal(t, "entry=cache:foo refs=2", formatKeyValues([]any{"entry", "cache:foo", "refs", 2}))
	require.Equal(t, "channel=ch:foo dangling=<missing>", formatKeyValues([]any{"channel", "ch:foo", "dangling"}))
}

func TestTestLogger_DropsLateMessages(t *testing.T) {
	var l *TestLogger
	t.Run("inner", func(t *testing.T) {
		l = NewTest(t)
		l.Info("inside test", "entry", "cache:foo")
	})

	// The inner test has completed; logging must not panic.
	require.NotPanics(t, func() {
		l.Debug("late", "channel", "ch:foo")
		l.Error("late", "channel", "ch:foo")
	})
}
