package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(level slog.Level) (*SlogLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	handler := slog.NewTextHandler(buf, &slog.HandlerOptions{Level: level})

	return NewSlog(slog.New(handler)), buf
}

func TestNewSlog_NilUsesDefault(t *testing.T) {
	logger := NewSlog(nil)

	require.NotNil(t, logger.logger)
}

func TestSlogLogger_Levels(t *testing.T) {
	tests := []struct {
		name  string
		log   func(l *SlogLogger)
		level string
		attr  string
	}{
		{
			name:  "debug",
			log:   func(l *SlogLogger) { l.Debug("channel subscribed", "channel", "ch:foo") },
			level: "level=DEBUG",
			attr:  "channel=ch:foo",
		},
		{
			name:  "info",
			log:   func(l *SlogLogger) { l.Info("transport closed", "channels", 3) },
			level: "level=INFO",
			attr:  "channels=3",
		},
		{
			name:  "warn",
			log:   func(l *SlogLogger) { l.Warn("retrying channel command", "op", "subscribe") },
			level: "level=WARN",
			attr:  "op=subscribe",
		},
		{
			name:  "error",
			log:   func(l *SlogLogger) { l.Error("channel subscribe failed", "error", "timeout") },
			level: "level=ERROR",
			attr:  "error=timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := newBufferLogger(slog.LevelDebug)
			tt.log(logger)

			output := buf.String()
			assert.Contains(t, output, tt.level)
			assert.Contains(t, output, tt.attr)
		})
	}
}

func TestSlogLogger_LevelFiltering(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelWarn)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")

	output := buf.String()
	assert.NotContains(t, output, "debug message")
	assert.NotContains(t, output, "info message")
	assert.Contains(t, output, "warn message")
}

func TestSlogLogger_RegistryFields(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelInfo)

	logger.Error("subscription registry corrupted",
		"entry", "cache:foo",
		"channel", "ch:foo",
		"refs", 0)

	output := buf.String()
	assert.Contains(t, output, "entry=cache:foo")
	assert.Contains(t, output, "channel=ch:foo")
	assert.Contains(t, output, "refs=0")
}
