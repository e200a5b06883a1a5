// Package logger provides no-op and test loggers for the submux library.
package logger

import "github.com/arloliu/submux/types"

// NopLogger discards every record. It is the default when no logger is
// configured.
//
// Example:
//
//	locks, err := submux.New(transport, variant.NewLockPubSub(), submux.WithLogger(logger.NewNop()))
type NopLogger struct{}

var _ types.Logger = (*NopLogger)(nil)

// NewNop returns a logger that discards all messages.
func NewNop() *NopLogger {
	return &NopLogger{}
}

func (n *NopLogger) Debug(string, ...any) {}
func (n *NopLogger) Info(string, ...any) {}
func (n *NopLogger) Warn(string, ...any) {}
func (n *NopLogger) Error(string, ...any) {}

// Fatal discards the message and, unlike production loggers, does not exit.
func (n *NopLogger) Fatal(string, ...any) {}
