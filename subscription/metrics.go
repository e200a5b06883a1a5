package subscription

import (
	"time"

	"github.com/arloliu/submux/types"
)

// emitCommand records a raw command result and its latency.
func emitCommand(mc types.TransportMetrics, op string, err error, start time.Time) {
	if mc == nil {
		return
	}
	mc.RecordCommand(op, err == nil, time.Since(start).Seconds())
}

// emitRetry records a retried raw command.
func emitRetry(mc types.TransportMetrics, op string) {
	if mc == nil {
		return
	}
	mc.RecordCommandRetry(op)
}
