package metrics

import "github.com/arloliu/submux/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. Useful for testing or when external
// metrics collection is used.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
//
// Returns:
//   - *NopMetrics: A new no-op metrics collector instance
//
// Example:
//
//	ps, err := submux.New(transport, variant.NewLockPubSub(), submux.WithMetrics(metrics.NewNop()))
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// CoordinatorMetrics implementation

// RecordSubscribe discards the subscribe outcome.
func (n *NopMetrics) RecordSubscribe(_ /* result */ string) {
	// No-op
}

// RecordUnsubscribe discards the unsubscribe outcome.
func (n *NopMetrics) RecordUnsubscribe(_ /* result */ string) {
	// No-op
}

// SetActiveEntries discards the active entry gauge.
func (n *NopMetrics) SetActiveEntries(_ /* count */ int) {
	// No-op
}

// RecordMutexWait discards the mutex wait observation.
func (n *NopMetrics) RecordMutexWait(_ /* seconds */ float64) {
	// No-op
}

// TransportMetrics implementation

// RecordCommand discards the command outcome.
func (n *NopMetrics) RecordCommand(_ /* op */ string, _ /* success */ bool, _ /* seconds */ float64) {
	// No-op
}

// RecordCommandRetry discards the retry counter.
func (n *NopMetrics) RecordCommandRetry(_ /* op */ string) {
	// No-op
}

// RecordMessage discards the message outcome.
func (n *NopMetrics) RecordMessage(_ /* result */ string) {
	// No-op
}

// SetActiveChannels discards the active channel gauge.
func (n *NopMetrics) SetActiveChannels(_ /* count */ int) {
	// No-op
}
