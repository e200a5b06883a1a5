package types

// Subscribe outcomes recorded by CoordinatorMetrics.RecordSubscribe.
const (
	SubscribeCreated = "created"
	SubscribeJoined  = "joined"
	SubscribeFailed  = "failed"
)

// Unsubscribe outcomes recorded by CoordinatorMetrics.RecordUnsubscribe.
const (
	UnsubscribeReleased = "released"
	UnsubscribeRetired  = "retired"
)

// Message dispatch outcomes recorded by TransportMetrics.RecordMessage.
const (
	MessageDelivered   = "delivered"
	MessageIgnored     = "ignored"
	MessageDecodeError = "decode_error"
)

// MetricsCollector defines methods for recording operational metrics.
//
// Implementations should be non-blocking and handle failures gracefully.
// Methods are called from continuation and transport goroutines and must
// be thread-safe.
type MetricsCollector interface {
	CoordinatorMetrics
	TransportMetrics
}

// CoordinatorMetrics defines metrics for the subscription coordinator.
type CoordinatorMetrics interface {
	// RecordSubscribe records a subscribe outcome.
	//
	// Parameters:
	//   - result: SubscribeCreated, SubscribeJoined or SubscribeFailed
	RecordSubscribe(result string)

	// RecordUnsubscribe records an unsubscribe outcome.
	//
	// Parameters:
	//   - result: UnsubscribeReleased or UnsubscribeRetired
	RecordUnsubscribe(result string)

	// SetActiveEntries sets the number of entries in the registry (gauge metric).
	SetActiveEntries(count int)

	// RecordMutexWait records how long a continuation waited for its channel mutex.
	//
	// Parameters:
	//   - seconds: Time between Acquire and the continuation starting
	RecordMutexWait(seconds float64)
}

// TransportMetrics defines metrics for transport implementations.
type TransportMetrics interface {
	// RecordCommand records a raw subscribe/unsubscribe command.
	//
	// Parameters:
	//   - op: "subscribe" or "unsubscribe"
	//   - success: true if the command was acknowledged
	//   - seconds: Command latency including acknowledgment
	RecordCommand(op string, success bool, seconds float64)

	// RecordCommandRetry records a retried raw command.
	RecordCommandRetry(op string)

	// RecordMessage records the outcome of an inbound message.
	//
	// Parameters:
	//   - result: MessageDelivered, MessageIgnored or MessageDecodeError
	RecordMessage(result string)

	// SetActiveChannels sets the number of subscribed channels (gauge metric).
	SetActiveChannels(count int)
}
