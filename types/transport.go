package types

import "github.com/arloliu/submux/asyncmutex"

// Status identifies a subscription status event reported by a transport.
type Status int

const (
	// StatusSubscribe reports that a channel subscription is confirmed active.
	StatusSubscribe Status = iota + 1

	// StatusUnsubscribe reports that a listener was removed from a channel.
	StatusUnsubscribe
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusSubscribe:
		return "subscribe"
	case StatusUnsubscribe:
		return "unsubscribe"
	default:
		return "unknown"
	}
}

// Listener receives events for a channel subscription.
//
// A transport may invoke a listener with events for channels it was not
// registered for; listeners filter by channel and report whether they
// consumed the event. Transports compare listeners by identity, so
// implementations must be comparable, normally pointers.
type Listener interface {
	// OnMessage delivers a decoded message published on channel.
	OnMessage(channel string, message any) bool

	// OnStatus delivers a subscription status change for channel.
	OnStatus(status Status, channel string) bool

	// OnError reports that the subscribe command for channel failed.
	//
	// Transports call OnError while still holding the channel mutex that was
	// handed to Subscribe, and release the mutex afterwards.
	OnError(channel string, err error) bool
}

// Codec converts message payloads between wire bytes and values.
type Codec interface {
	// Name returns the codec identifier used in configuration.
	Name() string

	// Encode converts v into wire bytes.
	Encode(v any) ([]byte, error)

	// Decode converts wire bytes into a value.
	Decode(data []byte) (any, error)
}

// Transport issues raw channel subscriptions and owns the per-channel mutexes.
//
// Subscribe and Unsubscribe receive the channel mutex already acquired by the
// caller. From that point the transport owns the release obligation: it must
// release the mutex exactly once, after the command was acknowledged or has
// failed, and never before.
//
// Several listeners may share one raw subscription. The channel passed to a
// listener is always the name it was subscribed with, even when the transport
// matches it as a pattern.
type Transport interface {
	// Mutex returns the mutex serializing subscription changes for channel.
	// The same channel always yields the same mutex.
	Mutex(channel string) *asyncmutex.Mutex

	// Subscribe registers listener for channel and issues the raw subscribe
	// command asynchronously. Status, message and error events are delivered
	// to listener as they arrive.
	Subscribe(codec Codec, channel string, listener Listener, mu *asyncmutex.Mutex)

	// Unsubscribe removes listener from channel asynchronously. The raw
	// unsubscribe command is issued only when no other listener remains;
	// mu is released in either case.
	Unsubscribe(channel string, listener Listener, mu *asyncmutex.Mutex)
}
