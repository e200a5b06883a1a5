package types

import "errors"

// Sentinel errors for the submux library.
//
// These errors support errors.Is() checks. Components wrap external errors
// with context using fmt.Errorf("%s: %w", msg, err).

// Coordinator errors - returned or raised by the subscription coordinator.
var (
	// ErrTransportRequired is returned when a coordinator is created without a transport.
	ErrTransportRequired = errors.New("transport is required")

	// ErrVariantRequired is returned when a coordinator is created without a variant.
	ErrVariantRequired = errors.New("subscription variant is required")

	// ErrInvariantViolation signals broken internal bookkeeping, such as the
	// registry holding a different entry than the one being retired. It is a
	// programming error and is never retried.
	ErrInvariantViolation = errors.New("subscription registry invariant violated")

	// ErrNegativeRefCount signals an entry released more times than acquired.
	ErrNegativeRefCount = errors.New("entry reference count dropped below zero")
)

// Transport errors - returned by transport implementations.
var (
	// ErrConnectionRequired is returned when a transport is created without a connection.
	ErrConnectionRequired = errors.New("connection is required")

	// ErrClosed is returned when operating on a closed transport.
	ErrClosed = errors.New("transport closed")

	// ErrSubscribeFailed wraps failures of the raw subscribe command.
	ErrSubscribeFailed = errors.New("subscribe command failed")

	// ErrUnsubscribeFailed wraps failures of the raw unsubscribe command.
	ErrUnsubscribeFailed = errors.New("unsubscribe command failed")

	// ErrConnectivity indicates a connectivity issue with the messaging server.
	ErrConnectivity = errors.New("connectivity issue")
)

// Configuration errors.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")
)
