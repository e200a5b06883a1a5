package submux

import "github.com/arloliu/submux/types"

// Sentinel errors re-exported from the types package.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = types.ErrInvalidConfig

	// ErrTransportRequired is returned when New is called without a transport.
	ErrTransportRequired = types.ErrTransportRequired

	// ErrVariantRequired is returned when New is called without a variant.
	ErrVariantRequired = types.ErrVariantRequired

	// ErrInvariantViolation is the panic value (wrapped) raised when the
	// registry no longer matches the entries being retired.
	ErrInvariantViolation = types.ErrInvariantViolation

	// ErrNegativeRefCount is the panic value raised when an entry is released
	// more often than it was acquired.
	ErrNegativeRefCount = types.ErrNegativeRefCount

	// ErrConnectionRequired is returned when a NATS connection is nil.
	ErrConnectionRequired = types.ErrConnectionRequired

	// ErrClosed is returned by a closed transport.
	ErrClosed = types.ErrClosed

	// ErrSubscribeFailed wraps the error a failed subscribe reports to waiters.
	ErrSubscribeFailed = types.ErrSubscribeFailed

	// ErrUnsubscribeFailed wraps failures of the raw unsubscribe command.
	ErrUnsubscribeFailed = types.ErrUnsubscribeFailed
)
