package subscription

import "time"

// Default configuration values for Conn.
const (
	// DefaultSubscribeTimeout bounds the server round trip confirming a SUB.
	DefaultSubscribeTimeout = 5 * time.Second

	// DefaultUnsubscribeTimeout bounds the server round trip confirming an UNSUB.
	DefaultUnsubscribeTimeout = 5 * time.Second

	// DefaultMaxRetries is the default maximum number of retry attempts per command.
	DefaultMaxRetries = 3

	// DefaultRetryBackoff is the base delay between retry attempts.
	DefaultRetryBackoff = 100 * time.Millisecond

	// DefaultMaxRetryBackoff caps the delay between retry attempts.
	DefaultMaxRetryBackoff = 2 * time.Second

	// retryMultiplier is the growth factor fed to jitterBackoff.
	retryMultiplier = 1.6
)

// Command names used for metrics and logs.
const (
	opSubscribe   = "subscribe"
	opUnsubscribe = "unsubscribe"
)
