package submux

import "github.com/arloliu/submux/types"

// Option configures a PubSub with optional dependencies.
type Option func(*options)

// options holds optional PubSub configuration.
type options struct {
	logger  Logger
	metrics types.CoordinatorMetrics
	codec   Codec
}

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation (compatible with zap.SugaredLogger)
//
// Returns:
//   - Option: Functional option for New
//
// Example:
//
//	logger := submux.NewSlogLogger(slog.Default())
//	locks, _ := submux.New(conn, variant.NewLockPubSub(), submux.WithLogger(logger))
func WithLogger(logger Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics sets a metrics collector.
//
// Parameters:
//   - metrics: MetricsCollector implementation
//
// Returns:
//   - Option: Functional option for New
//
// Example:
//
//	metrics := submux.NewPrometheusMetrics(prometheus.DefaultRegisterer, "")
//	locks, _ := submux.New(conn, variant.NewLockPubSub(), submux.WithMetrics(metrics))
func WithMetrics(metrics MetricsCollector) Option {
	return func(o *options) {
		if metrics != nil {
			o.metrics = metrics
		}
	}
}

// WithCodec sets the codec used to decode channel payloads.
//
// The default is codec.Long, the format of lock, semaphore and latch
// messages.
//
// Parameters:
//   - c: Codec handed to the transport on subscribe
//
// Returns:
//   - Option: Functional option for New
func WithCodec(c Codec) Option {
	return func(o *options) {
		if c != nil {
			o.codec = c
		}
	}
}
