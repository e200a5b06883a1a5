package submux

import (
	"log/slog"

	"github.com/arloliu/submux/internal/logging"
	"github.com/arloliu/submux/internal/metrics"
	"github.com/arloliu/submux/types"
	"github.com/prometheus/client_golang/prometheus"
)

// Re-export interfaces from the types package.
//
// The types subpackage holds the contracts so transports, codecs and variants
// can depend on them without importing the root package; these aliases keep
// submux.Logger, submux.Transport etc. available to users.
type (
	Transport        = types.Transport
	Listener         = types.Listener
	Codec            = types.Codec
	Status           = types.Status
	MetricsCollector = types.MetricsCollector
	Logger           = types.Logger
)

// Re-export Status constants from the types package.
const (
	StatusSubscribe   = types.StatusSubscribe
	StatusUnsubscribe = types.StatusUnsubscribe
)

// NewPrometheusMetrics creates a MetricsCollector backed by Prometheus.
//
// Collectors are registered with reg on first use. An empty namespace
// defaults to "submux".
func NewPrometheusMetrics(reg prometheus.Registerer, namespace string) MetricsCollector {
	return metrics.NewPrometheus(reg, namespace)
}

// NewSlogLogger adapts a *slog.Logger to Logger. A nil logger uses slog.Default().
func NewSlogLogger(l *slog.Logger) Logger {
	return logging.NewSlog(l)
}
