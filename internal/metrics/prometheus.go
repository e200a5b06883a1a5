package metrics

import (
	"strconv"
	"sync"

	"github.com/arloliu/submux/types"
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
//
// Collectors are created and registered lazily on first use, so a collector
// that is constructed but never exercised leaves the registry untouched.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	// Coordinator metrics
	subscribes    *prometheus.CounterVec
	unsubscribes  *prometheus.CounterVec
	activeEntries prometheus.Gauge
	mutexWait     prometheus.Histogram

	// Transport metrics
	commands       *prometheus.CounterVec
	commandLatency *prometheus.HistogramVec
	commandRetries *prometheus.CounterVec
	messages       *prometheus.CounterVec
	activeChannels prometheus.Gauge
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer interface (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Prometheus metrics namespace (defaults to "submux" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "submux"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.subscribes = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "coordinator",
			Name:      "subscribes_total",
			Help:      "Total subscribe operations by outcome (created, joined, failed).",
		}, []string{"result"})

		p.unsubscribes = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "coordinator",
			Name:      "unsubscribes_total",
			Help:      "Total unsubscribe operations by outcome (released, retired).",
		}, []string{"result"})

		p.activeEntries = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "coordinator",
			Name:      "entries_active",
			Help:      "Current number of shared entries in the registry.",
		})

		p.mutexWait = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "coordinator",
			Name:      "mutex_wait_seconds",
			Help:      "Time continuations waited for their channel mutex.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10), // 100µs .. ~26s
		})

		p.commands = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "transport",
			Name:      "commands_total",
			Help:      "Total raw subscribe/unsubscribe commands by op and success.",
		}, []string{"op", "success"})

		p.commandLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "transport",
			Name:      "command_latency_seconds",
			Help:      "Latency of raw commands including server acknowledgment.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms .. ~2s
		}, []string{"op"})

		p.commandRetries = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "transport",
			Name:      "command_retries_total",
			Help:      "Total retried raw commands by op.",
		}, []string{"op"})

		p.messages = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "transport",
			Name:      "messages_total",
			Help:      "Inbound messages by outcome (delivered, ignored, decode_error).",
		}, []string{"result"})

		p.activeChannels = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "transport",
			Name:      "channels_active",
			Help:      "Current number of subscribed channels.",
		})

		p.reg.MustRegister(p.subscribes)
		p.reg.MustRegister(p.unsubscribes)
		p.reg.MustRegister(p.activeEntries)
		p.reg.MustRegister(p.mutexWait)
		p.reg.MustRegister(p.commands)
		p.reg.MustRegister(p.commandLatency)
		p.reg.MustRegister(p.commandRetries)
		p.reg.MustRegister(p.messages)
		p.reg.MustRegister(p.activeChannels)
	})
}

// CoordinatorMetrics implementation

// RecordSubscribe increments the subscribe counter for result.
func (p *PrometheusCollector) RecordSubscribe(result string) {
	p.ensureRegistered()
	p.subscribes.WithLabelValues(result).Inc()
}

// RecordUnsubscribe increments the unsubscribe counter for result.
func (p *PrometheusCollector) RecordUnsubscribe(result string) {
	p.ensureRegistered()
	p.unsubscribes.WithLabelValues(result).Inc()
}

// SetActiveEntries sets the active entry gauge.
func (p *PrometheusCollector) SetActiveEntries(count int) {
	p.ensureRegistered()
	p.activeEntries.Set(float64(count))
}

// RecordMutexWait observes a mutex wait in seconds.
func (p *PrometheusCollector) RecordMutexWait(seconds float64) {
	p.ensureRegistered()
	p.mutexWait.Observe(seconds)
}

// TransportMetrics implementation

// RecordCommand counts a raw command and observes its latency.
func (p *PrometheusCollector) RecordCommand(op string, success bool, seconds float64) {
	p.ensureRegistered()
	p.commands.WithLabelValues(op, strconv.FormatBool(success)).Inc()
	p.commandLatency.WithLabelValues(op).Observe(seconds)
}

// RecordCommandRetry increments the retry counter for op.
func (p *PrometheusCollector) RecordCommandRetry(op string) {
	p.ensureRegistered()
	p.commandRetries.WithLabelValues(op).Inc()
}

// RecordMessage increments the message counter for result.
func (p *PrometheusCollector) RecordMessage(result string) {
	p.ensureRegistered()
	p.messages.WithLabelValues(result).Inc()
}

// SetActiveChannels sets the active channel gauge.
func (p *PrometheusCollector) SetActiveChannels(count int) {
	p.ensureRegistered()
	p.activeChannels.Set(float64(count))
}
