package testutil

import (
	"context"
	"fmt"
	rand "math/rand/v2"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/arloliu/submux"
)

// ChurnConfig configures a subscribe/unsubscribe churn run.
type ChurnConfig struct {
	// Workers is the number of goroutines issuing subscribe/unsubscribe pairs
	Workers int

	// Entries is the number of distinct entry names the workers pick from
	Entries int

	// Hold is the maximum time a worker keeps a subscription (default: 2ms)
	Hold time.Duration

	// Duration is how long to run the churn
	Duration time.Duration

	// SampleInterval is how often resources are sampled (default: 1s)
	SampleInterval time.Duration

	// Channel maps an entry name to its channel (default: identity)
	Channel func(entryName string) string

	// Description is a human-readable description of the run
	Description string
}

// ChurnMetrics captures what happened during a churn run.
type ChurnMetrics struct {
	Config ChurnConfig

	Subscribes       int
	SubscribeLatency []time.Duration
	Errors           []error

	Resources ResourceReport

	StartTime time.Time
	EndTime   time.Time

	mu sync.Mutex
}

// RunChurn hammers ps with concurrent subscribe/unsubscribe pairs.
//
// Every worker balances each successful Subscribe with an Unsubscribe, so the
// registry must drain to empty once RunChurn returns and the transport has
// processed the trailing unsubscribes.
//
// Parameters:
//   - ctx: Cancels the run early
//   - t: Testing handle for logging
//   - ps: Coordinator under test
//   - cfg: Churn configuration
//
// Returns:
//   - *ChurnMetrics: Collected metrics
//
// Example:
//
//	m := testutil.RunChurn(ctx, t, locks, testutil.ChurnConfig{
//	    Workers:  32,
//	    Entries:  8,
//	    Duration: 5 * time.Second,
//	    Channel:  variant.LockChannel,
//	})
//	require.Empty(t, m.Errors)
func RunChurn[E submux.Entry[E]](ctx context.Context, t *testing.T, ps *submux.PubSub[E], cfg ChurnConfig) *ChurnMetrics {
	t.Helper()

	if cfg.Hold <= 0 {
		cfg.Hold = 2 * time.Millisecond
	}
	if cfg.SampleInterval <= 0 {
		cfg.SampleInterval = time.Second
	}
	if cfg.Entries <= 0 {
		cfg.Entries = 1
	}
	if cfg.Channel == nil {
		cfg.Channel = func(name string) string { return name }
	}

	t.Logf("Starting churn: %s (workers=%d entries=%d duration=%v)",
		cfg.Description, cfg.Workers, cfg.Entries, cfg.Duration)

	m := &ChurnMetrics{Config: cfg, StartTime: time.Now()}
	monitor := NewResourceMonitor()
	monitor.Start(cfg.SampleInterval)

	runCtx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()

	var wg sync.WaitGroup
	for w := range cfg.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rng := rand.New(rand.NewPCG(uint64(w), uint64(cfg.Workers))) //nolint:gosec // test load

			for runCtx.Err() == nil {
				name := fmt.Sprintf("entry-%d", rng.IntN(cfg.Entries))
				channel := cfg.Channel(name)

				start := time.Now()
				// The caller's promise is awaited with a context that outlives
				// the run so a late confirmation is never abandoned unbalanced.
				awaitCtx, awaitCancel := context.WithTimeout(ctx, 10*time.Second)
				entry, err := ps.Subscribe(name, channel).Await(awaitCtx)
				awaitCancel()
				if err != nil {
					m.recordError(fmt.Errorf("subscribe %s: %w", name, err))
					continue
				}
				m.recordSubscribe(time.Since(start))

				time.Sleep(time.Duration(rng.Int64N(int64(cfg.Hold))))
				ps.Unsubscribe(entry, name, channel)
			}
		}()
	}
	wg.Wait()

	m.Resources = monitor.Stop()
	m.EndTime = time.Now()
	t.Logf("Churn completed: %d subscribes in %v", m.Subscribes, m.Duration())

	return m
}

func (m *ChurnMetrics) recordSubscribe(latency time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Subscribes++
	m.SubscribeLatency = append(m.SubscribeLatency, latency)
}

func (m *ChurnMetrics) recordError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Errors = append(m.Errors, err)
}

// Duration returns the total run duration.
func (m *ChurnMetrics) Duration() time.Duration {
	if m.EndTime.IsZero() {
		return time.Since(m.StartTime)
	}

	return m.EndTime.Sub(m.StartTime)
}

// LatencyPercentile returns the pth percentile (0.0-1.0) subscribe latency.
func (m *ChurnMetrics) LatencyPercentile(p float64) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	return percentile(m.SubscribeLatency, p)
}

func percentile(latencies []time.Duration, p float64) time.Duration {
	if len(latencies) == 0 {
		return 0
	}

	sorted := slices.Clone(latencies)
	slices.Sort(sorted)

	index := int(float64(len(sorted)) * p)
	if index >= len(sorted) {
		index = len(sorted) - 1
	}

	return sorted[index]
}

// Report generates a human-readable summary.
func (m *ChurnMetrics) Report() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var b strings.Builder
	b.WriteString("\n=== Churn Report ===\n")
	fmt.Fprintf(&b, "Description: %s\n", m.Config.Description)
	fmt.Fprintf(&b, "Duration: %v\n", m.Duration())
	fmt.Fprintf(&b, "Workers: %d, Entries: %d\n", m.Config.Workers, m.Config.Entries)
	fmt.Fprintf(&b, "Subscribes: %d\n", m.Subscribes)
	if len(m.SubscribeLatency) > 0 {
		fmt.Fprintf(&b, "  P50 Latency: %v\n", percentile(m.SubscribeLatency, 0.50))
		fmt.Fprintf(&b, "  P99 Latency: %v\n", percentile(m.SubscribeLatency, 0.99))
	}
	fmt.Fprintf(&b, "Resources: %s\n", m.Resources.Summary())

	if len(m.Errors) > 0 {
		fmt.Fprintf(&b, "Errors: %d\n", len(m.Errors))
		for i, err := range m.Errors[:min(len(m.Errors), 5)] {
			fmt.Fprintf(&b, "  %d: %v\n", i+1, err)
		}
	}

	return b.String()
}
