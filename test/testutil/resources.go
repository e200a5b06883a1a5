package testutil

import (
	"fmt"
	"runtime"
	"sync"
	"time"
)

// ResourceMonitor periodically samples heap usage and goroutine counts so
// churn runs can spot entries or transport goroutines that never go away.
type ResourceMonitor struct {
	mu      sync.Mutex
	samples []ResourceSample

	done chan struct{}
	wg   sync.WaitGroup
}

// ResourceSample is one point-in-time measurement.
type ResourceSample struct {
	Timestamp      time.Time
	HeapMB         float64
	HeapObjects    uint64
	GoroutineCount int
}

// ResourceReport summarizes a monitoring period.
type ResourceReport struct {
	Start ResourceSample
	End   ResourceSample

	PeakHeapMB     float64
	PeakGoroutines int
	Samples        int
}

// NewResourceMonitor creates a monitor; call Start to begin sampling.
func NewResourceMonitor() *ResourceMonitor {
	return &ResourceMonitor{done: make(chan struct{})}
}

// Start samples immediately and then every interval until Stop.
func (rm *ResourceMonitor) Start(interval time.Duration) {
	rm.sample()

	rm.wg.Add(1)
	go func() {
		defer rm.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-rm.done:
				rm.sample()
				return
			case <-ticker.C:
				rm.sample()
			}
		}
	}()
}

// Stop ends sampling and returns the report.
func (rm *ResourceMonitor) Stop() ResourceReport {
	close(rm.done)
	rm.wg.Wait()

	rm.mu.Lock()
	defer rm.mu.Unlock()

	if len(rm.samples) == 0 {
		return ResourceReport{}
	}

	r := ResourceReport{
		Start:   rm.samples[0],
		End:     rm.samples[len(rm.samples)-1],
		Samples: len(rm.samples),
	}
	for _, s := range rm.samples {
		r.PeakHeapMB = max(r.PeakHeapMB, s.HeapMB)
		r.PeakGoroutines = max(r.PeakGoroutines, s.GoroutineCount)
	}

	return r
}

func (rm *ResourceMonitor) sample() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	s := ResourceSample{
		Timestamp:      time.Now(),
		HeapMB:         float64(m.HeapAlloc) / 1024 / 1024,
		HeapObjects:    m.HeapObjects,
		GoroutineCount: runtime.NumGoroutine(),
	}

	rm.mu.Lock()
	rm.samples = append(rm.samples, s)
	rm.mu.Unlock()
}

// GoroutineGrowth returns the goroutine delta between the first and last sample.
func (r ResourceReport) GoroutineGrowth() int {
	return r.End.GoroutineCount - r.Start.GoroutineCount
}

// HeapGrowthMB returns the heap delta between the first and last sample.
func (r ResourceReport) HeapGrowthMB() float64 {
	return r.End.HeapMB - r.Start.HeapMB
}

// Summary returns a one-line description of the report.
func (r ResourceReport) Summary() string {
	return fmt.Sprintf("heap %.2f -> %.2f MB (peak %.2f), goroutines %d -> %d (peak %d), %d samples",
		r.Start.HeapMB, r.End.HeapMB, r.PeakHeapMB,
		r.Start.GoroutineCount, r.End.GoroutineCount, r.PeakGoroutines,
		r.Samples,
	)
}
