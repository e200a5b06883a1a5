package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestResourceMonitor(t *testing.T) {
	rm := NewResourceMonitor()
	rm.Start(5 * time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	r := rm.Stop()
	require.GreaterOrEqual(t, r.Samples, 2)
	require.Positive(t, r.PeakGoroutines)
	require.GreaterOrEqual(t, r.PeakHeapMB, r.Start.HeapMB)
	require.Contains(t, r.Summary(), "samples")
}

func TestPercentile(t *testing.T) {
	require.Zero(t, percentile(nil, 0.5))

	lat := []time.Duration{5, 1, 4, 2, 3}
	require.Equal(t, time.Duration(1), percentile(lat, 0))
	require.Equal(t, time.Duration(3), percentile(lat, 0.5))
	require.Equal(t, time.Duration(5), percentile(lat, 1))
	require.Equal(t, []time.Duration{5, 1, 4, 2, 3}, lat, "input is not reordered")
}
