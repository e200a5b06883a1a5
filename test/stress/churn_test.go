package stress_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/arloliu/submux"
	submuxtest "github.com/arloliu/submux/testing"
	"github.com/arloliu/submux/test/testutil"
	"github.com/arloliu/submux/variant"
	"github.com/stretchr/testify/require"
)

// TestChurnSmoke runs a short churn so the stress helpers stay exercised
// even without SUBMUX_STRESS.
func TestChurnSmoke(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping smoke test in short mode")
	}

	_, nc := submuxtest.StartEmbeddedNATS(t)
	locks, conn, err := submux.NewNATS(nc, submux.TestConfig(), variant.NewLockPubSub(),
		submux.WithLogger(submuxtest.NewTestLogger(t)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close(context.Background()) })

	m := testutil.RunChurn(t.Context(), t, locks, testutil.ChurnConfig{
		Workers:     8,
		Entries:     4,
		Duration:    2 * time.Second,
		Channel:     variant.LockChannel,
		Description: "churn_smoke",
	})

	require.Empty(t, m.Errors, m.Report())
	require.Positive(t, m.Subscribes)
	testutil.AssertDrained(t, locks, conn, nc, 5*time.Second)
}

// TestChurnScale drives many goroutines over few and many entries and checks
// that nothing leaks once the churn stops.
//
//nolint:tparallel // subtests run in parallel, each with its own server
func TestChurnScale(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping scale test in short mode")
	}
	requireStressEnabled(t)

	cases := []struct {
		workers int
		entries int
	}{
		{workers: 16, entries: 1},
		{workers: 64, entries: 8},
		{workers: 256, entries: 64},
		{workers: 512, entries: 1000},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("%dw_%de", tc.workers, tc.entries), func(t *testing.T) {
			t.Parallel()

			_, nc := submuxtest.StartEmbeddedNATS(t)
			locks, conn, err := submux.NewNATS(nc, submux.DefaultConfig(), variant.NewLockPubSub())
			require.NoError(t, err)
			t.Cleanup(func() { _ = conn.Close(context.Background()) })

			m := testutil.RunChurn(t.Context(), t, locks, testutil.ChurnConfig{
				Workers:     tc.workers,
				Entries:     tc.entries,
				Hold:        5 * time.Millisecond,
				Duration:    20 * time.Second,
				Channel:     variant.LockChannel,
				Description: t.Name(),
			})
			t.Log(m.Report())

			require.Empty(t, m.Errors)
			testutil.AssertDrained(t, locks, conn, nc, 10*time.Second)

			// Transport goroutines exit once every command is acknowledged.
			require.Less(t, m.Resources.GoroutineGrowth(), tc.workers,
				"goroutines kept growing: %s", m.Resources.Summary())
		})
	}
}
