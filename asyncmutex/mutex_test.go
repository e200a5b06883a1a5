package asyncmutex

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestMutex_AcquireDoesNotBlockCaller(t *testing.T) {
	var mu Mutex
	hold := make(chan struct{})
	running := make(chan struct{})

	mu.Acquire(func() {
		close(running)
		<-hold
		mu.Release()
	})

	done := make(chan struct{})
	go func() {
		// Queues behind the blocked owner; must return right away.
		mu.Acquire(func() { mu.Release() })
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Acquire blocked while the mutex was held")
	}

	<-running
	require.True(t, mu.Locked())
	require.Equal(t, 1, mu.Pending())

	close(hold)
	require.Eventually(t, func() bool { return !mu.Locked() }, time.Second, 5*time.Millisecond)
	require.Equal(t, 0, mu.Pending())
}

func TestMutex_RunsContinuationsInAcquireOrder(t *testing.T) {
	var mu Mutex
	hold := make(chan struct{})

	mu.Acquire(func() {
		<-hold
		mu.Release()
	})

	const n = 100
	var (
		orderMu sync.Mutex
		order   []int
		wg      sync.WaitGroup
	)
	wg.Add(n)
	for i := range n {
		mu.Acquire(func() {
			orderMu.Lock()
			order = append(order, i)
			orderMu.Unlock()
			mu.Release()
			wg.Done()
		})
	}
	require.Equal(t, n, mu.Pending())

	close(hold)
	wg.Wait()

	require.Len(t, order, n)
	for i, v := range order {
		require.Equal(t, i, v, "continuation ran out of order")
	}
	require.Eventually(t, func() bool { return !mu.Locked() }, time.Second, 5*time.Millisecond)
}

func TestMutex_MutualExclusion(t *testing.T) {
	var (
		mu      Mutex
		inside  atomic.Int32
		maxSeen atomic.Int32
		wg      sync.WaitGroup
	)

	const workers = 64
	wg.Add(workers)
	for range workers {
		go mu.Acquire(func() {
			cur := inside.Add(1)
			for {
				prev := maxSeen.Load()
				if cur <= prev || maxSeen.CompareAndSwap(prev, cur) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			inside.Add(-1)
			mu.Release()
			wg.Done()
		})
	}
	wg.Wait()

	require.Equal(t, int32(1), maxSeen.Load())
}

func TestMutex_ReleaseHandedToAnotherGoroutine(t *testing.T) {
	var mu Mutex
	released := make(chan struct{})

	mu.Acquire(func() {
		// The owner hands its release obligation to an asynchronous step.
		go func() {
			time.Sleep(10 * time.Millisecond)
			close(released)
			mu.Release()
		}()
	})

	second := make(chan struct{})
	mu.Acquire(func() {
		mu.Release()
		close(second)
	})

	select {
	case <-second:
		select {
		case <-released:
		default:
			t.Fatal("second continuation ran before the deferred release")
		}
	case <-time.After(time.Second):
		t.Fatal("second continuation never ran")
	}
}

func TestMutex_ReleaseUnlockedPanics(t *testing.T) {
	var mu Mutex
	require.PanicsWithValue(t, "asyncmutex: release of unlocked mutex", func() {
		mu.Release()
	})
}

func TestPool_Get(t *testing.T) {
	t.Run("same key resolves to the same mutex", func(t *testing.T) {
		p := NewPool(8)
		require.Same(t, p.Get("ch:foo"), p.Get("ch:foo"))
		require.Equal(t, 8, p.Size())
	})

	t.Run("non-positive size uses default stripes", func(t *testing.T) {
		require.Equal(t, DefaultStripes, NewPool(0).Size())
		require.Equal(t, DefaultStripes, NewPool(-3).Size())
	})

	t.Run("single stripe serializes every key", func(t *testing.T) {
		p := NewPool(1)
		require.Same(t, p.Get("a"), p.Get("b"))
	})

	t.Run("keys spread over stripes", func(t *testing.T) {
		p := NewPool(DefaultStripes)
		seen := make(map[*Mutex]struct{})
		for i := range 500 {
			seen[p.Get("channel-"+string(rune('a'+i%26))+string(rune('0'+i%10)))] = struct{}{}
		}
		require.Greater(t, len(seen), 1)
	})
}
