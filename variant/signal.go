package variant

import (
	"context"
	"slices"
	"sync"
)

// signal is a counting semaphore that starts with zero permits.
//
// Releasing hands permits to blocked waiters in arrival order; permits nobody
// is waiting for accumulate.
type signal struct {
	mu      sync.Mutex
	permits int
	waiters []chan struct{}
}

// release adds n permits.
func (s *signal) release(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for ; n > 0 && len(s.waiters) > 0; n-- {
		close(s.waiters[0])
		s.waiters = s.waiters[1:]
	}
	s.permits += n
}

// releaseWaiting wakes every goroutine currently blocked in acquire.
func (s *signal) releaseWaiting() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, w := range s.waiters {
		close(w)
	}
	s.waiters = nil
}

// tryAcquire takes a permit if one is available.
func (s *signal) tryAcquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.permits == 0 {
		return false
	}
	s.permits--

	return true
}

// acquire blocks until a permit is handed over or ctx is done.
func (s *signal) acquire(ctx context.Context) error {
	s.mu.Lock()
	if s.permits > 0 {
		s.permits--
		s.mu.Unlock()

		return nil
	}
	w := make(chan struct{})
	s.waiters = append(s.waiters, w)
	s.mu.Unlock()

	select {
	case <-w:
		return nil
	case <-ctx.Done():
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.Index(s.waiters, w)
	if i < 0 {
		// Granted while giving up: the permit is ours.
		return nil
	}
	s.waiters = slices.Delete(s.waiters, i, i+1)

	return ctx.Err()
}

// waiting returns the number of blocked acquirers.
func (s *signal) waiting() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.waiters)
}

// gate is a latch that can be closed again after opening.
type gate struct {
	mu     sync.Mutex
	isOpen bool
	ch     chan struct{} // closed while the gate is open
}

func newGate() *gate {
	return &gate{ch: make(chan struct{})}
}

func (g *gate) open() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.isOpen {
		g.isOpen = true
		close(g.ch)
	}
}

func (g *gate) close() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.isOpen {
		g.isOpen = false
		g.ch = make(chan struct{})
	}
}

func (g *gate) opened() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.isOpen
}

// wait blocks until the gate is open or ctx is done.
func (g *gate) wait(ctx context.Context) error {
	g.mu.Lock()
	ch := g.ch
	g.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
