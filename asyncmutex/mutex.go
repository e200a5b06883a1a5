package asyncmutex

import "sync"

// Mutex is a FIFO mutual exclusion gate driven by continuations.
//
// The zero value is an unlocked mutex ready for use. A Mutex must not be
// copied after first use.
type Mutex struct {
	mu      sync.Mutex
	locked  bool
	waiters []func()
}

// Acquire schedules fn to run with exclusive ownership of m.
//
// Acquire returns immediately. fn runs on a new goroutine as soon as m is
// free, after every continuation queued before it. fn owns m until Release
// is called; forgetting to call Release stalls every later continuation.
//
// Parameters:
//   - fn: Continuation to run while holding the mutex
func (m *Mutex) Acquire(fn func()) {
	m.mu.Lock()
	if m.locked {
		m.waiters = append(m.waiters, fn)
		m.mu.Unlock()

		return
	}
	m.locked = true
	m.mu.Unlock()

	go fn()
}

// Release ends the current owner's critical section and hands m to the next
// queued continuation, if any.
//
// Each Acquire must be matched by exactly one Release. Releasing an unlocked
// mutex panics.
func (m *Mutex) Release() {
	m.mu.Lock()
	if !m.locked {
		m.mu.Unlock()
		panic("asyncmutex: release of unlocked mutex")
	}

	if len(m.waiters) == 0 {
		m.locked = false
		m.mu.Unlock()

		return
	}

	next := m.waiters[0]
	m.waiters[0] = nil
	m.waiters = m.waiters[1:]
	if len(m.waiters) == 0 {
		m.waiters = nil
	}
	m.mu.Unlock()

	go next()
}

// Locked reports whether a continuation currently owns m.
func (m *Mutex) Locked() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.locked
}

// Pending returns the number of continuations waiting for m.
func (m *Mutex) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.waiters)
}
