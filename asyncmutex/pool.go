package asyncmutex

import "github.com/zeebo/xxh3"

// DefaultStripes is the number of mutexes in a pool created with a
// non-positive size.
const DefaultStripes = 50

// Pool is a fixed set of mutexes addressed by key.
//
// Keys hash onto stripes, so distinct keys may share a mutex. Sharing only
// adds serialization; a given key always resolves to the same mutex for the
// lifetime of the pool.
type Pool struct {
	stripes []Mutex
}

// NewPool creates a pool with the given number of stripes.
//
// Parameters:
//   - size: Number of mutex stripes (DefaultStripes when size <= 0)
//
// Returns:
//   - *Pool: Pool ready for use
func NewPool(size int) *Pool {
	if size <= 0 {
		size = DefaultStripes
	}

	return &Pool{stripes: make([]Mutex, size)}
}

// Get returns the mutex guarding key.
func (p *Pool) Get(key string) *Mutex {
	return &p.stripes[p.index(key)]
}

// Size returns the number of stripes.
func (p *Pool) Size() int {
	return len(p.stripes)
}

func (p *Pool) index(key string) int {
	return int(xxh3.HashString(key) % uint64(len(p.stripes))) //nolint:gosec // bounded by stripe count
}
