package ports

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Random is the source of every non-deterministic choice the agent makes:
// opening asks, counteroffer markups and phrase selection.
type Random interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
	// IntN returns a value in [0, n). It panics when n <= 0.
	IntN(n int) int
}

// LockedRandom is a Random safe for concurrent use.
type LockedRandom struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandom returns a Random seeded with seed. A zero seed draws one from the
// current time, so only explicit seeds replay deterministically.
func NewRandom(seed uint64) *LockedRandom {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &LockedRandom{rng: rand.New(rand.NewPCG(seed, seed>>1|1))}
}

func (r *LockedRandom) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.rng.Float64()
}

func (r *LockedRandom) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.rng.IntN(n)
}
