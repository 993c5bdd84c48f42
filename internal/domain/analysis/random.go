package analysis

import (
	"math/rand/v2"
	"sync"
	"time"
)

// RandomSource supplies the draws used by the simulated cross-checks.
// Implementations must be safe for concurrent use.
type RandomSource interface {
	// Float64 returns a value in [0.0, 1.0).
	Float64() float64
	// IntN returns a value in [0, n).
	IntN(n int) int
}

type lockedRandom struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandom returns a time-seeded source
func NewRandom() RandomSource {
	seed := uint64(time.Now().UnixNano())
	return NewSeededRandom(seed)
}

// NewSeededRandom returns a reproducible source for replays and tests
func NewSeededRandom(seed uint64) RandomSource {
	return &lockedRandom{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (r *lockedRandom) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Float64()
}

func (r *lockedRandom) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.IntN(n)
}
