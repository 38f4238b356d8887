// Package random isolates the randomness used for variety between equally
// good candidates, so tests can pin it with a seed.
package random

import (
	"hash/fnv"
	"math/rand/v2"
	"sync"
	"time"
)

// Source supplies bounded jitter and shuffles.
type Source interface {
	// Jitter returns a value in [-amplitude, amplitude] derived from key.
	Jitter(key string, amplitude float64) float64
	// Shuffle permutes n elements through swap.
	Shuffle(n int, swap func(i, j int))
}

// Seeded is a Source driven by a fixed seed. Safe for concurrent use.
type Seeded struct {
	seed uint64
	// now, when set, is mixed into every Jitter call.
	now func() time.Time
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeeded returns a deterministic Source.
func NewSeeded(seed uint64) *Seeded {
	return &Seeded{seed: seed, rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewTimeSeeded returns a Source seeded from the wall clock that also mixes
// the clock into each Jitter call, so repeated queries vary.
func NewTimeSeeded() *Seeded {
	return newClocked(uint64(time.Now().UnixNano()), time.Now)
}

func newClocked(seed uint64, now func() time.Time) *Seeded {
	s := NewSeeded(seed)
	s.now = now
	return s
}

// Jitter mixes the key hash with the seed. Under NewSeeded the same key
// always yields the same offset.
func (s *Seeded) Jitter(key string, amplitude float64) float64 {
	if amplitude <= 0 {
		return 0
	}
	seed := s.seed
	if s.now != nil {
		seed ^= uint64(s.now().UnixNano())
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	r := rand.New(rand.NewPCG(h.Sum64(), seed))
	return (r.Float64()*2 - 1) * amplitude
}

// Shuffle permutes with the shared generator.
func (s *Seeded) Shuffle(n int, swap func(i, j int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rng.Shuffle(n, swap)
}

// None is a Source without randomness: zero jitter and identity order.
type None struct{}

// Jitter always returns 0.
func (None) Jitter(string, float64) float64 { return 0 }

// Shuffle leaves the order unchanged.
func (None) Shuffle(int, func(i, j int)) {}
