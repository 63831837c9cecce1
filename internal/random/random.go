// Package random provides the seeded random source that drives every
// probabilistic decision in a run. The same seed always yields the same
// stream of values.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
)

// Source is a deterministic stream of floats, integers and weighted picks.
type Source struct {
	rng *rand.Rand
}

// New returns a source seeded from seed.
func New(seed int64) *Source {
	// Non-cryptographic PRNG is intentional for reproducible playthroughs.
	// #nosec G404
	return &Source{rng: rand.New(rand.NewPCG(seedWord(seed, "a"), seedWord(seed, "b")))}
}

// Derive deterministically mixes a salt into a seed, giving an
// independent stream for a sub-purpose (next run, restored state).
func Derive(seed int64, salt string) int64 {
	return int64(seedWord(seed, salt))
}

// NewSeed generates a fresh seed from crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("random: read seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

func seedWord(seed int64, salt string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(fmt.Sprintf("%d:%s", seed, salt)))
	return h.Sum64()
}

// Float64 returns a value in [0, 1).
func (s *Source) Float64() float64 {
	return s.rng.Float64()
}

// IntN returns a value in [0, n). It returns 0 when n <= 0.
func (s *Source) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	return s.rng.IntN(n)
}

// Chance performs one Bernoulli draw with probability p and also returns
// the draw so callers can record how close it was.
func (s *Source) Chance(p float64) (bool, float64) {
	draw := s.rng.Float64()
	return draw < p, draw
}

// WeightedIndex picks an index with probability proportional to its
// weight. Non-positive weights are never picked; it returns -1 when no
// weight is positive.
func (s *Source) WeightedIndex(weights []float64) int {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return -1
	}

	target := s.rng.Float64() * total
	last := -1
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		last = i
		if target < w {
			return i
		}
		target -= w
	}
	// Rounding can leave target just above the final weight.
	return last
}

// Sample returns k distinct indices from [0, n) in draw order.
// k is capped at n.
func (s *Source) Sample(n, k int) []int {
	if k > n {
		k = n
	}
	if k <= 0 {
		return []int{}
	}
	pool := make([]int, n)
	for i := range pool {
		pool[i] = i
	}
	// Partial Fisher-Yates.
	for i := 0; i < k; i++ {
		j := i + s.rng.IntN(n-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k]
}
