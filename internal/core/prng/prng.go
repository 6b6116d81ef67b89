// Package prng defines the deterministic random source contract the
// Monte-Carlo engine depends on, mirroring the reference implementation's
// tinyrand::Rand trait (a bare next_u64 plus a seedable reset).
package prng

import "math/rand"

// Source is a pluggable PRNG. Implementations must be deterministic given a
// seed, so fitters can compare successive parameter vectors against
// identical sample paths (common random numbers).
type Source interface {
	// NextUint64 returns the next pseudo-random 64-bit value.
	NextUint64() uint64
	// Reset restores the source to its initial, seeded state.
	Reset()
}

// Std is the production Source, backed by a seeded math/rand source
// (rand.NewSource). Grounded on other_examples' jhw-go-outrights matrix.go, which
// samples scorelines from math/rand's default source.
type Std struct {
	seed int64
	r    *rand.Rand
}

// NewStd returns a Std source seeded with seed.
func NewStd(seed int64) *Std {
	return &Std{seed: seed, r: rand.New(rand.NewSource(seed))}
}

func (s *Std) NextUint64() uint64 { return s.r.Uint64() }

func (s *Std) Reset() { s.r = rand.New(rand.NewSource(s.seed)) }

// Float64 maps a raw NextUint64 draw onto [0, 1], the same transform the
// reference implementation's random_f64 helper performs.
func Float64(s Source) float64 {
	return float64(s.NextUint64()) / float64(^uint64(0))
}
