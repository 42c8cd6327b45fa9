// Package randgen provides the deterministic pseudo-random source used by the
// scheduling computations. Plans must be reproducible across process restarts
// within the same week, so the generator is a fixed 32-bit counter algorithm
// (mulberry32) rather than math/rand, whose stream is not part of any
// compatibility promise.
package randgen

import "time"

// Source is a seeded counter-based generator. It is not safe for concurrent
// use; each computation phase gets its own instance.
type Source struct {
	state uint32
}

// New returns a Source seeded with the given value.
func New(seed uint32) *Source {
	return &Source{state: seed}
}

// Derive returns an independently seeded Source for a sub-phase, so that one
// phase consuming more draws does not perturb another phase's stream.
func (s *Source) Derive(offset uint32) *Source {
	return &Source{state: s.state + offset*0x9E3779B9}
}

// Float64 returns the next value in [0, 1).
func (s *Source) Float64() float64 {
	s.state += 0x6D2B79F5
	z := s.state
	z = (z ^ (z >> 15)) * (z | 1)
	z ^= z + (z^(z>>7))*(z|61)
	z ^= z >> 14
	return float64(z) / (1 << 32)
}

// Intn returns a value in [0, n). It panics if n <= 0.
func (s *Source) Intn(n int) int {
	if n <= 0 {
		panic("randgen: Intn called with n <= 0")
	}
	return int(s.Float64() * float64(n))
}

// Shuffle reorders n elements using the Fisher-Yates algorithm.
func (s *Source) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := s.Intn(i + 1)
		swap(i, j)
	}
}

// WeeklySeed derives the scheduling seed from the upcoming Thursday's
// calendar date (YYYYMMDD). Running the planner any day within the same
// league week therefore produces the same plan.
func WeeklySeed(now time.Time) uint32 {
	daysUntil := (int(time.Thursday) - int(now.Weekday()) + 7) % 7
	thursday := now.AddDate(0, 0, daysUntil)
	return uint32(thursday.Year()*10000 + int(thursday.Month())*100 + thursday.Day())
}
