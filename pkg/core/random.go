package core

import (
	"math"
	randv2 "math/rand/v2"
)

// RandomStream is an explicitly seeded uniform random number generator.
// Every parallel job owns exactly one stream; streams are never shared
// between goroutines, which keeps runs reproducible for a fixed seed and
// worker count.
type RandomStream struct {
	rng *randv2.PCG
}

// splitmix64 expands a seed into well-mixed 64-bit state words.
func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// NewRandomStream creates a stream seeded from the given seed.
// Different seeds give statistically independent streams, so a base seed
// plus a job index is enough to decorrelate parallel jobs.
func NewRandomStream(seed int64) *RandomStream {
	x := uint64(seed)
	hi := splitmix64(x)
	lo := splitmix64(x ^ 0xda942042e4dd58b5)
	return &RandomStream{rng: randv2.NewPCG(hi, lo)}
}

// Float64 returns a uniform random double in [0, 1).
func (r *RandomStream) Float64() float64 {
	return float64(r.rng.Uint64()<<11>>11) / (1 << 53)
}

// Uint64 returns a uniform random 64-bit integer.
func (r *RandomStream) Uint64() uint64 {
	return r.rng.Uint64()
}

// ExpTau draws a random optical depth budget -ln(u) for a photon flight.
// The draw is guarded against u == 0.
func (r *RandomStream) ExpTau() float64 {
	u := r.Float64()
	for u == 0 {
		u = r.Float64()
	}
	return -math.Log(u)
}
