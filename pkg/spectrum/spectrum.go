// Package spectrum provides random photon frequency samplers for the photon
// sources and for the diffuse re-emission channels. All samplers precompute
// their tables at construction and are read-only afterwards, so a single
// instance can be shared by all parallel shoot jobs.
package spectrum

import (
	"github.com/goionize/mcrt/pkg/core"
)

// Physical constants (SI).
const (
	planckConstant    = 6.626e-34 // J s
	boltzmannConstant = 1.381e-23 // J K^-1
)

// Spectrum produces random photon frequencies (in Hz). The temperature of
// the emitting region is passed for samplers that depend on it; source
// spectra ignore it.
type Spectrum interface {
	RandomFrequency(rng *core.RandomStream, temperature float64) float64
}

// Uniform samples frequencies uniformly in [Min, Max]. Mostly useful in
// tests, where the expected mean frequency is trivially (Min+Max)/2.
type Uniform struct {
	Min, Max float64
}

// RandomFrequency returns a uniform random frequency in [Min, Max].
func (u Uniform) RandomFrequency(rng *core.RandomStream, _ float64) float64 {
	return u.Min + rng.Float64()*(u.Max-u.Min)
}

// Monochromatic always emits at a single frequency.
type Monochromatic struct {
	Frequency float64
}

// RandomFrequency returns the fixed frequency of the line.
func (m Monochromatic) RandomFrequency(_ *core.RandomStream, _ float64) float64 {
	return m.Frequency
}
