package spectrum

import (
	"math"

	"github.com/goionize/mcrt/pkg/core"
	"github.com/goionize/mcrt/pkg/physics"
)

const (
	lymanNumFreq = 100
	lymanNumTemp = 100
	lymanMinTemp = 1.5e3
	lymanMaxTemp = 1.5e5
)

// lymanContinuum is a recombination continuum spectrum for a hydrogenic ion.
// The shape depends on the gas temperature, so cumulative distributions are
// precomputed on a logarithmic temperature grid and the nearest temperature
// bin is used when sampling. Tables are read-only after construction.
type lymanContinuum struct {
	tables       []cumulativeTable
	logMinTemp   float64
	inverseDelta float64
}

// newLymanContinuum tabulates sigma(nu)*nu^2*exp(-h(nu-nu0)/kT) between the
// threshold frequency nu0 and 4*nu0 for every temperature bin.
func newLymanContinuum(ion physics.Ion, threshold float64, sigma physics.CrossSections) lymanContinuum {
	frequencies := linearFrequencyGrid(threshold, 4*threshold, lymanNumFreq)
	logMin := math.Log(lymanMinTemp)
	logMax := math.Log(lymanMaxTemp)
	delta := (logMax - logMin) / float64(lymanNumTemp-1)

	tables := make([]cumulativeTable, lymanNumTemp)
	for j := range tables {
		temperature := math.Exp(logMin + float64(j)*delta)
		weights := make([]float64, lymanNumFreq)
		for i := 1; i < lymanNumFreq; i++ {
			e0 := recombinationEmissivity(frequencies[i-1], threshold, temperature, ion, sigma)
			e1 := recombinationEmissivity(frequencies[i], threshold, temperature, ion, sigma)
			weights[i] = 0.5 * (e0 + e1) * (frequencies[i] - frequencies[i-1])
		}
		tables[j] = newCumulativeTable(frequencies, weights)
	}
	return lymanContinuum{
		tables:       tables,
		logMinTemp:   logMin,
		inverseDelta: 1 / delta,
	}
}

// recombinationEmissivity evaluates the photon emissivity of the
// recombination continuum at the given frequency and temperature.
func recombinationEmissivity(frequency, threshold, temperature float64, ion physics.Ion, sigma physics.CrossSections) float64 {
	x := planckConstant * (frequency - threshold) / (boltzmannConstant * temperature)
	return sigma.ForIon(ion, frequency) * frequency * frequency * math.Exp(-x)
}

// sample draws a random frequency from the table closest in temperature.
func (l lymanContinuum) sample(rng *core.RandomStream, temperature float64) float64 {
	j := int(math.Round((math.Log(physics.Clamp(temperature, lymanMinTemp, lymanMaxTemp)) - l.logMinTemp) * l.inverseDelta))
	if j < 0 {
		j = 0
	}
	if j >= len(l.tables) {
		j = len(l.tables) - 1
	}
	return l.tables[j].sample(rng)
}

// HydrogenLymanContinuum is the spectrum of ionizing photons re-emitted by
// recombination of hydrogen directly to the ground state.
type HydrogenLymanContinuum struct {
	continuum lymanContinuum
}

// NewHydrogenLymanContinuum builds the hydrogen Lyman continuum spectrum
// using the given cross sections.
func NewHydrogenLymanContinuum(sigma physics.CrossSections) *HydrogenLymanContinuum {
	return &HydrogenLymanContinuum{continuum: newLymanContinuum(physics.IonHn, physics.FrequencyH, sigma)}
}

// RandomFrequency returns a random frequency for the given cell temperature.
func (h *HydrogenLymanContinuum) RandomFrequency(rng *core.RandomStream, temperature float64) float64 {
	return h.continuum.sample(rng, temperature)
}

// HeliumLymanContinuum is the spectrum of ionizing photons re-emitted by
// recombination of helium directly to the ground state.
type HeliumLymanContinuum struct {
	continuum lymanContinuum
}

// NewHeliumLymanContinuum builds the helium Lyman continuum spectrum using
// the given cross sections.
func NewHeliumLymanContinuum(sigma physics.CrossSections) *HeliumLymanContinuum {
	return &HeliumLymanContinuum{continuum: newLymanContinuum(physics.IonHen, physics.FrequencyHe, sigma)}
}

// RandomFrequency returns a random frequency for the given cell temperature.
func (h *HeliumLymanContinuum) RandomFrequency(rng *core.RandomStream, temperature float64) float64 {
	return h.continuum.sample(rng, temperature)
}
