package spectrum

import (
	"math"

	"github.com/goionize/mcrt/pkg/core"
	"github.com/goionize/mcrt/pkg/physics"
)

const planckNumFreq = 1000

// Planck samples the ionizing part of a blackbody spectrum at a fixed
// effective temperature. This is the usual spectrum for discrete stellar
// sources. The distribution is tabulated once at construction; the cell
// temperature passed to RandomFrequency is ignored.
type Planck struct {
	table cumulativeTable
}

// NewPlanck builds a Planck spectrum for a star with the given effective
// temperature (in K), tabulated between the hydrogen ionization threshold
// and four times that frequency.
func NewPlanck(effectiveTemperature float64) *Planck {
	frequencies := linearFrequencyGrid(physics.FrequencyH, 4*physics.FrequencyH, planckNumFreq)
	weights := make([]float64, planckNumFreq)
	for i := 1; i < planckNumFreq; i++ {
		b0 := planckCurve(frequencies[i-1], effectiveTemperature)
		b1 := planckCurve(frequencies[i], effectiveTemperature)
		weights[i] = 0.5 * (b0 + b1) * (frequencies[i] - frequencies[i-1])
	}
	return &Planck{table: newCumulativeTable(frequencies, weights)}
}

// planckCurve evaluates the photon number emissivity nu^2/(exp(h nu/kT)-1).
// We sample photon counts rather than energy, so the curve carries nu^2
// instead of the nu^3 of the intensity form.
func planckCurve(frequency, temperature float64) float64 {
	x := planckConstant * frequency / (boltzmannConstant * temperature)
	return frequency * frequency / (math.Exp(x) - 1)
}

// RandomFrequency returns a random frequency sampled from the tabulated
// blackbody distribution.
func (p *Planck) RandomFrequency(rng *core.RandomStream, _ float64) float64 {
	return p.table.sample(rng)
}
