package spectrum

import (
	"math"

	"github.com/goionize/mcrt/pkg/core"
	"github.com/goionize/mcrt/pkg/physics"
)

const (
	twoPhotonNumFreq = 1000
	// Maximum frequency of the hydrogen-ionizing part of the continuum,
	// in units of the hydrogen ionization threshold.
	twoPhotonMaxFrequency = 1.6
	// Frequency of the HeI 2s-1s two-photon transition (in Hz).
	heliumTwoPhotonFrequency = 4.98e15
)

// HeliumTwoPhotonContinuum is the spectrum of the hydrogen-ionizing part of
// the HeI 2s-1s two-photon continuum. Only frequencies above the hydrogen
// ionization threshold are sampled; the probability that a two-photon decay
// produces such a photon is handled by the re-emission machinery, not here.
type HeliumTwoPhotonContinuum struct {
	table cumulativeTable
}

// NewHeliumTwoPhotonContinuum tabulates the two-photon emissivity profile on
// a frequency grid between the hydrogen ionization threshold and 1.6 times
// that frequency, and precomputes the cumulative distribution.
func NewHeliumTwoPhotonContinuum() *HeliumTwoPhotonContinuum {
	ys, as := twoPhotonProfile()

	frequencies := linearFrequencyGrid(physics.FrequencyH, twoPhotonMaxFrequency*physics.FrequencyH, twoPhotonNumFreq)
	weights := make([]float64, twoPhotonNumFreq)
	for i := 1; i < twoPhotonNumFreq; i++ {
		a0 := interpolateProfile(frequencies[i-1]/heliumTwoPhotonFrequency, ys, as)
		a1 := interpolateProfile(frequencies[i]/heliumTwoPhotonFrequency, ys, as)
		weights[i] = 0.5 * (a0 + a1) * (frequencies[i] - frequencies[i-1])
	}
	return &HeliumTwoPhotonContinuum{table: newCumulativeTable(frequencies, weights)}
}

// interpolateProfile linearly interpolates the tabulated emissivity at the
// dimensionless frequency y. The profile vanishes outside (0, 1).
func interpolateProfile(y float64, ys, as []float64) float64 {
	if y <= 0 || y >= 1 {
		return 0
	}
	i := int(y * float64(len(ys)-1))
	if i >= len(ys)-1 {
		i = len(ys) - 2
	}
	f := (y - ys[i]) / (ys[i+1] - ys[i])
	return as[i] + f*(as[i+1]-as[i])
}

// twoPhotonProfile returns the tabulated relative emissivity A(y) of the HeI
// two-photon continuum on a 41-point grid of the dimensionless frequency
// y = nu / nu(2s-1s). The profile is symmetric around y = 0.5 and vanishes
// at the endpoints.
func twoPhotonProfile() (ys, as []float64) {
	const n = 41
	ys = make([]float64, n)
	as = make([]float64, n)
	for i := 0; i < n; i++ {
		y := float64(i) / float64(n-1)
		ys[i] = y
		as[i] = math.Pow(y*(1-y), 0.8)
	}
	return ys, as
}

// RandomFrequency returns a random frequency from the ionizing part of the
// two-photon continuum. The continuum shape does not depend on temperature.
func (h *HeliumTwoPhotonContinuum) RandomFrequency(rng *core.RandomStream, _ float64) float64 {
	return h.table.sample(rng)
}
