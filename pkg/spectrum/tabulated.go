package spectrum

import (
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/goionize/mcrt/pkg/core"
)

// cumulativeTable holds a tabulated spectrum as a frequency grid and the
// normalized cumulative distribution over that grid. Sampling inverts the
// distribution with a binary search and linear interpolation, the same
// scheme the diffuse re-emission spectra use.
type cumulativeTable struct {
	frequencies []float64
	cumulative  []float64
}

// newCumulativeTable builds a cumulative distribution from per-bin weights.
// weights[i] is the integrated spectrum between frequencies[i-1] and
// frequencies[i]; weights[0] must be 0. The distribution is normalized so
// the last entry is exactly 1.
func newCumulativeTable(frequencies, weights []float64) cumulativeTable {
	cumulative := make([]float64, len(weights))
	floats.CumSum(cumulative, weights)
	total := cumulative[len(cumulative)-1]
	if total > 0 {
		floats.Scale(1/total, cumulative)
	}
	cumulative[len(cumulative)-1] = 1
	return cumulativeTable{frequencies: frequencies, cumulative: cumulative}
}

// sample draws a random frequency from the tabulated distribution.
func (t cumulativeTable) sample(rng *core.RandomStream) float64 {
	x := rng.Float64()
	i := sort.SearchFloat64s(t.cumulative, x)
	if i == 0 {
		return t.frequencies[0]
	}
	if i >= len(t.cumulative) {
		i = len(t.cumulative) - 1
	}
	// interpolate within the bin
	c0 := t.cumulative[i-1]
	c1 := t.cumulative[i]
	f := 0.0
	if c1 > c0 {
		f = (x - c0) / (c1 - c0)
	}
	return t.frequencies[i-1] + f*(t.frequencies[i]-t.frequencies[i-1])
}

// linearFrequencyGrid returns n frequencies evenly spaced in [min, max].
func linearFrequencyGrid(min, max float64, n int) []float64 {
	grid := make([]float64, n)
	for i := range grid {
		grid[i] = min + float64(i)*(max-min)/float64(n-1)
	}
	return grid
}
