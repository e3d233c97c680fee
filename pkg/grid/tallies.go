package grid

// Tallies accumulates the interaction of photons with the medium, per cell.
// Each shoot job owns a private Tallies instance; the shared grid copy is
// only touched by the single-threaded merge after the parallel barrier, so
// no cell is ever written by two jobs concurrently.
type Tallies struct {
	MeanIntensityH  []float64
	MeanIntensityHe []float64
	HeatingH        []float64
	HeatingHe       []float64
}

// NewTallies creates zeroed tallies for the given number of cells.
func NewTallies(numCells int) *Tallies {
	return &Tallies{
		MeanIntensityH:  make([]float64, numCells),
		MeanIntensityHe: make([]float64, numCells),
		HeatingH:        make([]float64, numCells),
		HeatingHe:       make([]float64, numCells),
	}
}

// Merge adds the other tallies into t. Merging is commutative, so the
// result does not depend on job completion order.
func (t *Tallies) Merge(other *Tallies) {
	for i := range t.MeanIntensityH {
		t.MeanIntensityH[i] += other.MeanIntensityH[i]
		t.MeanIntensityHe[i] += other.MeanIntensityHe[i]
		t.HeatingH[i] += other.HeatingH[i]
		t.HeatingHe[i] += other.HeatingHe[i]
	}
}

// Reset zeroes all accumulators.
func (t *Tallies) Reset() {
	for i := range t.MeanIntensityH {
		t.MeanIntensityH[i] = 0
		t.MeanIntensityHe[i] = 0
		t.HeatingH[i] = 0
		t.HeatingHe[i] = 0
	}
}
