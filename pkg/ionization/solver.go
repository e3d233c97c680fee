// Package ionization computes per-cell photoionization equilibrium from the
// mean intensities accumulated during a photon-shooting iteration. The
// engine consumes it as an opaque state updater.
package ionization

import (
	"log/slog"
	"math"

	"github.com/goionize/mcrt/pkg/grid"
	"github.com/goionize/mcrt/pkg/physics"
)

// Solver updates the ionization state of a grid after each iteration.
type Solver struct {
	luminosity float64
	abundances physics.Abundances
	grid       *grid.Grid
	logger     *slog.Logger
}

// NewSolver creates a solver for the given grid. luminosity is the total
// ionizing luminosity of all sources (in s^-1), used to normalize the
// accumulated mean intensities.
func NewSolver(luminosity float64, abundances physics.Abundances, g *grid.Grid, logger *slog.Logger) *Solver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Solver{
		luminosity: luminosity,
		abundances: abundances,
		grid:       g,
		logger:     logger,
	}
}

// Recombination coefficients (case B, in m^3 s^-1) as power laws in T/1e4 K.
func alphaH(temperature float64) float64 {
	return 2.59e-19 * math.Pow(temperature*1.e-4, -0.7)
}

func alphaHe(temperature float64) float64 {
	return 4.27e-19 * math.Pow(temperature*1.e-4, -0.678)
}

// Update recomputes the neutral fractions of every cell from the mean
// intensities accumulated since the last reset. totalWeight is the summed
// statistical weight of all photons shot during the iteration; it converts
// accumulated path lengths into photoionization rates.
func (s *Solver) Update(totalWeight float64) {
	if totalWeight <= 0 {
		return
	}
	tallies := s.grid.Tallies()
	jfac := s.luminosity / totalWeight / s.grid.CellVolume()

	for i := 0; i < s.grid.NumCells(); i++ {
		cell := s.grid.Cell(i)

		gammaH := jfac * tallies.MeanIntensityH[i]
		gammaHe := jfac * tallies.MeanIntensityHe[i]

		cell.NeutralFractionH = neutralFractionH(gammaH, alphaH(cell.Temperature), cell.NumberDensity)

		electronDensity := cell.NumberDensity * (1 - cell.NeutralFractionH)
		aHe := alphaHe(cell.Temperature) * electronDensity
		if gammaHe+aHe > 0 {
			cell.NeutralFractionHe = aHe / (aHe + gammaHe)
		} else {
			cell.NeutralFractionHe = 1
		}

		cell.SetReemissionProbabilities(cell.Temperature)
	}
}

// neutralFractionH solves the hydrogen ionization balance
// x*Gamma = alpha*n*(1-x)^2 for the neutral fraction x, with electrons
// supplied by ionized hydrogen only.
func neutralFractionH(gamma, alpha, density float64) float64 {
	if gamma <= 0 {
		return 1
	}
	a := alpha * density / gamma
	if a == 0 {
		return 1.e-10
	}
	// a*x^2 - (2a+1)*x + a = 0, take the root in [0, 1]
	b := 2*a + 1
	x := (b - math.Sqrt(b*b-4*a*a)) / (2 * a)
	return physics.Clamp(x, 1.e-10, 1)
}
