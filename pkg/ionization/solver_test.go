package ionization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goionize/mcrt/pkg/core"
	"github.com/goionize/mcrt/pkg/grid"
	"github.com/goionize/mcrt/pkg/physics"
)

func newSolverGrid() *grid.Grid {
	return grid.New(core.NewVec3(0, 0, 0), core.NewVec3(2, 1, 1), 2, 1, 1, 1e8, 8000)
}

func TestUpdateIonizesIlluminatedCells(t *testing.T) {
	g := newSolverGrid()
	solver := NewSolver(1e49, physics.DefaultAbundances(), g, nil)

	// cell 0 received radiation, cell 1 stayed dark
	g.Tallies().MeanIntensityH[0] = 3
	g.Tallies().MeanIntensityHe[0] = 3

	solver.Update(1e49)

	lit := g.CellState(0)
	dark := g.CellState(1)

	require.Greater(t, lit.NeutralFractionH, 0.0)
	assert.Less(t, lit.NeutralFractionH, 0.1, "an illuminated cell must be mostly ionized")
	assert.Less(t, lit.NeutralFractionHe, 1.0)
	assert.Equal(t, 1.0, dark.NeutralFractionH, "a dark cell must be fully neutral")
	assert.Equal(t, 1.0, dark.NeutralFractionHe)

	// the re-emission table must be refreshed along with the state
	assert.Equal(t, 1.0, lit.PHeEm[3])
}

func TestUpdateMonotoneInIntensity(t *testing.T) {
	fractionFor := func(intensity float64) float64 {
		g := newSolverGrid()
		solver := NewSolver(1e49, physics.DefaultAbundances(), g, nil)
		g.Tallies().MeanIntensityH[0] = intensity
		solver.Update(1e49)
		return g.CellState(0).NeutralFractionH
	}

	weak := fractionFor(1e-3)
	strong := fractionFor(1e3)
	require.Greater(t, weak, strong, "more radiation must mean less neutral gas")
	assert.GreaterOrEqual(t, strong, 1e-10, "the neutral fraction is floored, never zero")
	assert.LessOrEqual(t, weak, 1.0)
}

func TestUpdateIgnoresEmptyIteration(t *testing.T) {
	g := newSolverGrid()
	solver := NewSolver(1e49, physics.DefaultAbundances(), g, nil)

	before := g.CellState(0)
	solver.Update(0)
	assert.Equal(t, before, g.CellState(0), "an iteration without photons must not touch the state")
}
