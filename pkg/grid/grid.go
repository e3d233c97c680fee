// Package grid provides a uniform Cartesian density grid implementing the
// transport port consumed by the engine: cell lookup, optical-depth ray
// marching, and per-cell physical state.
package grid

import (
	"math"

	"github.com/goionize/mcrt/pkg/core"
	"github.com/goionize/mcrt/pkg/physics"
	"github.com/goionize/mcrt/pkg/source"
)

// Grid is a uniform Cartesian grid of cells filled with a constant-density
// hydrogen/helium mix. Cell states are mutated only between photon-shooting
// substeps (by the merge and the state update); during parallel shooting
// the grid is read-only.
type Grid struct {
	min, max   core.Vec3
	nx, ny, nz int
	cellSize   core.Vec3
	cells      []physics.CellState
	tallies    *Tallies
}

// New creates a grid spanning [min, max] with nx*ny*nz cells, a uniform
// hydrogen number density (in m^-3) and an initial temperature (in K).
// Neutral fractions start close to fully ionized, like a freshly switched-on
// HII region; the first iteration corrects them.
func New(min, max core.Vec3, nx, ny, nz int, density, initialTemperature float64) *Grid {
	d := max.Subtract(min)
	g := &Grid{
		min: min, max: max,
		nx: nx, ny: ny, nz: nz,
		cellSize: core.NewVec3(d.X/float64(nx), d.Y/float64(ny), d.Z/float64(nz)),
		cells:    make([]physics.CellState, nx*ny*nz),
	}
	for i := range g.cells {
		cell := &g.cells[i]
		cell.NumberDensity = density
		cell.NeutralFractionH = 1.e-6
		cell.NeutralFractionHe = 1.e-6
		cell.Temperature = initialTemperature
		cell.SetReemissionProbabilities(initialTemperature)
	}
	g.tallies = NewTallies(len(g.cells))
	return g
}

// NumCells returns the total number of cells.
func (g *Grid) NumCells() int {
	return g.nx * g.ny * g.nz
}

// CellVolume returns the volume of a single cell (in m^3). All cells of a
// uniform grid have the same volume.
func (g *Grid) CellVolume() float64 {
	return g.cellSize.X * g.cellSize.Y * g.cellSize.Z
}

// CellIndexAt returns the index of the cell containing the given position,
// or -1 if the position is outside the grid.
func (g *Grid) CellIndexAt(position core.Vec3) int {
	ix := int(math.Floor((position.X - g.min.X) / g.cellSize.X))
	iy := int(math.Floor((position.Y - g.min.Y) / g.cellSize.Y))
	iz := int(math.Floor((position.Z - g.min.Z) / g.cellSize.Z))
	if ix < 0 || ix >= g.nx || iy < 0 || iy >= g.ny || iz < 0 || iz >= g.nz {
		return -1
	}
	return (ix*g.ny+iy)*g.nz + iz
}

// CellState returns a copy of the state of the cell with the given index.
func (g *Grid) CellState(index int) physics.CellState {
	return g.cells[index]
}

// Cell returns a mutable reference to the cell with the given index. Only
// the state-update step may use this; transport reads copies.
func (g *Grid) Cell(index int) *physics.CellState {
	return &g.cells[index]
}

// Tallies returns the shared, merged accumulators of the grid.
func (g *Grid) Tallies() *Tallies {
	return g.tallies
}

// ResetTallies zeroes the shared accumulators at the start of an iteration.
func (g *Grid) ResetTallies() {
	g.tallies.Reset()
}

// MergeTallies adds job-local accumulators into the shared grid state. This
// is the single synchronization point of a substep and must be called from
// one goroutine at a time.
func (g *Grid) MergeTallies(t *Tallies) {
	g.tallies.Merge(t)
}

// opacity returns the extinction coefficient (in m^-1) seen by the photon in
// the given cell: hydrogen and abundance-corrected helium absorption by the
// neutral fractions of the cell.
func (g *Grid) opacity(photon *source.Photon, cell *physics.CellState) float64 {
	return cell.NumberDensity * (cell.NeutralFractionH*photon.CrossSections[physics.IonHn] +
		cell.NeutralFractionHe*photon.CrossSectionHeCorr)
}

// accumulate adds the contribution of a path of length ds through the cell
// with the given index to the job-local tallies.
func (g *Grid) accumulate(t *Tallies, index int, photon *source.Photon, ds float64) {
	w := photon.Weight * ds
	sigmaH := photon.CrossSections[physics.IonHn]
	sigmaHe := photon.CrossSections[physics.IonHen]
	t.MeanIntensityH[index] += w * sigmaH
	t.MeanIntensityHe[index] += w * sigmaHe
	if photon.Energy > physics.FrequencyH {
		t.HeatingH[index] += w * sigmaH * physics.PlanckEnergy(photon.Energy-physics.FrequencyH)
	}
	if photon.Energy > physics.FrequencyHe {
		t.HeatingHe[index] += w * sigmaHe * physics.PlanckEnergy(photon.Energy-physics.FrequencyHe)
	}
}

// Interact advances the photon along its direction, consuming the given
// optical-depth budget as it crosses cells and recording per-cell
// contributions into the job-local tallies. It returns true iff the budget
// is exhausted inside the grid, in which case the photon position is the
// absorption point; false means the photon escaped the grid.
func (g *Grid) Interact(photon *source.Photon, tau float64, tallies *Tallies) bool {
	// nudge distance to step across cell boundaries
	eps := 1.e-10 * (g.cellSize.X + g.cellSize.Y + g.cellSize.Z)

	maxSteps := 4 * (g.nx + g.ny + g.nz)
	for step := 0; step < maxSteps; step++ {
		index := g.CellIndexAt(photon.Position)
		if index < 0 {
			if step == 0 {
				// photons from a surface source start exactly on a face;
				// nudge them into the first cell
				photon.Position = photon.Position.Add(photon.Direction.Multiply(eps))
				continue
			}
			return false
		}
		cell := &g.cells[index]

		ds := g.distanceToCellBoundary(photon.Position, photon.Direction, index) + eps
		chi := g.opacity(photon, cell)
		tauCell := chi * ds

		if tau < tauCell {
			travel := tau / chi
			g.accumulate(tallies, index, photon, travel)
			photon.Position = photon.Position.Add(photon.Direction.Multiply(travel))
			return true
		}

		g.accumulate(tallies, index, photon, ds)
		tau -= tauCell
		photon.Position = photon.Position.Add(photon.Direction.Multiply(ds))
	}
	// A photon cannot cross more cells than the step cap allows; landing
	// here means a numerical corner case on a boundary. Treat as escaped.
	return false
}

// distanceToCellBoundary returns the distance from position to the nearest
// face of the cell with the given index along the direction.
func (g *Grid) distanceToCellBoundary(position, direction core.Vec3, index int) float64 {
	iz := index % g.nz
	iy := (index / g.nz) % g.ny
	ix := index / (g.ny * g.nz)

	tx := axisDistance(position.X, direction.X, g.min.X+float64(ix)*g.cellSize.X, g.cellSize.X)
	ty := axisDistance(position.Y, direction.Y, g.min.Y+float64(iy)*g.cellSize.Y, g.cellSize.Y)
	tz := axisDistance(position.Z, direction.Z, g.min.Z+float64(iz)*g.cellSize.Z, g.cellSize.Z)

	return math.Min(tx, math.Min(ty, tz))
}

// axisDistance returns the distance along one axis to the cell face in the
// direction of travel. cellMin is the lower face coordinate of the cell.
func axisDistance(pos, dir, cellMin, cellSize float64) float64 {
	if dir > 0 {
		return (cellMin + cellSize - pos) / dir
	}
	if dir < 0 {
		return (cellMin - pos) / dir
	}
	return math.Inf(1)
}
