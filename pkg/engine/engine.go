// Package engine contains the parallel Monte Carlo transport-and-convergence
// machinery: photon shoot jobs, the work distributor that runs them over a
// worker pool, the substep and iteration convergence checkers, and the outer
// simulation loop that ties them together.
package engine

import (
	"github.com/goionize/mcrt/pkg/core"
	"github.com/goionize/mcrt/pkg/grid"
	"github.com/goionize/mcrt/pkg/physics"
	"github.com/goionize/mcrt/pkg/source"
)

// Grid is the transport port the engine requires from a spatial grid. The
// engine never looks inside cells beyond this contract; grid geometry and
// optical-depth integration are the grid's problem.
type Grid interface {
	// NumCells returns the number of cells, used to size job-local tallies.
	NumCells() int
	// CellIndexAt returns the index of the cell containing the position,
	// or -1 outside the grid.
	CellIndexAt(position core.Vec3) int
	// CellState returns the physical state of a cell.
	CellState(index int) physics.CellState
	// Interact advances the photon, consuming the optical-depth budget and
	// recording contributions into the job-local tallies. True means the
	// budget ran out inside the grid (the photon is to be handled as
	// absorbed); false means it escaped.
	Interact(photon *source.Photon, tau float64, tallies *grid.Tallies) bool
	// ResetTallies zeroes the shared accumulators.
	ResetTallies()
	// MergeTallies adds job-local accumulators into the shared state.
	// Called from a single goroutine only.
	MergeTallies(t *grid.Tallies)
}

// StateUpdater turns accumulated intensities into an updated physical state
// once per iteration. The engine treats it as a black box.
type StateUpdater interface {
	Update(totalWeight float64)
}
