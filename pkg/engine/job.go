package engine

import (
	"errors"

	"github.com/goionize/mcrt/pkg/core"
	"github.com/goionize/mcrt/pkg/grid"
	"github.com/goionize/mcrt/pkg/source"
)

// maxReemissions caps the re-emission loop of a single photon. A photon that
// survives this many absorption events signals a broken grid or spectrum
// collaborator (zero-extinction conditions), not a statistical fluke.
const maxReemissions = 1000

// ErrReemissionLoop reports a photon stuck in an infinite re-emission loop.
var ErrReemissionLoop = errors.New("engine: photon exceeded re-emission cap, grid or spectrum collaborator is degenerate")

// ShootJob shoots a fixed number of photons, reducing their interactions
// with the medium into job-local tallies. Each job owns a private random
// stream and never touches shared state; the distributor merges results
// after all jobs complete.
type ShootJob struct {
	src        *source.PhotonSource
	grid       Grid
	rng        *core.RandomStream
	numPhotons int

	tallies     *grid.Tallies
	totalWeight float64
	typeWeights [source.NumPhotonTypes]float64
}

// NewShootJob creates a job shooting numPhotons photons with a stream seeded
// from the given seed.
func NewShootJob(src *source.PhotonSource, g Grid, seed int64, numPhotons int) *ShootJob {
	return &ShootJob{
		src:        src,
		grid:       g,
		rng:        core.NewRandomStream(seed),
		numPhotons: numPhotons,
		tallies:    grid.NewTallies(g.NumCells()),
	}
}

// Run shoots all photons of the job. Each photon is transported until its
// optical-depth budget is spent, then re-emitted or terminally absorbed;
// escape and absorption are normal terminal states counted per photon type.
func (j *ShootJob) Run() error {
	for i := 0; i < j.numPhotons; i++ {
		photon := j.src.RandomPhoton(j.rng)
		j.totalWeight += photon.Weight

		reemissions := 0
		tau := j.rng.ExpTau()
		for j.grid.Interact(&photon, tau, j.tallies) {
			index := j.grid.CellIndexAt(photon.Position)
			if index < 0 {
				break
			}
			reemitted, err := j.src.Reemit(&photon, j.grid.CellState(index), j.rng)
			if err != nil {
				return err
			}
			if !reemitted {
				break
			}
			reemissions++
			if reemissions > maxReemissions {
				return ErrReemissionLoop
			}
			tau = j.rng.ExpTau()
		}

		j.typeWeights[photon.Type] += photon.Weight
	}
	return nil
}
