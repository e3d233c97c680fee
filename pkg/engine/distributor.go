package engine

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/goionize/mcrt/pkg/source"
)

// ShootResult aggregates the outcome of one substep over all jobs.
type ShootResult struct {
	// TotalWeight is the summed statistical weight of all photons shot.
	TotalWeight float64
	// TypeWeights is the summed weight per terminal photon type.
	TypeWeights [source.NumPhotonTypes]float64
}

// WorkDistributor splits a photon count into per-job chunks, runs the jobs
// over a bounded worker pool, and merges the job-local accumulators into the
// shared grid state. The merge after the join is the only synchronization
// point; results are reproducible for a fixed seed and worker count.
type WorkDistributor struct {
	workers  int
	baseSeed int64
	// jobOffset advances by the number of jobs dispatched, so successive
	// substeps draw from fresh, deterministic seeds.
	jobOffset int64
}

// NewWorkDistributor creates a distributor with the given worker count
// (0 or negative means the number of CPUs) and base random seed.
func NewWorkDistributor(workers int, seed int64) *WorkDistributor {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &WorkDistributor{workers: workers, baseSeed: seed}
}

// Workers returns the number of parallel workers.
func (d *WorkDistributor) Workers() int {
	return d.workers
}

// Shoot runs numPhotons photons as parallel jobs, one chunk per worker, and
// merges the results. It blocks until every photon of the substep has been
// shot and merged.
func (d *WorkDistributor) Shoot(ctx context.Context, src *source.PhotonSource, g Grid, numPhotons int) (ShootResult, error) {
	numJobs := d.workers
	if numPhotons < numJobs {
		numJobs = numPhotons
	}
	if numJobs == 0 {
		return ShootResult{}, nil
	}

	perJob := numPhotons / numJobs
	remainder := numPhotons % numJobs

	jobs := make([]*ShootJob, numJobs)
	for i := range jobs {
		count := perJob
		if i < remainder {
			count++
		}
		jobs[i] = NewShootJob(src, g, d.baseSeed+d.jobOffset+int64(i), count)
	}
	d.jobOffset += int64(numJobs)

	eg, _ := errgroup.WithContext(ctx)
	eg.SetLimit(d.workers)
	for _, job := range jobs {
		eg.Go(job.Run)
	}
	if err := eg.Wait(); err != nil {
		return ShootResult{}, err
	}

	// single-threaded merge, in job order for bit-identical results
	var result ShootResult
	for _, job := range jobs {
		g.MergeTallies(job.tallies)
		result.TotalWeight += job.totalWeight
		for t := range result.TypeWeights {
			result.TypeWeights[t] += job.typeWeights[t]
		}
	}
	return result, nil
}
