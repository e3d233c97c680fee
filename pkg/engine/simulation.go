package engine

import (
	"context"
	"log/slog"
	"math"

	"github.com/goionize/mcrt/pkg/source"
)

// SimulationConfig contains the knobs of the outer transport loop.
type SimulationConfig struct {
	// InitialPhotons is the photon budget guess for the first iteration.
	InitialPhotons int
	// MaxIterations bounds the outer loop. Reaching it without
	// convergence is a normal termination, not an error.
	MaxIterations int
	// Tolerance is the relative convergence tolerance of the outer loop.
	Tolerance float64
	// Workers is the parallel worker count (0 means number of CPUs).
	Workers int
	// Seed is the base random seed; jobs derive their streams from it.
	Seed int64
}

// Result summarizes a finished run.
type Result struct {
	// Converged is true if the outer loop met its tolerance, false if it
	// was exhausted at MaxIterations.
	Converged bool
	// Iterations is the number of iterations performed.
	Iterations int
	// TotalPhotons is the number of photons shot in the final iteration.
	TotalPhotons int
	// TypeWeights is the summed photon weight per terminal type for the
	// final iteration.
	TypeWeights [source.NumPhotonTypes]float64
	// TotalWeight is the summed photon weight of the final iteration.
	TotalWeight float64
}

// Simulation drives the nested convergence loops: an inner substep loop that
// shoots photons in parallel until enough weight has accumulated, and an
// outer loop that alternates photon shooting with physical state updates
// until the state is stable.
type Simulation struct {
	cfg         SimulationConfig
	src         *source.PhotonSource
	grid        Grid
	updater     StateUpdater
	distributor *WorkDistributor
	checker     *IterationChecker
	metrics     *Metrics
	logger      *slog.Logger
}

// NewSimulation assembles a simulation from its collaborators. A nil metrics
// collects into unregistered collectors; a nil logger uses the default.
func NewSimulation(cfg SimulationConfig, src *source.PhotonSource, g Grid, updater StateUpdater, metrics *Metrics, logger *slog.Logger) *Simulation {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Simulation{
		cfg:         cfg,
		src:         src,
		grid:        g,
		updater:     updater,
		distributor: NewWorkDistributor(cfg.Workers, cfg.Seed),
		checker:     NewIterationChecker(cfg.Tolerance),
		metrics:     metrics,
		logger:      logger,
	}
}

// Run executes iterations until convergence, exhaustion, or cancellation.
func (s *Simulation) Run(ctx context.Context) (Result, error) {
	s.logger.Info("starting photon transport",
		"workers", s.distributor.Workers(),
		"initialPhotons", s.cfg.InitialPhotons,
		"maxIterations", s.cfg.MaxIterations)

	var result Result
	numPhotons := s.cfg.InitialPhotons

	for loop := 0; loop < s.cfg.MaxIterations; loop++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		numPhotons = s.checker.NextPhotonCount(numPhotons)
		s.logger.Info("starting iteration", "iteration", loop, "photonBudget", numPhotons)

		totalShot, shot, err := s.runSubsteps(ctx, numPhotons)
		if err != nil {
			return result, err
		}

		s.logDiagnostics(shot)

		s.updater.Update(shot.TotalWeight)
		converged := s.checker.IsConverged(s.grid)
		s.metrics.Iterations.Inc()
		s.metrics.ConvergenceStat.Set(s.checker.Stat())

		result.Iterations = loop + 1
		result.TotalPhotons = totalShot
		result.TotalWeight = shot.TotalWeight
		result.TypeWeights = shot.TypeWeights

		s.logger.Info("iteration done",
			"iteration", loop,
			"photonsShot", totalShot,
			"statistic", s.checker.Stat())

		if converged {
			result.Converged = true
			s.logger.Info("converged", "iterations", result.Iterations)
			return result, nil
		}

		// carry the actual count into the next iteration as a guess
		numPhotons = totalShot
	}

	// normal termination, distinct from convergence
	s.logger.Info("maximum number of iterations reached, stopping",
		"maxIterations", s.cfg.MaxIterations)
	return result, nil
}

// runSubsteps shoots photons in growing chunks until the substep checker is
// satisfied, resetting the grid accumulators first.
func (s *Simulation) runSubsteps(ctx context.Context, target int) (int, ShootResult, error) {
	s.grid.ResetTallies()
	checker := NewPhotonNumberChecker(target)

	chunk := target / 4
	if chunk < 1 {
		chunk = 1
	}

	var shot ShootResult
	totalShot := 0
	substep := 0
	for !checker.IsConverged(totalShot, shot.TotalWeight) {
		if err := ctx.Err(); err != nil {
			return totalShot, shot, err
		}

		actual := s.src.SetPhotonCount(chunk)
		s.logger.Debug("substep", "index", substep, "photons", actual)

		res, err := s.distributor.Shoot(ctx, s.src, s.grid, actual)
		if err != nil {
			return totalShot, shot, err
		}

		totalShot += actual
		shot.TotalWeight += res.TotalWeight
		for t := range shot.TypeWeights {
			shot.TypeWeights[t] += res.TypeWeights[t]
		}
		s.metrics.Substeps.Inc()
		for t := source.PhotonType(0); t < source.NumPhotonTypes; t++ {
			s.metrics.PhotonWeight.WithLabelValues(t.String()).Add(res.TypeWeights[t])
		}

		chunk = checker.NextSubstepCount(chunk, totalShot)
		substep++
	}
	return totalShot, shot, nil
}

// logDiagnostics reports the per-type outcome fractions of an iteration.
func (s *Simulation) logDiagnostics(shot ShootResult) {
	if shot.TotalWeight <= 0 {
		return
	}
	absorbed := shot.TypeWeights[source.Absorbed]
	scattered := shot.TypeWeights[source.DiffuseH] + shot.TypeWeights[source.DiffuseHe]
	// totalWeight is updated in chunks while the counters are updated per
	// photon, so round-off can push the escape fraction slightly negative
	escape := math.Max(0, 100*(shot.TotalWeight-absorbed)/shot.TotalWeight)

	s.logger.Info("done shooting photons",
		"reemittedNonIonizingPct", 100*absorbed/shot.TotalWeight,
		"scatteredPct", 100*scattered/shot.TotalWeight,
		"escapeFractionPct", escape)
}
