package engine

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// SubstepChecker decides, after each chunk of photons, whether enough
// photons have been shot for the current iteration and how large the next
// chunk should be.
type SubstepChecker interface {
	// IsConverged reports whether the substep loop is done. Once true it
	// stays true for the rest of the iteration.
	IsConverged(totalShot int, totalWeight float64) bool
	// NextSubstepCount returns the photon count for the next substep.
	NextSubstepCount(lastCount, totalSoFar int) int
}

// PhotonNumberChecker converges once a target number of photons has been
// shot. Substep sizes grow geometrically to reduce the number of parallel
// dispatches, capped so the final substep never overshoots the target by
// more than the remaining work requires.
type PhotonNumberChecker struct {
	Target       int
	GrowthFactor float64
}

// NewPhotonNumberChecker creates a checker for the given photon target with
// the default 2x substep growth.
func NewPhotonNumberChecker(target int) *PhotonNumberChecker {
	return &PhotonNumberChecker{Target: target, GrowthFactor: 2}
}

// IsConverged reports whether the target photon count has been reached.
func (c *PhotonNumberChecker) IsConverged(totalShot int, _ float64) bool {
	return totalShot >= c.Target
}

// NextSubstepCount grows the substep geometrically, clamped to the work
// remaining before the target.
func (c *PhotonNumberChecker) NextSubstepCount(lastCount, totalSoFar int) int {
	next := int(float64(lastCount) * c.GrowthFactor)
	if remaining := c.Target - totalSoFar; next > remaining {
		next = remaining
	}
	if next < 1 {
		next = 1
	}
	return next
}

// IterationChecker decides, after each state update, whether the outer
// iteration loop has produced a stable physical state. The statistic is a
// chi-squared-like distance between the neutral fractions of consecutive
// iterations; the loop is converged when that statistic is decreasing and
// its relative change has fallen below the tolerance.
type IterationChecker struct {
	Tolerance float64
	// BoostIteration is the iteration after which the photon budget is
	// boosted: the first iterations only need a rough state estimate.
	BoostIteration int
	BoostFactor    float64

	iteration     int
	previousState []float64
	previousStat  float64
}

// NewIterationChecker creates a checker with the given relative tolerance.
func NewIterationChecker(tolerance float64) *IterationChecker {
	return &IterationChecker{
		Tolerance:      tolerance,
		BoostIteration: 3,
		BoostFactor:    10,
		previousStat:   math.Inf(1),
	}
}

// Stat returns the most recent value of the convergence statistic.
func (c *IterationChecker) Stat() float64 {
	return c.previousStat
}

// IsConverged inspects the grid's post-update state and reports whether the
// procedure is converged. It must be called exactly once per iteration.
func (c *IterationChecker) IsConverged(g Grid) bool {
	c.iteration++

	state := make([]float64, g.NumCells())
	for i := range state {
		state[i] = g.CellState(i).NeutralFractionH
	}

	if c.previousState == nil {
		c.previousState = state
		return false
	}

	terms := make([]float64, len(state))
	for i := range state {
		sum := state[i] + c.previousState[i]
		if sum > 0 {
			diff := state[i] - c.previousState[i]
			terms[i] = diff * diff / (sum * sum)
		}
	}
	statistic := stat.Mean(terms, nil)
	c.previousState = state

	converged := false
	if !math.IsInf(c.previousStat, 1) && c.previousStat > 0 {
		change := (statistic - c.previousStat) / c.previousStat
		converged = change < 0 && math.Abs(change) < c.Tolerance
	}
	c.previousStat = statistic
	return converged
}

// NextPhotonCount returns the photon budget for the next iteration. After
// the warm-up window a one-time boost sharpens the statistics, since a first
// state estimate exists by then.
func (c *IterationChecker) NextPhotonCount(lastCount int) int {
	if c.iteration == c.BoostIteration {
		return int(float64(lastCount) * c.BoostFactor)
	}
	return lastCount
}
