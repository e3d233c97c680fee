package engine

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/goionize/mcrt/pkg/ionization"
	"github.com/goionize/mcrt/pkg/physics"
	"github.com/goionize/mcrt/pkg/source"
)

func TestSimulationVacuumRun(t *testing.T) {
	src := newTestSource(t)
	g := newTestGrid(0)
	solver := ionization.NewSolver(src.TotalLuminosity(), physics.DefaultAbundances(), g, nil)

	sim := NewSimulation(SimulationConfig{
		InitialPhotons: 1000,
		MaxIterations:  3,
		Tolerance:      0.01,
		Workers:        2,
		Seed:           1,
	}, src, g, solver, nil, nil)

	result, err := sim.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	// in a vacuum nothing is ever absorbed and the state never changes,
	// so the loop runs to exhaustion
	if result.Converged {
		t.Error("a vacuum run must not report convergence")
	}
	if result.Iterations != 3 {
		t.Errorf("expected 3 iterations, got %d", result.Iterations)
	}
	if result.TotalPhotons < 1000 {
		t.Errorf("expected at least the requested photons, got %d", result.TotalPhotons)
	}
	if result.TypeWeights[source.Absorbed] != 0 {
		t.Errorf("no weight can be absorbed in a vacuum, got %v", result.TypeWeights[source.Absorbed])
	}
	if result.TotalWeight <= 0 {
		t.Error("expected positive total weight")
	}
	if math.Abs(result.TypeWeights[source.Primary]-result.TotalWeight)/result.TotalWeight > 1e-9 {
		t.Errorf("all weight must escape as primaries: %v of %v",
			result.TypeWeights[source.Primary], result.TotalWeight)
	}
}

func TestSimulationDenseRun(t *testing.T) {
	src := newTestSource(t)
	g := newTestGrid(1e10)
	solver := ionization.NewSolver(src.TotalLuminosity(), physics.DefaultAbundances(), g, nil)

	sim := NewSimulation(SimulationConfig{
		InitialPhotons: 2000,
		MaxIterations:  5,
		Tolerance:      0.5,
		Workers:        4,
		Seed:           42,
	}, src, g, solver, nil, nil)

	result, err := sim.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.Iterations < 1 || result.Iterations > 5 {
		t.Errorf("unexpected iteration count %d", result.Iterations)
	}
	if result.TypeWeights[source.Absorbed] <= 0 {
		t.Error("a dense medium must absorb some photon weight")
	}

	// the state update must have produced a physical ionization structure
	for i := 0; i < g.NumCells(); i++ {
		x := g.CellState(i).NeutralFractionH
		if x <= 0 || x > 1 {
			t.Fatalf("cell %d: neutral fraction %v out of (0,1]", i, x)
		}
	}
}

func TestSimulationCancellation(t *testing.T) {
	src := newTestSource(t)
	g := newTestGrid(0)
	solver := ionization.NewSolver(src.TotalLuminosity(), physics.DefaultAbundances(), g, nil)

	sim := NewSimulation(SimulationConfig{
		InitialPhotons: 1000,
		MaxIterations:  10,
		Tolerance:      0.01,
		Workers:        2,
		Seed:           1,
	}, src, g, solver, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := sim.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
