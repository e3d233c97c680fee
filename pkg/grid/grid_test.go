package grid

import (
	"math"
	"testing"

	"github.com/goionize/mcrt/pkg/core"
	"github.com/goionize/mcrt/pkg/physics"
	"github.com/goionize/mcrt/pkg/source"
)

func TestCellIndexAt(t *testing.T) {
	g := New(core.NewVec3(-1, -1, -1), core.NewVec3(1, 1, 1), 2, 2, 2, 1e8, 8000)

	tests := []struct {
		position core.Vec3
		want     int
	}{
		{core.NewVec3(-0.5, -0.5, -0.5), 0},
		{core.NewVec3(-0.5, -0.5, 0.5), 1},
		{core.NewVec3(-0.5, 0.5, -0.5), 2},
		{core.NewVec3(0.5, -0.5, -0.5), 4},
		{core.NewVec3(0.5, 0.5, 0.5), 7},
		{core.NewVec3(1.5, 0, 0), -1},
		{core.NewVec3(0, -1.5, 0), -1},
	}
	for _, tt := range tests {
		if got := g.CellIndexAt(tt.position); got != tt.want {
			t.Errorf("CellIndexAt(%v): expected %d, got %d", tt.position, tt.want, got)
		}
	}

	if g.NumCells() != 8 {
		t.Errorf("expected 8 cells, got %d", g.NumCells())
	}
	if v := g.CellVolume(); math.Abs(v-1) > 1e-12 {
		t.Errorf("expected unit cell volume, got %v", v)
	}
}

func TestInteractVacuumEscape(t *testing.T) {
	g := New(core.NewVec3(-1, -1, -1), core.NewVec3(1, 1, 1), 4, 4, 4, 0, 8000)
	tallies := NewTallies(g.NumCells())

	photon := source.Photon{
		Position:  core.NewVec3(0, 0, 0),
		Direction: core.NewVec3(1, 0, 0),
		Weight:    1,
	}
	photon.CrossSections[physics.IonHn] = 6.3e-22

	if g.Interact(&photon, 10, tallies) {
		t.Error("photon in a vacuum grid must escape")
	}
	if g.CellIndexAt(photon.Position) != -1 {
		t.Errorf("escaped photon must end outside the grid, got %v", photon.Position)
	}
}

func TestInteractAbsorption(t *testing.T) {
	// extinction 1 m^-1: density * sigma = 1 with a fully neutral medium
	const sigma = 1e-21
	g := New(core.NewVec3(0, 0, 0), core.NewVec3(2, 1, 1), 2, 1, 1, 1e21, 8000)
	for i := 0; i < g.NumCells(); i++ {
		g.Cell(i).NeutralFractionH = 1
	}
	tallies := NewTallies(g.NumCells())

	photon := source.Photon{
		Position:  core.NewVec3(0.25, 0.5, 0.5),
		Direction: core.NewVec3(1, 0, 0),
		Weight:    2,
	}
	photon.CrossSections[physics.IonHn] = sigma

	// budget 1.5: 0.75 spent crossing the first cell, 0.75 in the second
	if !g.Interact(&photon, 1.5, tallies) {
		t.Fatal("photon must be absorbed inside the grid")
	}
	if math.Abs(photon.Position.X-1.75) > 1e-6 {
		t.Errorf("expected absorption at x=1.75, got %v", photon.Position.X)
	}
	if g.CellIndexAt(photon.Position) != 1 {
		t.Errorf("absorption point not in the second cell: %v", photon.Position)
	}

	// each cell tallies weight * path length * sigma
	want := 2 * 0.75 * sigma
	for i := 0; i < 2; i++ {
		got := tallies.MeanIntensityH[i]
		if math.Abs(got-want)/want > 1e-6 {
			t.Errorf("cell %d: expected mean intensity %v, got %v", i, got, want)
		}
	}
}

func TestInteractTalliesPathLength(t *testing.T) {
	g := New(core.NewVec3(-1, -1, -1), core.NewVec3(1, 1, 1), 1, 1, 1, 0, 8000)
	tallies := NewTallies(1)

	const sigma = 6.3e-22
	photon := source.Photon{
		Position:  core.NewVec3(0, 0, 0),
		Direction: core.NewVec3(0, 0, 1),
		Weight:    3,
		Energy:    4e15,
	}
	photon.CrossSections[physics.IonHn] = sigma

	g.Interact(&photon, 5, tallies)

	// path from the center to the face is 1
	want := 3 * 1.0 * sigma
	if got := tallies.MeanIntensityH[0]; math.Abs(got-want)/want > 1e-6 {
		t.Errorf("expected mean intensity %v, got %v", want, got)
	}
	if tallies.HeatingH[0] <= 0 {
		t.Error("an ionizing photon must deposit heating")
	}
	if tallies.HeatingHe[0] != 0 {
		t.Error("photon below the helium threshold must not heat helium")
	}
}

func TestInteractSurfaceStart(t *testing.T) {
	// photons from a surface source start exactly on a grid face
	g := New(core.NewVec3(-1, -1, -1), core.NewVec3(1, 1, 1), 4, 4, 4, 0, 8000)
	tallies := NewTallies(g.NumCells())

	photon := source.Photon{
		Position:  core.NewVec3(-1, 0.1, 0.1),
		Direction: core.NewVec3(1, 0, 0),
		Weight:    1,
	}
	photon.CrossSections[physics.IonHn] = 6.3e-22

	if g.Interact(&photon, 10, tallies) {
		t.Error("photon in a vacuum grid must escape")
	}
	total := 0.0
	for _, v := range tallies.MeanIntensityH {
		total += v
	}
	if total <= 0 {
		t.Error("photon entering through a face must tally path length inside the grid")
	}
}

func TestTalliesMergeReset(t *testing.T) {
	a := NewTallies(2)
	b := NewTallies(2)
	a.MeanIntensityH[0] = 1
	a.HeatingHe[1] = 2
	b.MeanIntensityH[0] = 3
	b.MeanIntensityHe[1] = 4

	a.Merge(b)
	if a.MeanIntensityH[0] != 4 || a.HeatingHe[1] != 2 || a.MeanIntensityHe[1] != 4 {
		t.Errorf("unexpected merge result: %+v", a)
	}

	a.Reset()
	for i := 0; i < 2; i++ {
		if a.MeanIntensityH[i] != 0 || a.MeanIntensityHe[i] != 0 || a.HeatingH[i] != 0 || a.HeatingHe[i] != 0 {
			t.Errorf("reset left nonzero accumulators: %+v", a)
		}
	}
}
