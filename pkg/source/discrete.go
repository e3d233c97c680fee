package source

import "github.com/goionize/mcrt/pkg/core"

// Distribution describes a set of discrete photon sources. For analytic
// distributions this is a discretized version of the underlying model.
type Distribution interface {
	// NumSources returns the number of discrete sources.
	NumSources() int
	// Position returns the position of source i (in m).
	Position(i int) core.Vec3
	// Weight returns the luminosity weight of source i. Weights must sum
	// to 1 over all sources.
	Weight(i int) float64
	// TotalLuminosity returns the total ionizing luminosity (in s^-1).
	TotalLuminosity() float64
}

// SingleStar is a distribution with one point source.
type SingleStar struct {
	Pos        core.Vec3
	Luminosity float64
}

// NumSources returns 1.
func (s SingleStar) NumSources() int { return 1 }

// Position returns the position of the star.
func (s SingleStar) Position(int) core.Vec3 { return s.Pos }

// Weight returns 1 for the only source.
func (s SingleStar) Weight(int) float64 { return 1 }

// TotalLuminosity returns the ionizing luminosity of the star.
func (s SingleStar) TotalLuminosity() float64 { return s.Luminosity }

// PointSources is a distribution backed by explicit position and weight
// slices, typically read from a parameter file.
type PointSources struct {
	Positions  []core.Vec3
	Weights    []float64
	Luminosity float64
}

// NumSources returns the number of point sources.
func (p PointSources) NumSources() int { return len(p.Positions) }

// Position returns the position of source i.
func (p PointSources) Position(i int) core.Vec3 { return p.Positions[i] }

// Weight returns the luminosity weight of source i.
func (p PointSources) Weight(i int) float64 { return p.Weights[i] }

// TotalLuminosity returns the total ionizing luminosity.
func (p PointSources) TotalLuminosity() float64 { return p.Luminosity }
