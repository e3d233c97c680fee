package source

import "github.com/goionize/mcrt/pkg/core"

// ContinuousSource is an extended emitter, such as an external radiation
// field entering the simulation volume. It competes with the discrete
// sources for the photon budget by luminosity share.
type ContinuousSource interface {
	// RandomIncomingPhoton returns a random starting position and an
	// incoming direction for a photon from this source.
	RandomIncomingPhoton(rng *core.RandomStream) (position, direction core.Vec3)
	// TotalLuminosity returns the total ionizing luminosity (in s^-1).
	TotalLuminosity() float64
}

// BoxSurface models an isotropic external radiation field entering through
// the six faces of a box. Photons start on a random face with a
// cosine-weighted inward direction.
type BoxSurface struct {
	Min, Max core.Vec3
	// Flux is the ionizing photon flux through the surface (in m^-2 s^-1).
	Flux float64
}

// TotalLuminosity returns the surface area of the box times the flux.
func (b BoxSurface) TotalLuminosity() float64 {
	d := b.Max.Subtract(b.Min)
	area := 2 * (d.X*d.Y + d.Y*d.Z + d.X*d.Z)
	return area * b.Flux
}

// RandomIncomingPhoton picks a face with probability proportional to its
// area, a uniform point on that face, and a cosine-weighted inward
// direction.
func (b BoxSurface) RandomIncomingPhoton(rng *core.RandomStream) (core.Vec3, core.Vec3) {
	d := b.Max.Subtract(b.Min)
	areaXY := d.X * d.Y
	areaYZ := d.Y * d.Z
	areaXZ := d.X * d.Z
	total := 2 * (areaXY + areaYZ + areaXZ)

	x := rng.Float64() * total
	u := rng.Float64()
	v := rng.Float64()

	var position, normal core.Vec3
	switch {
	case x < areaYZ: // x = min face
		position = core.NewVec3(b.Min.X, b.Min.Y+u*d.Y, b.Min.Z+v*d.Z)
		normal = core.NewVec3(1, 0, 0)
	case x < 2*areaYZ: // x = max face
		position = core.NewVec3(b.Max.X, b.Min.Y+u*d.Y, b.Min.Z+v*d.Z)
		normal = core.NewVec3(-1, 0, 0)
	case x < 2*areaYZ+areaXZ: // y = min face
		position = core.NewVec3(b.Min.X+u*d.X, b.Min.Y, b.Min.Z+v*d.Z)
		normal = core.NewVec3(0, 1, 0)
	case x < 2*areaYZ+2*areaXZ: // y = max face
		position = core.NewVec3(b.Min.X+u*d.X, b.Max.Y, b.Min.Z+v*d.Z)
		normal = core.NewVec3(0, -1, 0)
	case x < 2*areaYZ+2*areaXZ+areaXY: // z = min face
		position = core.NewVec3(b.Min.X+u*d.X, b.Min.Y+v*d.Y, b.Min.Z)
		normal = core.NewVec3(0, 0, 1)
	default: // z = max face
		position = core.NewVec3(b.Min.X+u*d.X, b.Min.Y+v*d.Y, b.Max.Z)
		normal = core.NewVec3(0, 0, -1)
	}

	direction := core.RandomCosineDirection(normal, rng)
	return position, direction
}
