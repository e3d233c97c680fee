package core

import "math"

// RandomDirection generates a uniform random direction on the unit sphere.
// Used for isotropic photon emission and re-emission.
func RandomDirection(rng *RandomStream) Vec3 {
	z := 1.0 - 2.0*rng.Float64() // z ∈ [-1, 1]
	r := math.Sqrt(math.Max(0, 1.0-z*z))
	phi := 2.0 * math.Pi * rng.Float64()
	x := r * math.Cos(phi)
	y := r * math.Sin(phi)
	return NewVec3(x, y, z)
}

// RandomCosineDirection generates a cosine-weighted random direction in the
// hemisphere around the inward normal. Used for radiation entering through a
// surface, where the flux through the surface is proportional to cos(theta).
func RandomCosineDirection(normal Vec3, rng *RandomStream) Vec3 {
	a := 2.0 * math.Pi * rng.Float64()
	z := rng.Float64()
	r := math.Sqrt(z)

	x := r * math.Cos(a)
	y := r * math.Sin(a)
	zCoord := math.Sqrt(1.0 - z)

	// Create local coordinate system around normal
	var nt Vec3
	if math.Abs(normal.X) > 0.1 {
		nt = NewVec3(0, 1, 0)
	} else {
		nt = NewVec3(1, 0, 0)
	}

	tangent := nt.Cross(normal).Normalize()
	bitangent := normal.Cross(tangent)

	return tangent.Multiply(x).Add(bitangent.Multiply(y)).Add(normal.Multiply(zCoord))
}
